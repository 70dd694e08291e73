// Package testregistry classifies MethodRecords as test, fixture, setup, or
// teardown by matching their C# attribute names against a closed,
// case-insensitive recognition table. C# test frameworks identify
// themselves through attributes, so no assembly loading or reflection is
// needed — the table alone decides.
package testregistry

import (
	"strings"

	"github.com/impactsel/engine/model"
)

// Role is the classification TestRegistry assigns one attribute name to.
type Role int

const (
	RoleNone Role = iota
	RoleTest
	RoleParameterizedCase
	RoleFixture
	RoleSetup
	RoleTeardown
)

// role tables, keyed by lowercased attribute name, per the recognized-names
// table in the engine's test-registry component design.
var (
	testNames = map[string]struct{}{
		"test":           {},
		"testmethod":     {},
		"fact":           {},
		"theory":         {},
		"testcase":       {},
		"datatestmethod": {},
	}
	caseProviderNames = map[string]struct{}{
		"testcase":   {},
		"inlinedata": {},
		"memberdata": {},
	}
	fixtureNames = map[string]struct{}{
		"testfixture": {},
		"testclass":   {},
		"testsuite":   {},
	}
	setupNames = map[string]struct{}{
		"setup":            {},
		"onetimesetup":     {},
		"testinitialize":   {},
		"classinitialize":  {},
	}
	teardownNames = map[string]struct{}{
		"teardown":         {},
		"onetimeteardown":  {},
		"testcleanup":      {},
		"classcleanup":     {},
	}
)

// frameworkByAttribute maps a recognized test-method attribute to the
// framework it identifies, for MethodRecord.Framework tagging.
var frameworkByAttribute = map[string]model.Framework{
	"test":           model.FrameworkNUnit,
	"testcase":       model.FrameworkNUnit,
	"fact":           model.FrameworkXUnit,
	"theory":         model.FrameworkXUnit,
	"inlinedata":     model.FrameworkXUnit,
	"memberdata":     model.FrameworkXUnit,
	"testmethod":     model.FrameworkMSTest,
	"datatestmethod": model.FrameworkMSTest,
}

// ClassifyAttribute reports the Role a single attribute name plays, case
// insensitively, against the closed recognition set. Unrecognized names
// return RoleNone.
func ClassifyAttribute(attributeName string) Role {
	name := strings.ToLower(attributeName)
	switch {
	case has(testNames, name):
		return RoleTest
	case has(caseProviderNames, name):
		return RoleParameterizedCase
	case has(fixtureNames, name):
		return RoleFixture
	case has(setupNames, name):
		return RoleSetup
	case has(teardownNames, name):
		return RoleTeardown
	default:
		return RoleNone
	}
}

// IsTestMethod reports whether any attribute in names marks the method a
// test method (Test, TestMethod, Fact, Theory, TestCase, DataTestMethod).
func IsTestMethod(names []string) bool {
	for _, n := range names {
		if ClassifyAttribute(n) == RoleTest {
			return true
		}
	}
	return false
}

// IsSetup and IsTeardown mirror IsTestMethod for their respective roles.
func IsSetup(names []string) bool    { return anyRole(names, RoleSetup) }
func IsTeardown(names []string) bool { return anyRole(names, RoleTeardown) }
func IsFixture(names []string) bool  { return anyRole(names, RoleFixture) }

func anyRole(names []string, want Role) bool {
	for _, n := range names {
		if ClassifyAttribute(n) == want {
			return true
		}
	}
	return false
}

// FrameworkFor returns the Framework implied by a method's attribute names,
// or FrameworkNone if no recognized test attribute is present.
func FrameworkFor(names []string) model.Framework {
	for _, n := range names {
		if fw, ok := frameworkByAttribute[strings.ToLower(n)]; ok {
			return fw
		}
	}
	return model.FrameworkNone
}

func has(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

// IsFixtureType reports whether a type groups test methods: either it
// carries a fixture attribute, or — when attributes are absent — it
// contains at least one test method, so attribute-less classes holding
// tests still classify as fixtures.
func IsFixtureType(attributeNames []string, containsTestMethod bool) bool {
	return IsFixture(attributeNames) || containsTestMethod
}
