// Package methodid builds and parses the canonical method identifier the
// rest of the engine treats as an opaque, comparable key: a string of the
// form "Namespace.Type.Method(ParamType,...)", with generics rendered as
// "Name<T1,T2>" and nested types joined by "+". Comparison is case-sensitive
// and exact — two MethodIDs are equal iff their canonical strings are equal.
package methodid

import "strings"

// MethodID is a stable, canonical identifier for a method. It is a plain
// string newtype rather than a struct: the canonical spelling is itself the
// identity, so no separate equality method is needed and MethodID is safe to
// use as a map key directly.
type MethodID string

// New builds the canonical MethodID for a method declared in namespace, on
// declaringType (already "+"-joined for nested types), named name, with the
// given generic type parameters and ordered parameter types.
//
//	New("Calc", "Calculator", "Add", nil, []string{"Int32", "Int32"})
//	  → "Calc.Calculator.Add(Int32,Int32)"
//	New("Calc", "Repo", "Find", []string{"T"}, []string{"String"})
//	  → "Calc.Repo.Find<T>(String)"
func New(namespace, declaringType, name string, typeParams, paramTypes []string) MethodID {
	var b strings.Builder
	if namespace != "" {
		b.WriteString(namespace)
		b.WriteByte('.')
	}
	if declaringType != "" {
		b.WriteString(declaringType)
		b.WriteByte('.')
	}
	b.WriteString(name)
	if len(typeParams) > 0 {
		b.WriteByte('<')
		b.WriteString(strings.Join(typeParams, ","))
		b.WriteByte('>')
	}
	b.WriteByte('(')
	b.WriteString(strings.Join(paramTypes, ","))
	b.WriteByte(')')
	return MethodID(b.String())
}

// Lambda builds the synthetic MethodID for a lambda body declared inside
// enclosing, named per the glossary's λ_n convention (spelled "$lambda_N"
// for identifier safety — see graph/csharp.SyntheticLambdaName).
func Lambda(enclosing MethodID, syntheticName string) MethodID {
	return MethodID(string(enclosing) + "/" + syntheticName)
}

// OpenGeneric returns id unchanged. A closed instantiation such as
// "Calc.Repo.Find<String>(String)" cannot be mapped back to its open form
// "Calc.Repo.Find<T>(String)" from the ID alone; MethodIDs built with New
// from a generic declaration's own type parameter names (e.g. "T") are
// already open, so all instantiations of that method share one MethodID.
func OpenGeneric(id MethodID) MethodID { return id }

// String returns the canonical spelling.
func (m MethodID) String() string { return string(m) }

// DeclaringType returns the portion of the MethodID before the final
// "Method(...)" segment, i.e. "Namespace.Type" — empty if id has no dot.
func DeclaringType(id MethodID) string {
	s := string(id)
	paren := strings.IndexByte(s, '(')
	if paren < 0 {
		paren = len(s)
	}
	head := s[:paren]
	// Strip any generic type-parameter list before locating the last dot.
	if lt := strings.IndexByte(head, '<'); lt >= 0 {
		head = head[:lt]
	}
	dot := strings.LastIndexByte(head, '.')
	if dot < 0 {
		return ""
	}
	return s[:dot]
}
