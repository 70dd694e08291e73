// Package changeimpact maps textual diff hunks to the MethodIds they touch.
// It is the engine's ChangeResolver: given a diff.ChangedFilesProvider's
// structured hunks and a sourceindex.Index's pre-sorted MethodRecords, it
// resolves each (file, line-range) hunk to the methods whose body overlaps
// it, expanding to the enclosing type when no method does.
package changeimpact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/impactsel/engine/diff"
	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

// RecordSource is the subset of sourceindex.Index the resolver depends on —
// a narrow interface so changeimpact never imports sourceindex directly and
// can be tested against a fake record set.
type RecordSource interface {
	RecordsInFile(path string) []model.MethodRecord
}

// Resolver maps ChangeSets from hunks using a RecordSource's pre-sorted,
// per-file MethodRecords.
type Resolver struct {
	records RecordSource
}

// New builds a Resolver over records.
func New(records RecordSource) *Resolver {
	return &Resolver{records: records}
}

// Resolve maps hunks to a ChangeSet: one CodeChange per hunk, with its
// ChangedMethods set to every MethodRecord whose line range overlaps the
// hunk, or — when none does — every method of the enclosing type nearest
// the hunk's start line.
func (r *Resolver) Resolve(hunks []diff.Hunk) model.ChangeSet {
	cs := model.ChangeSet{Changes: make([]model.CodeChange, 0, len(hunks))}

	for _, h := range hunks {
		change := model.CodeChange{
			FilePath:       h.File,
			ChangeKind:     model.ChangeKind(h.ChangeKind),
			LineRange:      model.LineRange{Start: h.StartLine, End: h.EndLine},
			ChangedMethods: make(map[methodid.MethodID]struct{}),
			ChangedTypes:   make(map[string]struct{}),
		}

		recs := r.records.RecordsInFile(h.File)
		overlapping := overlapping(recs, change.LineRange)
		if len(overlapping) == 0 {
			overlapping = enclosingTypeMethods(recs, h.StartLine)
		}
		for _, rec := range overlapping {
			change.ChangedMethods[rec.ID] = struct{}{}
			change.ChangedTypes[rec.DeclaringType] = struct{}{}
		}

		cs.Changes = append(cs.Changes, change)
	}

	cs.Hash = contentHash(cs.Changes)
	return cs
}

// overlapping returns every record (assumed sorted by StartLine) whose line
// range overlaps target. A binary search bounds the scan to records starting
// at or before target's end; each of those still needs its EndLine checked,
// since end lines are not monotonic in a file with nested types.
func overlapping(recs []model.MethodRecord, target model.LineRange) []model.MethodRecord {
	bound := sort.Search(len(recs), func(i int) bool {
		return recs[i].StartLine > target.End
	})
	var out []model.MethodRecord
	for _, rec := range recs[:bound] {
		if rec.EndLine >= target.Start {
			out = append(out, rec)
		}
	}
	return out
}

// enclosingTypeMethods finds the record nearest startLine (by absolute
// distance) and returns every record sharing its DeclaringType — the
// resolver's approximation of "the enclosing type's methods" for hunks that
// land between method bodies (e.g. a field or using-directive change).
func enclosingTypeMethods(recs []model.MethodRecord, startLine int) []model.MethodRecord {
	if len(recs) == 0 {
		return nil
	}
	nearest := recs[0]
	best := abs(nearest.StartLine - startLine)
	for _, rec := range recs[1:] {
		if d := abs(rec.StartLine - startLine); d < best {
			nearest, best = rec, d
		}
	}
	var out []model.MethodRecord
	for _, rec := range recs {
		if rec.DeclaringType == nearest.DeclaringType {
			out = append(out, rec)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// contentHash hashes the sorted (file, start, end) tuples of changes, giving
// ChangeSet a stable identity independent of hunk discovery order.
func contentHash(changes []model.CodeChange) string {
	tuples := make([]string, len(changes))
	for i, c := range changes {
		tuples[i] = fmt.Sprintf("%s:%d:%d", c.FilePath, c.LineRange.Start, c.LineRange.End)
	}
	sort.Strings(tuples)
	sum := sha256.Sum256([]byte(strings.Join(tuples, "|")))
	return hex.EncodeToString(sum[:])
}
