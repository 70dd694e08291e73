package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// Hunk is one changed line range within one file, taken from a unified diff
// — the structured shape changeimpact.ChangeResolver maps to affected
// MethodIds. StartLine/EndLine are in the new (head) file's coordinates,
// since that is what the current MethodRecord line ranges describe.
type Hunk struct {
	File       string
	ChangeKind string // "Added", "Modified", "Deleted", "Renamed"
	StartLine  int
	EndLine    int
}

// hunkHeaderRe matches a unified diff hunk header: "@@ -a,b +c,d @@".
// b and d default to 1 when omitted (a single-line hunk).
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// fileHeaderRe matches "+++ b/path/to/file" (or "/dev/null" for deletions).
var fileHeaderRe = regexp.MustCompile(`^\+\+\+ (?:b/(.+)|(/dev/null))`)
var oldFileHeaderRe = regexp.MustCompile(`^--- (?:a/(.+)|(/dev/null))`)

// parseUnifiedDiff extracts per-file Hunks from a multi-file unified diff.
// It tracks the current file's old/new path across "--- "/"+++ " headers and
// emits a Hunk per "@@" block found after them.
func parseUnifiedDiff(diffText string) []Hunk {
	var hunks []Hunk
	var currentFile, oldFile string
	var oldIsNull, newIsNull bool

	for _, line := range strings.Split(diffText, "\n") {
		if m := oldFileHeaderRe.FindStringSubmatch(line); m != nil {
			oldIsNull = m[2] == "/dev/null"
			oldFile = m[1]
			continue
		}
		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			newIsNull = m[2] == "/dev/null"
			if m[1] != "" {
				currentFile = m[1]
			} else if newIsNull {
				currentFile = oldFile
			}
			continue
		}
		m := hunkHeaderRe.FindStringSubmatch(line)
		if m == nil || currentFile == "" {
			continue
		}

		newStart, _ := strconv.Atoi(m[3])
		newCount := 1
		if m[4] != "" {
			newCount, _ = strconv.Atoi(m[4])
		}

		kind := "Modified"
		switch {
		case oldIsNull:
			kind = "Added"
		case newIsNull:
			kind = "Deleted"
		}

		end := newStart + newCount - 1
		if newCount == 0 {
			// A pure-deletion hunk (new count 0) still anchors on the line
			// before which the deletion occurred.
			end = newStart
		}
		hunks = append(hunks, Hunk{
			File:       currentFile,
			ChangeKind: kind,
			StartLine:  newStart,
			EndLine:    end,
		})
	}
	return hunks
}
