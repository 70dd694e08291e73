// Package historylog is an append-only record of prior test executions,
// backed by a small SQLite table via the pure-Go modernc.org/sqlite driver.
// Rolling pass-rate and average-duration queries are naturally expressed as
// indexed SELECTs, which is why the store is a SQL table rather than a flat
// file.
//
// The newline-delimited interchange format —
// "test_id | passed(0|1) | duration_ms | iso8601_timestamp" — is kept as an
// Export/Import surface so other tools can append to or consume the history
// without a SQLite dependency.
package historylog

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

// Log is a thread-safe single-writer/multiple-reader execution history.
// Append takes a write lock; queries take a read lock and operate against
// the current committed state.
type Log struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	test_id     TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_test_at ON executions(test_id, at DESC);
`

// Open opens (creating if necessary) the SQLite-backed history log at path.
// Pass ":memory:" for an ephemeral in-process log, e.g. in tests.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("historylog: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("historylog: create schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error { return l.db.Close() }

// Append records every result in results in one transaction. It holds the
// write lock for the whole transaction, so concurrent Appends, Compact and
// Import are serialized against each other.
func (l *Log) Append(results []model.ExecutionResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("historylog: begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO executions(test_id, passed, duration_ms, at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("historylog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		passed := 0
		if r.Passed {
			passed = 1
		}
		if _, err := stmt.Exec(string(r.TestID), passed, r.Duration.Milliseconds(), r.At.UTC().Format(time.RFC3339Nano)); err != nil {
			tx.Rollback()
			return fmt.Errorf("historylog: insert %s: %w", r.TestID, err)
		}
	}
	return tx.Commit()
}

// LastN returns the last n execution results for test, most recent first.
func (l *Log) LastN(test methodid.MethodID, n int) ([]model.ExecutionResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.Query(
		`SELECT passed, duration_ms, at FROM executions WHERE test_id = ? ORDER BY at DESC LIMIT ?`,
		string(test), n)
	if err != nil {
		return nil, fmt.Errorf("historylog: query LastN: %w", err)
	}
	defer rows.Close()

	var out []model.ExecutionResult
	for rows.Next() {
		var passed, durationMS int
		var at string
		if err := rows.Scan(&passed, &durationMS, &at); err != nil {
			return nil, fmt.Errorf("historylog: scan LastN: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("historylog: parse timestamp %q: %w", at, err)
		}
		out = append(out, model.ExecutionResult{
			TestID:   test,
			Passed:   passed == 1,
			Duration: time.Duration(durationMS) * time.Millisecond,
			At:       ts,
		})
	}
	return out, rows.Err()
}

// PassRate returns the fraction of passing results among the last window
// executions of test, and whether any history exists at all.
func (l *Log) PassRate(test methodid.MethodID, window int) (rate float64, known bool, err error) {
	results, err := l.LastN(test, window)
	if err != nil {
		return 0, false, err
	}
	if len(results) == 0 {
		return 0, false, nil
	}
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(results)), true, nil
}

// AvgDuration returns the mean duration among the last window executions of
// test, and whether any history exists at all.
func (l *Log) AvgDuration(test methodid.MethodID, window int) (time.Duration, bool, error) {
	results, err := l.LastN(test, window)
	if err != nil {
		return 0, false, err
	}
	if len(results) == 0 {
		return 0, false, nil
	}
	var total time.Duration
	for _, r := range results {
		total += r.Duration
	}
	return total / time.Duration(len(results)), true, nil
}

// Stats implements scoring.HistoryProvider: the rolling pass rate and a
// flakiness signal (mixed pass/fail outcomes within the window) over test's
// last window executions.
func (l *Log) Stats(test methodid.MethodID, window int) (passRate float64, flaky bool, known bool) {
	results, err := l.LastN(test, window)
	if err != nil || len(results) == 0 {
		return 0, false, false
	}
	passed := 0
	sawPass, sawFail := false, false
	for _, r := range results {
		if r.Passed {
			passed++
			sawPass = true
		} else {
			sawFail = true
		}
	}
	return float64(passed) / float64(len(results)), sawPass && sawFail, true
}

// Compact rewrites the table, retaining only the last keepLastN records per
// test.
func (l *Log) Compact(keepLastN int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("historylog: begin compact: %w", err)
	}
	// SQLite has no ROW_NUMBER window function on very old builds, but
	// modernc.org/sqlite tracks a recent SQLite release that does; keep the
	// simple, readable window-function form.
	_, err = tx.Exec(`
		DELETE FROM executions WHERE rowid IN (
			SELECT rowid FROM (
				SELECT rowid, ROW_NUMBER() OVER (PARTITION BY test_id ORDER BY at DESC) AS rn
				FROM executions
			) WHERE rn > ?
		)`, keepLastN)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("historylog: compact: %w", err)
	}
	return tx.Commit()
}

// Export writes every record in the append-only interchange format: one
// "test_id | passed(0|1) | duration_ms | iso8601_timestamp" line per
// execution, oldest first.
func (l *Log) Export(w io.Writer) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.Query(`SELECT test_id, passed, duration_ms, at FROM executions ORDER BY at ASC`)
	if err != nil {
		return fmt.Errorf("historylog: export query: %w", err)
	}
	defer rows.Close()

	bw := bufio.NewWriter(w)
	for rows.Next() {
		var testID string
		var passed, durationMS int
		var at string
		if err := rows.Scan(&testID, &passed, &durationMS, &at); err != nil {
			return fmt.Errorf("historylog: export scan: %w", err)
		}
		if _, err := fmt.Fprintf(bw, "%s | %d | %d | %s\n", testID, passed, durationMS, at); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// Import appends every record parsed from the pipe-delimited format Export
// writes. Malformed lines are skipped with an error returned after the scan
// completes, reporting the first bad line; every valid line, before or
// after it, is still appended.
func (l *Log) Import(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var results []model.ExecutionResult
	var firstErr error
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			if firstErr == nil {
				firstErr = fmt.Errorf("historylog: import line %d: expected 4 fields, got %d", lineNo, len(parts))
			}
			continue
		}
		testID := strings.TrimSpace(parts[0])
		passedStr := strings.TrimSpace(parts[1])
		durationStr := strings.TrimSpace(parts[2])
		atStr := strings.TrimSpace(parts[3])

		passedInt, err := strconv.Atoi(passedStr)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("historylog: import line %d: bad passed field: %w", lineNo, err)
			}
			continue
		}
		durationMS, err := strconv.ParseInt(durationStr, 10, 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("historylog: import line %d: bad duration field: %w", lineNo, err)
			}
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, atStr)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("historylog: import line %d: bad timestamp field: %w", lineNo, err)
			}
			continue
		}
		results = append(results, model.ExecutionResult{
			TestID:   methodid.MethodID(testID),
			Passed:   passedInt == 1,
			Duration: time.Duration(durationMS) * time.Millisecond,
			At:       at,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("historylog: import scan: %w", err)
	}
	if len(results) > 0 {
		if err := l.Append(results); err != nil {
			return err
		}
	}
	return firstErr
}
