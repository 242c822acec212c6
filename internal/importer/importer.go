// Package importer loads historical match data from CSV into the
// database. Each import becomes one session, locked on success, so a
// file either contributes all of its matches to the rankings or none.
//
// Expected header: DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE. Extra
// trailing columns (e.g. previously exported rating adjustments) are
// ignored.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sandcourt/rallyrank/internal/store"
)

const columnCount = 7

// SessionWriter is the slice of the store the importer needs.
type SessionWriter interface {
	CreateSession(ctx context.Context, name, date string, userID int64) (store.Session, error)
	InsertMatch(ctx context.Context, sessionID int64, m store.MatchRecord) (int64, error)
	LockSession(ctx context.Context, id int64) (time.Time, error)
}

// Result summarizes a completed import.
type Result struct {
	SessionID int64
	Matches   int
}

// Importer reads match CSVs into locked sessions.
type Importer struct {
	writer SessionWriter
}

// New creates an Importer.
func New(writer SessionWriter) *Importer {
	return &Importer{writer: writer}
}

// Import parses r and writes its matches into a new session named
// sessionName, locking the session once every row is in. Parse errors
// abort before any session is created; the file is validated in full
// first.
func (im *Importer) Import(ctx context.Context, r io.Reader, sessionName string) (Result, error) {
	records, err := parseMatches(r)
	if err != nil {
		return Result{}, err
	}
	if len(records) == 0 {
		return Result{}, fmt.Errorf("no match rows found")
	}

	// Session date defaults to the first match day.
	sess, err := im.writer.CreateSession(ctx, sessionName, records[0].Date, 0)
	if err != nil {
		return Result{}, fmt.Errorf("create session: %w", err)
	}
	for i, rec := range records {
		if _, err := im.writer.InsertMatch(ctx, sess.ID, rec); err != nil {
			return Result{}, fmt.Errorf("insert row %d: %w", i+2, err)
		}
	}
	if _, err := im.writer.LockSession(ctx, sess.ID); err != nil {
		return Result{}, fmt.Errorf("lock session: %w", err)
	}
	return Result{SessionID: sess.ID, Matches: len(records)}, nil
}

// parseMatches reads and validates the whole file.
func parseMatches(r io.Reader) ([]store.MatchRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // column count checked per row
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < columnCount {
		return nil, fmt.Errorf("header has %d columns, want at least %d", len(header), columnCount)
	}

	var out []store.MatchRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) < columnCount {
			return nil, fmt.Errorf("line %d: %d columns, want at least %d", line, len(row), columnCount)
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string) (store.MatchRecord, error) {
	date, err := normalizeDate(row[0])
	if err != nil {
		return store.MatchRecord{}, err
	}

	names := make([]string, 4)
	for i, raw := range row[1:5] {
		name := strings.TrimSpace(raw)
		if name == "" {
			return store.MatchRecord{}, fmt.Errorf("empty player name in column %d", i+2)
		}
		names[i] = name
	}

	scoreA, err := parseScore(row[5])
	if err != nil {
		return store.MatchRecord{}, err
	}
	scoreB, err := parseScore(row[6])
	if err != nil {
		return store.MatchRecord{}, err
	}

	return store.MatchRecord{
		Date:   date,
		TeamA:  [2]string{names[0], names[1]},
		TeamB:  [2]string{names[2], names[3]},
		ScoreA: scoreA,
		ScoreB: scoreB,
	}, nil
}

// normalizeDate accepts ISO (2024-06-01) and US-style (6/1/2024) dates
// and returns the ISO form. Empty dates pass through; the engine treats
// them as undated.
func normalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	for _, layout := range []string{"2006-01-02", "1/2/2006", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}

func parseScore(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative score %d", n)
		}
		return n, nil
	}
	// Spreadsheet exports sometimes render integers as floats.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, fmt.Errorf("invalid score %q", raw)
}
