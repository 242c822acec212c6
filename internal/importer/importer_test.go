package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sandcourt/rallyrank/internal/store"
)

type recordingWriter struct {
	nextMatchID int64
	session     store.Session
	inserted    []store.MatchRecord
	locked      bool
}

func (w *recordingWriter) CreateSession(ctx context.Context, name, date string, userID int64) (store.Session, error) {
	w.session = store.Session{ID: 42, Name: name, Date: date}
	return w.session, nil
}

func (w *recordingWriter) InsertMatch(ctx context.Context, sessionID int64, m store.MatchRecord) (int64, error) {
	w.nextMatchID++
	w.inserted = append(w.inserted, m)
	return w.nextMatchID, nil
}

func (w *recordingWriter) LockSession(ctx context.Context, id int64) (time.Time, error) {
	w.locked = true
	return time.Now(), nil
}

const sampleCSV = `DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE
2024-06-01,Alice,Bob,Carol,Dave,21,15
6/2/2024,Eve,Frank,Carol,Dave,21.0,12
,Alice,Carol,Bob,Dave,10,10
`

func TestImport(t *testing.T) {
	w := &recordingWriter{}
	res, err := New(w).Import(context.Background(), strings.NewReader(sampleCSV), "history")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.SessionID != 42 || res.Matches != 3 {
		t.Errorf("result = %+v, want session 42 with 3 matches", res)
	}
	if !w.locked {
		t.Error("session was not locked after import")
	}
	if w.session.Date != "2024-06-01" {
		t.Errorf("session date = %q, want first match day", w.session.Date)
	}
	if len(w.inserted) != 3 {
		t.Fatalf("inserted %d matches, want 3", len(w.inserted))
	}

	if got := w.inserted[1]; got.Date != "2024-06-02" || got.ScoreA != 21 {
		t.Errorf("row 2 = %+v, want normalized date 2024-06-02 and score 21", got)
	}
	if got := w.inserted[2]; got.Date != "" {
		t.Errorf("row 3 date = %q, want empty (undated)", got.Date)
	}
	if got := w.inserted[0]; got.TeamA != [2]string{"Alice", "Bob"} || got.TeamB != [2]string{"Carol", "Dave"} {
		t.Errorf("row 1 teams = %v vs %v", got.TeamA, got.TeamB)
	}
}

func TestImportIgnoresExtraColumns(t *testing.T) {
	csvData := "DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE,T1ADJ,T2ADJ\n" +
		"2024-06-01,Alice,Bob,Carol,Dave,21,15,12.5,-12.5\n"
	w := &recordingWriter{}
	res, err := New(w).Import(context.Background(), strings.NewReader(csvData), "history")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Matches != 1 {
		t.Errorf("matches = %d, want 1", res.Matches)
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"header only", "DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE\n"},
		{"short header", "DATE,T1P1\n"},
		{"missing name", "DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE\n2024-06-01,Alice,,Carol,Dave,21,15\n"},
		{"bad score", "DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE\n2024-06-01,Alice,Bob,Carol,Dave,twenty,15\n"},
		{"negative score", "DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE\n2024-06-01,Alice,Bob,Carol,Dave,-3,15\n"},
		{"bad date", "DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE\nJune 1st,Alice,Bob,Carol,Dave,21,15\n"},
		{"short row", "DATE,T1P1,T1P2,T2P1,T2P2,T1SCORE,T2SCORE\n2024-06-01,Alice,Bob\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &recordingWriter{}
			if _, err := New(w).Import(context.Background(), strings.NewReader(tt.csv), "bad"); err == nil {
				t.Fatal("Import() accepted invalid input")
			}
			if len(w.inserted) != 0 || w.locked {
				t.Error("writes happened despite validation failure")
			}
		})
	}
}
