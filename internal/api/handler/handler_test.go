package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sandcourt/rallyrank/internal/cache"
	"github.com/sandcourt/rallyrank/internal/config"
	"github.com/sandcourt/rallyrank/internal/elo"
	"github.com/sandcourt/rallyrank/internal/standings"
	"github.com/sandcourt/rallyrank/internal/store"
)

type memoryStorage struct {
	records []store.MatchRecord
}

func (m *memoryStorage) LockedMatches(ctx context.Context) ([]store.MatchRecord, error) {
	return m.records, nil
}

func (m *memoryStorage) SaveDerived(ctx context.Context, tracker *elo.Tracker) error {
	return nil
}

// newTestHandler wires a Handler over an in-memory standings service,
// recomputed when ready is true. Database-backed endpoints are not
// exercised here.
func newTestHandler(t *testing.T, ready bool) *Handler {
	t.Helper()
	storage := &memoryStorage{records: []store.MatchRecord{
		{ID: 1, Date: "2024-06-01", TeamA: [2]string{"Alice", "Bob"}, TeamB: [2]string{"Carol", "Dave"}, ScoreA: 21, ScoreB: 15},
		{ID: 2, Date: "2024-06-02", TeamA: [2]string{"Alice", "Carol"}, TeamB: [2]string{"Bob", "Dave"}, ScoreA: 21, ScoreB: 18},
	}}
	svc := standings.New(storage, elo.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if ready {
		if _, err := svc.Recompute(context.Background()); err != nil {
			t.Fatalf("Recompute() error: %v", err)
		}
	}
	return New(nil, nil, svc, cache.New(true), nil, &config.Config{})
}

func testRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/rankings", h.GetRankings)
	r.Get("/players", h.GetPlayers)
	r.Get("/players/{name}", h.GetPlayer)
	r.Get("/players/{name}/matches", h.GetPlayerMatches)
	return r
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetRankingsNotReady(t *testing.T) {
	r := testRouter(newTestHandler(t, false))
	rec := get(r, "/rankings", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGetRankings(t *testing.T) {
	r := testRouter(newTestHandler(t, true))
	rec := get(r, "/rankings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var rows []elo.RankingRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if rows[0].Name != "Alice" {
		t.Errorf("leader = %q, want Alice", rows[0].Name)
	}

	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache = %q on first request", rec.Header().Get("X-Cache"))
	}
}

func TestGetRankingsCacheAndETag(t *testing.T) {
	r := testRouter(newTestHandler(t, true))

	first := get(r, "/rankings", nil)
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag header")
	}

	second := get(r, "/rankings", nil)
	if second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q on repeat request", second.Header().Get("X-Cache"))
	}

	revalidated := get(r, "/rankings", http.Header{"If-None-Match": []string{etag}})
	if revalidated.Code != http.StatusNotModified {
		t.Errorf("status = %d with matching If-None-Match, want 304", revalidated.Code)
	}
}

func TestGetPlayer(t *testing.T) {
	r := testRouter(newTestHandler(t, true))

	rec := get(r, "/players/Alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp playerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Name != "Alice" {
		t.Errorf("name = %q", resp.Name)
	}
	if resp.Overview.Games != 2 || resp.Overview.Wins != 2 {
		t.Errorf("overview = %+v, want 2 games 2 wins", resp.Overview)
	}
	if len(resp.Partners) != 2 {
		t.Errorf("len(partners) = %d, want 2", len(resp.Partners))
	}
}

func TestGetPlayerNotFound(t *testing.T) {
	r := testRouter(newTestHandler(t, true))
	if rec := get(r, "/players/Mallory", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec := get(r, "/players/Mallory/matches", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("matches status = %d, want 404", rec.Code)
	}
}

func TestGetPlayerMatches(t *testing.T) {
	r := testRouter(newTestHandler(t, true))
	rec := get(r, "/players/Dave/matches", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var rows []elo.MatchSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].MatchID != 2 || rows[0].Result != "L" {
		t.Errorf("latest = %+v, want match 2 loss", rows[0])
	}
}

func TestValidateMatch(t *testing.T) {
	valid := addMatchRequest{
		TeamA:  [2]string{"Alice", "Bob"},
		TeamB:  [2]string{"Carol", "Dave"},
		ScoreA: 21,
		ScoreB: 15,
		Date:   "2024-06-01",
	}

	tests := []struct {
		name   string
		mutate func(*addMatchRequest)
		wantOK bool
	}{
		{"valid", func(r *addMatchRequest) {}, true},
		{"no date", func(r *addMatchRequest) { r.Date = "" }, true},
		{"trims names", func(r *addMatchRequest) { r.TeamA[0] = "  Alice  " }, true},
		{"empty name", func(r *addMatchRequest) { r.TeamB[1] = "" }, false},
		{"duplicate player", func(r *addMatchRequest) { r.TeamB[0] = "Alice" }, false},
		{"negative score", func(r *addMatchRequest) { r.ScoreA = -1 }, false},
		{"bad date", func(r *addMatchRequest) { r.Date = "June 1st" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			msg := validateMatch(&req)
			if ok := msg == ""; ok != tt.wantOK {
				t.Errorf("validateMatch() = %q, want ok=%v", msg, tt.wantOK)
			}
			if tt.name == "trims names" && req.TeamA[0] != "Alice" {
				t.Errorf("name not trimmed: %q", req.TeamA[0])
			}
		})
	}
}
