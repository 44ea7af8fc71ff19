package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wordwarden/internal/analytics"
	"wordwarden/internal/moderation"
	"wordwarden/internal/storage"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	engine := moderation.NewEngine(store, moderation.Defaults{
		Sensitivity: moderation.SensitivityMedium,
		ActionType:  moderation.ActionDelete,
	}, zap.NewNop())
	return NewServer(":0", zap.NewNop(), store, engine, analytics.New(store), NewHub(zap.NewNop()))
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()
	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", analyzeRequest{Text: "well fuck this", GuildID: "g1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp analyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IsClean {
		t.Fatalf("expected flagged content, got %+v", resp)
	}
	if resp.Severity != "high" {
		t.Fatalf("severity = %q, want high", resp.Severity)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/analyze", analyzeRequest{Text: "hello there", GuildID: "g1"})
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.IsClean {
		t.Fatalf("expected clean content, got %+v", resp)
	}
}

func TestWordEndpoints(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/guilds/g1/words", wordDTO{Word: "zork", Severity: "high"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/guilds/g1/words", wordDTO{Word: "", Severity: "high"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty word status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/guilds/g1/words", nil)
	var words []wordDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &words); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(words) != 1 || words[0].Word != "zork" {
		t.Fatalf("unexpected words: %+v", words)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/guilds/g1/words/zork", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodDelete, "/api/guilds/g1/words/zork", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	handler := newTestServer(t).Handler()

	payload := settingsDTO{
		Enabled:         true,
		Sensitivity:     "high",
		ActionType:      "timeout",
		Transliteration: true,
		ExcludedRoleIDs: []string{"mods"},
	}
	rec := doJSON(t, handler, http.MethodPut, "/api/guilds/g1/settings", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/guilds/g1/settings", nil)
	var got settingsDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Sensitivity != "high" || got.ActionType != "timeout" || !got.Transliteration {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if len(got.ExcludedRoleIDs) != 1 || got.ExcludedRoleIDs[0] != "mods" {
		t.Fatalf("excluded roles = %v", got.ExcludedRoleIDs)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c1 := &client{hub: hub, send: make(chan []byte, 4)}
	c2 := &client{hub: hub, send: make(chan []byte, 4)}
	hub.register <- c1
	hub.register <- c2

	hub.Broadcast(map[string]string{"event": "content_flagged"})

	for _, c := range []*client{c1, c2} {
		select {
		case data := <-c.send:
			var got map[string]string
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got["event"] != "content_flagged" {
				t.Fatalf("unexpected payload: %v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}
