package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSearchAppliesSiteOperators(t *testing.T) {
	var gotReq map[string]any
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{"title": "A", "link": "https://example.edu/a", "snippet": "snippet a"},
				{"title": "B", "link": "https://example.gov/b", "snippet": "snippet b"},
				{"title": "C", "link": "https://example.org/c", "snippet": "snippet c"},
			},
		})
	}))
	defer srv.Close()

	s := Search{ApiKey: "sp-key", Endpoint: srv.URL, Timeout: 2 * time.Second}
	results, err := s.Search(context.Background(), "homework ban", 2, []string{"example.edu", "example.gov"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results must be capped at k, got %d", len(results))
	}
	if results[0].URL != "https://example.edu/a" || results[0].Content != "snippet a" {
		t.Fatalf("link/snippet mapping wrong: %+v", results[0])
	}

	if gotKey != "sp-key" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	q, _ := gotReq["q"].(string)
	if !strings.Contains(q, "site:example.edu OR site:example.gov") {
		t.Fatalf("allow-list must become site: operators, got %q", q)
	}
	if !strings.Contains(q, "homework ban") {
		t.Fatalf("original query lost: %q", q)
	}
	if num, _ := gotReq["num"].(float64); int(num) != 2 {
		t.Fatalf("num not forwarded: %v", gotReq["num"])
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := Search{ApiKey: "sp-key", Endpoint: srv.URL, Timeout: 2 * time.Second}
	if _, err := s.Search(context.Background(), "q", 5, nil); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
