package web_search

import (
	"strings"
	"testing"
	"time"
)

func TestBuildQuery(t *testing.T) {
	pro := BuildQuery("homework should be banned", "pro")
	if !strings.Contains(pro, "arguments supporting: homework should be banned") {
		t.Fatalf("unexpected pro query: %q", pro)
	}
	con := BuildQuery("homework should be banned", "con")
	if !strings.Contains(con, "arguments against: homework should be banned") {
		t.Fatalf("unexpected con query: %q", con)
	}
	if !strings.Contains(con, "criticism") {
		t.Fatalf("con query should seek criticism: %q", con)
	}
}

func TestNewWebSearcher(t *testing.T) {
	for _, p := range []Provider{TavilyProvider, BraveProvider, SerperProvider} {
		if _, err := NewWebSearcher(p, "key", time.Second); err != nil {
			t.Fatalf("provider %s: %v", p, err)
		}
	}
	if _, err := NewWebSearcher("duckduckgo", "key", time.Second); err != ErrUnsupportedProvider {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}
