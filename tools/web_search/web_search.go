package web_search

import (
	"context"
	"fmt"
	"time"

	"github.com/MayuCoding/DebateAgent/tools/web_search/brave"
	"github.com/MayuCoding/DebateAgent/tools/web_search/models"
	"github.com/MayuCoding/DebateAgent/tools/web_search/serper"
	"github.com/MayuCoding/DebateAgent/tools/web_search/tavily"
)

// WebSearcher retrieves raw snippet results for an evidence query.
// Implementations must never fetch raw page content; snippets only.
type WebSearcher interface {
	Search(ctx context.Context, q string, k int, sites []string) ([]models.Result, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
	BraveProvider  Provider = "brave"
	SerperProvider Provider = "serper"
)

var ErrUnsupportedProvider = &Error{"unsupported provider"}

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

func NewWebSearcher(provider Provider, apiKey string, timeout time.Duration) (WebSearcher, error) {
	switch provider {
	case TavilyProvider:
		return tavily.Search{ApiKey: apiKey, Timeout: timeout}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey, Timeout: timeout}, nil
	case SerperProvider:
		return serper.Search{ApiKey: apiKey, Timeout: timeout}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// BuildQuery frames the search query for the side being argued.
// side is "pro" or "con".
func BuildQuery(motion string, side string) string {
	if side == "pro" {
		return fmt.Sprintf("arguments supporting: %s evidence research studies", motion)
	}
	return fmt.Sprintf("arguments against: %s evidence research studies criticism", motion)
}
