package core

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"

	searchmodels "github.com/MayuCoding/DebateAgent/tools/web_search/models"
)

const enrichedContentCap = 4000

// Enricher replaces thin search snippets with readable page text before
// summarization. Off by default; the evidence search itself never requests
// raw content, so this is an explicit opt-in pass over the hit list.
type Enricher struct {
	client   *http.Client
	minChars int
	logger   *log.Logger
}

func NewEnricher(timeout time.Duration, minChars int, logger *log.Logger) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if minChars <= 0 {
		minChars = 280
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ENRICH] ", log.LstdFlags)
	}
	return &Enricher{client: &http.Client{Timeout: timeout}, minChars: minChars, logger: logger}
}

// Enrich fetches and extracts readable text for results whose snippet is
// shorter than the threshold. Failures leave the original snippet in place.
func (e *Enricher) Enrich(ctx context.Context, results []searchmodels.Result) []searchmodels.Result {
	out := make([]searchmodels.Result, len(results))
	copy(out, results)
	for i := range out {
		if len(out[i].Content) >= e.minChars {
			continue
		}
		text, err := e.extract(ctx, out[i].URL)
		if err != nil {
			e.logger.Printf("extraction failed for %s: %v", out[i].URL, err)
			continue
		}
		if len(text) > len(out[i].Content) {
			out[i].Content = text
		}
	}
	return out
}

func (e *Enricher) extract(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", err
	}
	text := article.TextContent
	if len(text) > enrichedContentCap {
		text = text[:enrichedContentCap]
	}
	return text, nil
}
