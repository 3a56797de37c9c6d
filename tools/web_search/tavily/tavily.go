package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MayuCoding/DebateAgent/tools/web_search/models"
)

const defaultEndpoint = "https://api.tavily.com/search"

type Search struct {
	ApiKey   string
	Endpoint string
	Timeout  time.Duration
}

func (s Search) Search(ctx context.Context, q string, k int, sites []string) ([]models.Result, error) {
	// https://docs.tavily.com/ - deep search, snippets only
	payload := map[string]any{
		"query":               q,
		"search_depth":        "advanced",
		"max_results":         k,
		"include_raw_content": false,
	}
	if len(sites) > 0 {
		payload["include_domains"] = sites
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: s.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tavily status %d: %s", resp.StatusCode, string(b))
	}

	var raw struct {
		Results []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	for i, r := range raw.Results {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Content: r.Content, Score: r.Score})
	}
	return out, nil
}
