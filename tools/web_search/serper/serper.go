package serper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MayuCoding/DebateAgent/tools/web_search/models"
)

const defaultEndpoint = "https://google.serper.dev/search"

type Search struct {
	ApiKey   string
	Endpoint string
	Timeout  time.Duration
}

func (s Search) Search(ctx context.Context, q string, k int, sites []string) ([]models.Result, error) {
	// https://serper.dev/ docs
	payload := map[string]any{"q": q, "num": k}
	if len(sites) > 0 {
		var ops []string
		for _, site := range sites {
			ops = append(ops, "site:"+site)
		}
		payload["q"] = q + " (" + strings.Join(ops, " OR ") + ")"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: s.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("serper status %d: %s", resp.StatusCode, string(b))
	}

	var raw struct {
		Organic []struct{ Title, Link, Snippet string } `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	for i, r := range raw.Organic {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.Link, Content: r.Snippet})
	}
	return out, nil
}
