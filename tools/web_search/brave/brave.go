package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MayuCoding/DebateAgent/tools/web_search/models"
	"github.com/MayuCoding/DebateAgent/utils"
)

const defaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

type Search struct {
	ApiKey   string
	Endpoint string
	Timeout  time.Duration
}

func (s Search) Search(ctx context.Context, q string, k int, sites []string) ([]models.Result, error) {
	// https://api.search.brave.com/ docs; no include_domains parameter,
	// so the allow-list is expressed as site: operators.
	query := q
	if len(sites) > 0 {
		var ops []string
		for _, site := range sites {
			ops = append(ops, "site:"+site)
		}
		query = q + " (" + strings.Join(ops, " OR ") + ")"
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	url := fmt.Sprintf("%s?q=%s&count=%d", endpoint, utils.UrlQuery(query), k)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Subscription-Token", s.ApiKey)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: s.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("brave status %d: %s", resp.StatusCode, string(b))
	}

	var raw struct {
		Web struct {
			Results []struct{ Title, URL, Description string } `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	for i, r := range raw.Web.Results {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Content: r.Description})
	}
	return out, nil
}
