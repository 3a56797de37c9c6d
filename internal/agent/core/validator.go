package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MayuCoding/DebateAgent/config"
	"github.com/MayuCoding/DebateAgent/internal/agent/telemetry"
)

// ReferenceValidator performs liveness checks on cited URLs. A URL passes
// when it resolves to a non-missing, accessible resource; 401/403 are
// tolerated because many authoritative sources block non-browser clients.
type ReferenceValidator struct {
	client    *http.Client
	userAgent string
	limit     int
	tele      *telemetry.Telemetry
}

// NewReferenceValidator creates a validator from config
func NewReferenceValidator(cfg config.ValidationConfig, tele *telemetry.Telemetry) *ReferenceValidator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	limit := cfg.MaxConcurrentChecks
	if limit < 1 {
		limit = 1
	}
	return &ReferenceValidator{
		// redirects are followed by default
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		limit:     limit,
		tele:      tele,
	}
}

// Check classifies the reachability of one URL. HEAD first; if the response
// status is an error, escalate once to a full GET before classifying.
func (v *ReferenceValidator) Check(ctx context.Context, rawURL string) error {
	start := time.Now()
	status, err := v.request(ctx, http.MethodHead, rawURL)
	if err == nil && status >= 400 {
		status, err = v.request(ctx, http.MethodGet, rawURL)
	}

	var result error
	switch {
	case err != nil:
		result = &ReferenceError{URL: rawURL, Err: fmt.Errorf("%w: %v", ErrUnreachable, err)}
	case status == http.StatusNotFound || status == http.StatusGone:
		result = &ReferenceError{URL: rawURL, Status: status, Err: ErrResourceMissing}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		// reachable but access-restricted; tolerated
		result = nil
	case status >= 400:
		result = &ReferenceError{URL: rawURL, Status: status, Err: ErrUnreachable}
	default:
		result = nil
	}

	if v.tele != nil {
		v.tele.RecordValidationEvent(ctx, telemetry.ValidationEvent{
			URL:      rawURL,
			Accepted: result == nil,
			Status:   status,
			Duration: time.Since(start),
		})
	}
	return result
}

func (v *ReferenceValidator) request(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// CheckAll validates every URL, running independent checks concurrently.
// Checks are read-only on the target, so parallelism is safe. The first
// rejection aborts the whole set.
func (v *ReferenceValidator) CheckAll(ctx context.Context, urls []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.limit)
	for _, u := range urls {
		g.Go(func() error {
			return v.Check(ctx, u)
		})
	}
	return g.Wait()
}
