package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RetryPolicy bounds structured-output attempts against schema failures.
// Transport failures are handled inside the provider; this policy only
// re-prompts when the model returned something that does not parse or
// does not satisfy its schema checks.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy matches the configured bound for structured completions
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 2, Backoff: 500 * time.Millisecond}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = 500 * time.Millisecond
	}
	return p
}

// structuredUsage accumulates token usage across retry attempts
type structuredUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// generateStructured issues a completion constrained to a JSON schema,
// unmarshals into T and applies an optional semantic check, retrying per
// policy. A provider error is fatal immediately; only parse/check failures
// consume attempts.
func generateStructured[T any](
	ctx context.Context,
	llm LLMProvider,
	model string,
	stage string,
	system string,
	prompt string,
	options map[string]interface{},
	policy RetryPolicy,
	check func(*T) error,
) (T, structuredUsage, error) {
	var zero T
	var usage structuredUsage
	policy = policy.normalized()

	var lastErr error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(policy.Backoff * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return zero, usage, ctx.Err()
			}
		}

		out, inTok, outTok, err := llm.GenerateWithTokens(ctx, system, prompt, model, options)
		if err != nil {
			return zero, usage, fmt.Errorf("%s: %w", stage, err)
		}
		usage.InputTokens += inTok
		usage.OutputTokens += outTok

		var parsed T
		if err := json.Unmarshal([]byte(extractFirstJSON(out)), &parsed); err != nil {
			lastErr = fmt.Errorf("unmarshal: %w", err)
			continue
		}
		if check != nil {
			if err := check(&parsed); err != nil {
				lastErr = err
				continue
			}
		}
		return parsed, usage, nil
	}

	return zero, usage, &SchemaError{Stage: stage, Err: lastErr}
}

// extractFirstJSON returns the first balanced JSON object in s, tolerating
// prose the model wraps around it.
func extractFirstJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, ch := range s {
		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return s
}
