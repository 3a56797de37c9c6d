package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MayuCoding/DebateAgent/config"
)

func testModels() map[string]config.LLMModel {
	return map[string]config.LLMModel{
		"counter-large": {
			Name:            "counter-large",
			APIName:         "real-model-name",
			MaxTokens:       1000,
			Temperature:     0.4,
			CostPer1K:       0.01,
			CostPer1KOutput: 0.03,
		},
	}
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var gotAuth string
	var gotReq map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hello"}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 7},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMProvider{
		Type:    "openai",
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Models:  testModels(),
	})

	out, in, outTok, err := p.GenerateWithTokens(context.Background(), "sys", "user prompt", "counter-large", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello" {
		t.Fatalf("unexpected content: %q", out)
	}
	if in != 12 || outTok != 7 {
		t.Fatalf("unexpected usage: %d/%d", in, outTok)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotReq["model"] != "real-model-name" {
		t.Fatalf("api name must be used on the wire, got %v", gotReq["model"])
	}
	msgs, _ := gotReq["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
}

func TestOpenAIProviderUnknownModel(t *testing.T) {
	p := NewOpenAIProvider(config.LLMProvider{Type: "openai", APIKey: "k", Models: testModels()})
	if _, _, _, err := p.GenerateWithTokens(context.Background(), "", "p", "missing", nil); err == nil {
		t.Fatal("expected error for unconfigured model")
	}
}

func TestAnthropicProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ak-test" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing version header")
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "first "},
				{"type": "text", "text": "second"},
			},
			"usage": map[string]int{"input_tokens": 5, "output_tokens": 9},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider(config.LLMProvider{
		Type:    "anthropic",
		APIKey:  "ak-test",
		BaseURL: srv.URL,
		Models:  testModels(),
	})

	out, in, outTok, err := p.GenerateWithTokens(context.Background(), "sys", "prompt", "counter-large", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first second" {
		t.Fatalf("text blocks must concatenate, got %q", out)
	}
	if in != 5 || outTok != 9 {
		t.Fatalf("unexpected usage: %d/%d", in, outTok)
	}
}

func TestCalculateCost(t *testing.T) {
	p := NewOpenAIProvider(config.LLMProvider{Type: "openai", APIKey: "k", Models: testModels()})
	got := p.CalculateCost(1000, 1000, "counter-large")
	want := 0.01 + 0.03
	if got != want {
		t.Fatalf("cost = %f, want %f", got, want)
	}
	if p.CalculateCost(1000, 1000, "missing") != 0 {
		t.Fatal("unknown model must cost zero")
	}
}

func TestNewLLMProviderUnsupportedType(t *testing.T) {
	_, err := NewLLMProvider(config.LLMConfig{
		Providers: map[string]config.LLMProvider{
			"bad": {Type: "cohere", APIKey: "k"},
		},
	})
	if err == nil {
		t.Fatal("expected error for unsupported provider type")
	}
}
