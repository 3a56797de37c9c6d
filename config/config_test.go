package config

import "testing"

func TestSearchAPIKeySelectsProvider(t *testing.T) {
	w := WebSearchConfig{
		Provider:     "tavily",
		TavilyAPIKey: "tv",
		BraveAPIKey:  "br",
		SerperAPIKey: "sp",
	}
	if got := w.SearchAPIKey(); got != "tv" {
		t.Fatalf("tavily key = %q", got)
	}
	w.Provider = "brave"
	if got := w.SearchAPIKey(); got != "br" {
		t.Fatalf("brave key = %q", got)
	}
	w.Provider = "serper"
	if got := w.SearchAPIKey(); got != "sp" {
		t.Fatalf("serper key = %q", got)
	}
	w.Provider = "unknown"
	if got := w.SearchAPIKey(); got != "" {
		t.Fatalf("unknown provider must yield empty key, got %q", got)
	}
}

func TestSearchAPIKeyEmptyWhenUnconfigured(t *testing.T) {
	w := WebSearchConfig{Provider: "tavily"}
	if got := w.SearchAPIKey(); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := &Config{
		LLM: LLMConfig{
			Providers: map[string]LLMProvider{
				"openai": {Type: "openai", APIKey: "sk"},
			},
			MaxRetries: 2,
		},
		Sources:    SourcesConfig{WebSearch: WebSearchConfig{Provider: "tavily", MaxResults: 8}},
		Validation: ValidationConfig{Timeout: 1},
	}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	noProviders := *valid
	noProviders.LLM.Providers = nil
	if err := validateConfig(&noProviders); err == nil {
		t.Fatal("expected error without LLM providers")
	}

	badProvider := *valid
	badProvider.Sources.WebSearch.Provider = "duckduckgo"
	if err := validateConfig(&badProvider); err == nil {
		t.Fatal("expected error for unsupported search provider")
	}

	badRetries := *valid
	badRetries.LLM.MaxRetries = 0
	if err := validateConfig(&badRetries); err == nil {
		t.Fatal("expected error for zero retries")
	}
}

func TestAuthoritativeDomainsIncludeResearchSources(t *testing.T) {
	want := map[string]bool{"pubmed.ncbi.nlm.nih.gov": false, "who.int": false, "gov": false, "edu": false}
	for _, d := range AuthoritativeDomains {
		if _, ok := want[d]; ok {
			want[d] = true
		}
	}
	for d, found := range want {
		if !found {
			t.Fatalf("allow-list missing %s", d)
		}
	}
}
