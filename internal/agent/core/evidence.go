package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MayuCoding/DebateAgent/internal/agent/telemetry"
	web_search "github.com/MayuCoding/DebateAgent/tools/web_search"
	searchmodels "github.com/MayuCoding/DebateAgent/tools/web_search/models"
	"github.com/MayuCoding/DebateAgent/utils"
)

// EvidenceGatherer runs the evidence pipeline: web search, optional snippet
// enrichment, then LLM summarization into claim-bearing source summaries.
// With no searcher configured it degrades to empty evidence without any
// network call; absence of evidence is never an error.
type EvidenceGatherer struct {
	searcher       web_search.WebSearcher // nil when search capability is not configured
	provider       string
	llm            LLMProvider
	model          string
	maxResults     int
	includeDomains []string
	policy         RetryPolicy
	enricher       *Enricher // nil unless snippet enrichment is enabled
	tele           *telemetry.Telemetry
	logger         *log.Logger
}

// NewEvidenceGatherer creates a gatherer. searcher may be nil.
func NewEvidenceGatherer(
	searcher web_search.WebSearcher,
	provider string,
	llm LLMProvider,
	model string,
	maxResults int,
	includeDomains []string,
	policy RetryPolicy,
	enricher *Enricher,
	tele *telemetry.Telemetry,
	logger *log.Logger,
) *EvidenceGatherer {
	if maxResults <= 0 {
		maxResults = 8
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[EVIDENCE] ", log.LstdFlags)
	}
	return &EvidenceGatherer{
		searcher:       searcher,
		provider:       provider,
		llm:            llm,
		model:          model,
		maxResults:     maxResults,
		includeDomains: includeDomains,
		policy:         policy,
		enricher:       enricher,
		tele:           tele,
		logger:         logger,
	}
}

// usage totals across the gather run, for cost accounting
type GatherStats struct {
	InputTokens  int64
	OutputTokens int64
	Cost         float64
}

// Gather runs the evidence pipeline for a motion and side. Terminal states:
// no searcher, no results found, or a populated bundle.
func (g *EvidenceGatherer) Gather(ctx context.Context, motion string, side Side) (GatheredEvidence, GatherStats, error) {
	var stats GatherStats

	if g.searcher == nil {
		g.logger.Printf("no search credential configured - skipping web search")
		return GatheredEvidence{QueryUsed: "", Sources: []SourceSummary{}}, stats, nil
	}

	query := web_search.BuildQuery(motion, string(side))
	g.logger.Printf("searching: %s", utils.Truncate(query, 80))

	start := time.Now()
	results, err := g.searcher.Search(ctx, query, g.maxResults, g.includeDomains)
	if g.tele != nil {
		g.tele.RecordSearchEvent(ctx, telemetry.SearchEvent{
			Provider: g.provider,
			Query:    query,
			Duration: time.Since(start),
			Success:  err == nil,
			Results:  len(results),
		})
	}
	if err != nil {
		// acquisition failures are fatal for the invocation, not retried here
		return GatheredEvidence{}, stats, fmt.Errorf("web search: %w", err)
	}

	if len(results) == 0 {
		g.logger.Printf("no search results found")
		return GatheredEvidence{QueryUsed: query, Sources: []SourceSummary{}}, stats, nil
	}
	g.logger.Printf("found %d sources", len(results))

	if g.enricher != nil {
		results = g.enricher.Enrich(ctx, results)
	}

	summaries, usage, err := g.summarizeSources(ctx, results, motion, side)
	if err != nil {
		return GatheredEvidence{}, stats, err
	}
	stats.InputTokens = usage.InputTokens
	stats.OutputTokens = usage.OutputTokens
	stats.Cost = g.llm.CalculateCost(usage.InputTokens, usage.OutputTokens, g.model)

	g.logger.Printf("gathered %d verified sources", len(summaries))
	return GatheredEvidence{QueryUsed: query, Sources: summaries}, stats, nil
}

// summarizeSources issues one structured completion over all results. The
// model may omit sources but must never invent URLs absent from the input
// set; fabricated URLs fail the schema check and consume a retry attempt.
func (g *EvidenceGatherer) summarizeSources(ctx context.Context, results []searchmodels.Result, motion string, side Side) ([]SourceSummary, structuredUsage, error) {
	if len(results) == 0 {
		return nil, structuredUsage{}, nil
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "Source %d:\nTitle: %s\nURL: %s\nContent: %s\n\n", i+1, r.Title, r.URL, r.Content)
	}

	known := make(map[string]bool, len(results))
	for _, r := range results {
		known[r.URL] = true
	}

	system := fmt.Sprintf(`You are a research assistant analyzing sources for a debate.
Motion: %s
Side being argued: %s

For each source provided, extract:
1. A concise summary of the main points
2. Key claims or facts that can be used as evidence
3. How this source relates to the debate topic

Return ONLY strict JSON with keys:
{"sources": [{"url": string, "title": string, "summary": string, "key_claims": [string], "relevance_to_topic": string}]}
IMPORTANT: Use the EXACT URLs provided - do not modify or fabricate URLs.`, motion, side)

	g.logger.Printf("summarizing %d sources...", len(results))

	type summaryList struct {
		Sources []SourceSummary `json:"sources"`
	}
	parsed, usage, err := generateStructured[summaryList](
		ctx, g.llm, g.model, "summarize_sources",
		system, sb.String(),
		map[string]interface{}{"temperature": 0.1, "max_tokens": 2000},
		g.policy,
		func(list *summaryList) error {
			for _, s := range list.Sources {
				if !known[s.URL] {
					return fmt.Errorf("%w: %s", ErrFabricatedURL, s.URL)
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, usage, err
	}
	return parsed.Sources, usage, nil
}
