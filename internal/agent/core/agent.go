package core

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/MayuCoding/DebateAgent/config"
	"github.com/MayuCoding/DebateAgent/internal/agent/telemetry"
	web_search "github.com/MayuCoding/DebateAgent/tools/web_search"
)

// Agent wires the full counter-argument pipeline: understand the student's
// argument, gather evidence for the opposite side, assemble the response in
// the requested shape, and validate it before acceptance.
type Agent struct {
	cfg       *config.Config
	llm       LLMProvider
	gatherer  *EvidenceGatherer
	assembler *Assembler
	storage   Storage
	tele      *telemetry.Telemetry
	logger    *log.Logger
	policy    RetryPolicy
}

// NewAgent builds an agent from configuration. Search capability is on only
// when the selected provider has a credential; without one the evidence
// stage degrades to empty evidence.
func NewAgent(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry) (*Agent, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	}

	llm, err := NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	policy := RetryPolicy{Attempts: cfg.LLM.MaxRetries, Backoff: cfg.LLM.Backoff}

	var searcher web_search.WebSearcher
	ws := cfg.Sources.WebSearch
	if key := ws.SearchAPIKey(); key != "" {
		searcher, err = web_search.NewWebSearcher(web_search.Provider(ws.Provider), key, ws.Timeout)
		if err != nil {
			return nil, err
		}
	}

	var enricher *Enricher
	if ws.EnrichContent {
		enricher = NewEnricher(ws.Timeout, ws.EnrichMinChars, nil)
	}

	gatherer := NewEvidenceGatherer(
		searcher, ws.Provider, llm,
		routeModel(cfg.LLM.Routing.Summarization, cfg.LLM.Routing.Fallback),
		ws.MaxResults, ws.IncludeDomains, policy, enricher, tele, nil,
	)

	validator := NewReferenceValidator(cfg.Validation, tele)
	assembler := NewAssembler(llm,
		routeModel(cfg.LLM.Routing.Counter, cfg.LLM.Routing.Fallback),
		policy, validator, nil,
	)

	storage, err := NewStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &Agent{
		cfg:       cfg,
		llm:       llm,
		gatherer:  gatherer,
		assembler: assembler,
		storage:   storage,
		tele:      tele,
		logger:    logger,
		policy:    policy,
	}, nil
}

func routeModel(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

// Storage exposes the run history store for read endpoints
func (a *Agent) Storage() Storage { return a.storage }

// Close releases held resources
func (a *Agent) Close() error { return a.storage.Close() }

// GenerateCounter runs one full invocation. Any fatal error aborts the run
// with no partial output.
func (a *Agent) GenerateCounter(ctx context.Context, sub Submission) (*RunResult, error) {
	if err := a.submissionErr(ctx, sub); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	understandModel := routeModel(a.cfg.LLM.Routing.Understanding, a.cfg.LLM.Routing.Fallback)

	var totalCost float64
	var totalTokens int64

	a.logger.Printf("run %s: understanding student argument", runID)
	stageStart := time.Now()
	understood, usage, err := Understand(ctx, a.llm, understandModel, a.policy, sub)
	a.recordStage(ctx, "understand", stageStart, err, usage, understandModel)
	if err != nil {
		a.recordRun(ctx, runID, sub, start, false, err, totalCost, totalTokens, 0)
		return nil, err
	}
	totalCost += a.llm.CalculateCost(usage.InputTokens, usage.OutputTokens, understandModel)
	totalTokens += usage.InputTokens + usage.OutputTokens

	// evidence backs the side the agent argues, not the student's
	agentSide := sub.StudentSide.Opposite()
	a.logger.Printf("run %s: gathering evidence for side %s", runID, agentSide)
	evidence, gatherStats, err := a.gatherer.Gather(ctx, sub.Motion, agentSide)
	if err != nil {
		a.recordRun(ctx, runID, sub, start, false, err, totalCost, totalTokens, 0)
		return nil, err
	}
	totalCost += gatherStats.Cost
	totalTokens += gatherStats.InputTokens + gatherStats.OutputTokens

	a.logger.Printf("run %s: assembling %s response", runID, sub.RequestedFormat)
	counterModel := routeModel(a.cfg.LLM.Routing.Counter, a.cfg.LLM.Routing.Fallback)
	stageStart = time.Now()
	response, usage, err := a.assembler.Assemble(ctx, sub, understood, evidence)
	a.recordStage(ctx, "assemble", stageStart, err, usage, counterModel)
	if err != nil {
		a.recordRun(ctx, runID, sub, start, false, err, totalCost, totalTokens, 0)
		return nil, err
	}
	totalCost += a.llm.CalculateCost(usage.InputTokens, usage.OutputTokens, counterModel)
	totalTokens += usage.InputTokens + usage.OutputTokens

	result := &RunResult{
		ID:             runID,
		Submission:     sub,
		Understood:     understood,
		Evidence:       evidence,
		Response:       response,
		Rendered:       Render(response),
		Cost:           totalCost,
		TokensUsed:     totalTokens,
		ModelsUsed:     []string{understandModel, counterModel},
		ProcessingTime: time.Since(start),
		CreatedAt:      time.Now(),
	}

	a.recordRun(ctx, runID, sub, start, true, nil, totalCost, totalTokens, len(citedURLs(response)))
	a.saveRun(ctx, result)
	return result, nil
}

func (a *Agent) submissionErr(ctx context.Context, sub Submission) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	return ctx.Err()
}

func (a *Agent) recordStage(ctx context.Context, stage string, start time.Time, err error, usage structuredUsage, model string) {
	if a.tele == nil {
		return
	}
	event := telemetry.StageEvent{
		Stage:      stage,
		Duration:   time.Since(start),
		Success:    err == nil,
		Cost:       a.llm.CalculateCost(usage.InputTokens, usage.OutputTokens, model),
		TokensUsed: usage.InputTokens + usage.OutputTokens,
		ModelUsed:  model,
	}
	if err != nil {
		event.Error = err.Error()
	}
	a.tele.RecordStageEvent(ctx, event)
}

func (a *Agent) recordRun(ctx context.Context, id string, sub Submission, start time.Time, success bool, err error, cost float64, tokens int64, cited int) {
	if a.tele == nil {
		return
	}
	event := telemetry.RunEvent{
		ID:             id,
		Motion:         sub.Motion,
		Side:           string(sub.StudentSide),
		Format:         string(sub.RequestedFormat),
		StartTime:      start,
		EndTime:        time.Now(),
		ProcessingTime: time.Since(start),
		Success:        success,
		Cost:           cost,
		TokensUsed:     tokens,
		SourcesCited:   cited,
	}
	if err != nil {
		event.Error = err.Error()
	}
	a.tele.RecordRunEvent(ctx, event)
}

// saveRun persists best-effort; a storage failure never rejects an accepted
// response.
func (a *Agent) saveRun(ctx context.Context, result *RunResult) {
	respJSON, err := json.Marshal(result.Response)
	if err != nil {
		a.logger.Printf("run %s: marshal response for storage: %v", result.ID, err)
		return
	}
	rec := RunRecord{
		ID:             result.ID,
		Submission:     result.Submission,
		Format:         result.Response.Format(),
		ResponseJSON:   respJSON,
		Rendered:       result.Rendered,
		Cost:           result.Cost,
		TokensUsed:     result.TokensUsed,
		ProcessingTime: result.ProcessingTime,
		CreatedAt:      result.CreatedAt,
	}
	if err := a.storage.SaveRun(ctx, rec); err != nil {
		a.logger.Printf("run %s: save run history: %v", result.ID, err)
	}
}

func citedURLs(resp Response) []string {
	switch r := resp.(type) {
	case ReferencedParagraphs:
		return r.ReferenceURLs()
	case EvidenceResponse:
		return r.ReferenceURLs()
	}
	return nil
}
