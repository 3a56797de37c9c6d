package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MayuCoding/DebateAgent/config"
)

// Telemetry provides monitoring and cost tracking for debate runs
type Telemetry struct {
	config      config.TelemetryConfig
	logger      *log.Logger
	metrics     *Metrics
	costTracker *CostTracker
	mu          sync.RWMutex
}

// Metrics holds various performance metrics
type Metrics struct {
	// Run metrics
	TotalRuns             int64
	SuccessfulRuns        int64
	FailedRuns            int64
	AverageProcessingTime time.Duration

	// Stage metrics
	StageExecutions   map[string]int64
	StageSuccessRates map[string]float64
	StageAverageTimes map[string]time.Duration

	// LLM metrics
	LLMRequests   map[string]int64
	LLMTokensUsed map[string]int64

	// Search metrics
	SearchRequests map[string]int64
	SearchResults  map[string]int64

	// Reference validation metrics
	ValidationChecks   int64
	ValidationFailures int64
}

// CostTracker tracks LLM costs across models and stages
type CostTracker struct {
	StageCosts  map[string]float64 // stage -> cost
	ModelCosts  map[string]float64 // model -> cost
	TotalCost   float64
	TotalTokens int64
}

// RunEvent represents a complete counter-argument run
type RunEvent struct {
	ID             string
	Motion         string
	Side           string
	Format         string
	StartTime      time.Time
	EndTime        time.Time
	ProcessingTime time.Duration
	Success        bool
	Error          string
	Cost           float64
	TokensUsed     int64
	SourcesCited   int
	ModelsUsed     []string
}

// StageEvent represents one pipeline stage execution
type StageEvent struct {
	Stage      string // understand, gather_evidence, summarize, assemble
	Duration   time.Duration
	Success    bool
	Error      string
	Cost       float64
	TokensUsed int64
	ModelUsed  string
}

// SearchEvent represents a search provider call
type SearchEvent struct {
	Provider string
	Query    string
	Duration time.Duration
	Success  bool
	Results  int
}

// ValidationEvent represents a reference liveness check
type ValidationEvent struct {
	URL      string
	Accepted bool
	Status   int
	Duration time.Duration
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	return &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			StageExecutions:   make(map[string]int64),
			StageSuccessRates: make(map[string]float64),
			StageAverageTimes: make(map[string]time.Duration),
			LLMRequests:       make(map[string]int64),
			LLMTokensUsed:     make(map[string]int64),
			SearchRequests:    make(map[string]int64),
			SearchResults:     make(map[string]int64),
		},
		costTracker: &CostTracker{
			StageCosts: make(map[string]float64),
			ModelCosts: make(map[string]float64),
		},
	}
}

// RecordRunEvent records a complete run
func (t *Telemetry) RecordRunEvent(ctx context.Context, event RunEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.TotalRuns++
	if event.Success {
		t.metrics.SuccessfulRuns++
	} else {
		t.metrics.FailedRuns++
	}

	if t.metrics.TotalRuns == 1 {
		t.metrics.AverageProcessingTime = event.ProcessingTime
	} else {
		total := t.metrics.AverageProcessingTime * time.Duration(t.metrics.TotalRuns-1)
		t.metrics.AverageProcessingTime = (total + event.ProcessingTime) / time.Duration(t.metrics.TotalRuns)
	}

	for _, model := range event.ModelsUsed {
		t.metrics.LLMRequests[model]++
	}

	if t.config.CostTracking {
		t.costTracker.TotalCost += event.Cost
		t.costTracker.TotalTokens += event.TokensUsed
	}

	t.logger.Printf("Run: ID=%s, Format=%s, Success=%t, Duration=%v, Cost=$%.4f, Tokens=%d, Cited=%d",
		event.ID, event.Format, event.Success, event.ProcessingTime, event.Cost, event.TokensUsed, event.SourcesCited)
}

// RecordStageEvent records a pipeline stage execution
func (t *Telemetry) RecordStageEvent(ctx context.Context, event StageEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.StageExecutions[event.Stage]++
	executions := t.metrics.StageExecutions[event.Stage]

	success := t.metrics.StageSuccessRates[event.Stage] * float64(executions-1)
	if event.Success {
		success += 1.0
	}
	t.metrics.StageSuccessRates[event.Stage] = success / float64(executions)

	if executions == 1 {
		t.metrics.StageAverageTimes[event.Stage] = event.Duration
	} else {
		total := t.metrics.StageAverageTimes[event.Stage] * time.Duration(executions-1)
		t.metrics.StageAverageTimes[event.Stage] = (total + event.Duration) / time.Duration(executions)
	}

	if event.ModelUsed != "" {
		t.metrics.LLMRequests[event.ModelUsed]++
		t.metrics.LLMTokensUsed[event.ModelUsed] += event.TokensUsed
	}

	if t.config.CostTracking {
		t.costTracker.StageCosts[event.Stage] += event.Cost
		if event.ModelUsed != "" {
			t.costTracker.ModelCosts[event.ModelUsed] += event.Cost
		}
	}

	t.logger.Printf("Stage: %s, Success=%t, Duration=%v, Cost=$%.4f",
		event.Stage, event.Success, event.Duration, event.Cost)
}

// RecordSearchEvent records a search provider call
func (t *Telemetry) RecordSearchEvent(ctx context.Context, event SearchEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.SearchRequests[event.Provider]++
	t.metrics.SearchResults[event.Provider] += int64(event.Results)

	t.logger.Printf("Search: Provider=%s, Success=%t, Duration=%v, Results=%d",
		event.Provider, event.Success, event.Duration, event.Results)
}

// RecordValidationEvent records a reference liveness check
func (t *Telemetry) RecordValidationEvent(ctx context.Context, event ValidationEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.ValidationChecks++
	if !event.Accepted {
		t.metrics.ValidationFailures++
	}
}

// GetMetrics returns a snapshot copy of current metrics
func (t *Telemetry) GetMetrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	metrics := *t.metrics
	metrics.StageExecutions = copyMap(t.metrics.StageExecutions)
	metrics.StageSuccessRates = copyMap(t.metrics.StageSuccessRates)
	metrics.StageAverageTimes = copyMap(t.metrics.StageAverageTimes)
	metrics.LLMRequests = copyMap(t.metrics.LLMRequests)
	metrics.LLMTokensUsed = copyMap(t.metrics.LLMTokensUsed)
	metrics.SearchRequests = copyMap(t.metrics.SearchRequests)
	metrics.SearchResults = copyMap(t.metrics.SearchResults)
	return metrics
}

// GetCosts returns a snapshot copy of cost tracking data
func (t *Telemetry) GetCosts() CostTracker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	costs := *t.costTracker
	costs.StageCosts = copyMap(t.costTracker.StageCosts)
	costs.ModelCosts = copyMap(t.costTracker.ModelCosts)
	return costs
}

// LogSummary writes a one-shot summary line, used at CLI exit
func (t *Telemetry) LogSummary() {
	if !t.config.Enabled {
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.logger.Printf("Summary: Runs=%d (ok=%d, failed=%d), AvgTime=%v, TotalCost=$%.4f, TotalTokens=%d, Checks=%d (rejected=%d)",
		t.metrics.TotalRuns, t.metrics.SuccessfulRuns, t.metrics.FailedRuns,
		t.metrics.AverageProcessingTime, t.costTracker.TotalCost, t.costTracker.TotalTokens,
		t.metrics.ValidationChecks, t.metrics.ValidationFailures)
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
