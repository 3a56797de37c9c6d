package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Assembler produces the counter-argument response in the requested shape.
// Construction is two-phase: the model output is parsed into an unvalidated
// candidate first, then the structural invariants and reference liveness
// checks run explicitly. Any violation rejects the whole response; there is
// no partial acceptance of valid paragraphs.
type Assembler struct {
	llm       LLMProvider
	model     string
	policy    RetryPolicy
	validator *ReferenceValidator
	logger    *log.Logger
}

// NewAssembler creates an assembler
func NewAssembler(llm LLMProvider, model string, policy RetryPolicy, validator *ReferenceValidator, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.New(log.Writer(), "[COUNTER] ", log.LstdFlags)
	}
	return &Assembler{llm: llm, model: model, policy: policy, validator: validator, logger: logger}
}

// Assemble generates exactly one response variant for the requested format.
// For the evidence_based format with empty evidence it fails with
// ErrNoEvidence rather than silently falling back to an ungrounded shape.
func (a *Assembler) Assemble(ctx context.Context, sub Submission, understood UnderstoodArguments, ev GatheredEvidence) (Response, structuredUsage, error) {
	switch sub.RequestedFormat {
	case FormatPoints:
		return a.assemblePoints(ctx, sub, understood)
	case FormatRebuttalParagraphs:
		return a.assembleRebuttal(ctx, sub, understood)
	case FormatReferencedParagraphs:
		return a.assembleReferenced(ctx, sub, understood)
	case FormatEvidenceBased:
		return a.assembleEvidenceBased(ctx, sub, understood, ev)
	default:
		return nil, structuredUsage{}, fmt.Errorf("unsupported format: %s", sub.RequestedFormat)
	}
}

func (a *Assembler) counterContext(sub Submission, understood UnderstoodArguments) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Motion: %s\n", sub.Motion)
	fmt.Fprintf(&sb, "Student side: %s\n", sub.StudentSide)
	fmt.Fprintf(&sb, "Side you argue: %s\n\n", sub.StudentSide.Opposite())
	fmt.Fprintf(&sb, "Understanding of the student's argument:\n%s\n", understood.Summary)
	if len(understood.KeyPoints) > 0 {
		sb.WriteString("Key points:\n")
		for _, p := range understood.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if len(understood.DetectedClaims) > 0 {
		sb.WriteString("Detected claims:\n")
		for _, c := range understood.DetectedClaims {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}
	fmt.Fprintf(&sb, "\nStudent argument:\n%s\n", sub.ArgumentText)
	return sb.String()
}

func (a *Assembler) assemblePoints(ctx context.Context, sub Submission, understood UnderstoodArguments) (Response, structuredUsage, error) {
	system := `You are a skilled debater. Write a structured counter-argument against the student's position as a list of distinct points, each optionally backed by a short supporting note.
Return ONLY strict JSON with keys:
{"points": [{"point": string, "support": string}]}`

	parsed, usage, err := generateStructured[PointsResponse](
		ctx, a.llm, a.model, "generate_counter",
		system, a.counterContext(sub, understood),
		map[string]interface{}{"temperature": 0.4, "max_tokens": 1200},
		a.policy,
		func(r *PointsResponse) error {
			if len(r.Points) == 0 {
				return fmt.Errorf("no points returned")
			}
			return nil
		},
	)
	if err != nil {
		return nil, usage, err
	}
	return parsed, usage, nil
}

func (a *Assembler) assembleRebuttal(ctx context.Context, sub Submission, understood UnderstoodArguments) (Response, structuredUsage, error) {
	system := `You are a skilled debater. Write a counter-argument against the student's position as flowing rebuttal paragraphs.
Return ONLY strict JSON with keys:
{"paragraphs": [string]}`

	parsed, usage, err := generateStructured[RebuttalParagraphs](
		ctx, a.llm, a.model, "generate_counter",
		system, a.counterContext(sub, understood),
		map[string]interface{}{"temperature": 0.4, "max_tokens": 1400},
		a.policy,
		func(r *RebuttalParagraphs) error {
			if len(r.Paragraphs) == 0 {
				return fmt.Errorf("no paragraphs returned")
			}
			return nil
		},
	)
	if err != nil {
		return nil, usage, err
	}
	return parsed, usage, nil
}

func (a *Assembler) assembleReferenced(ctx context.Context, sub Submission, understood UnderstoodArguments) (Response, structuredUsage, error) {
	system := `You are a skilled debater. Write a counter-argument against the student's position as paragraphs, each backed by at least one real, reachable reference URL from an authoritative publisher. Never cite the same URL in more than one paragraph.
Return ONLY strict JSON with keys:
{"paragraphs": [{"text": string, "references": [{"title": string, "url": string}]}]}`

	candidate, usage, err := generateStructured[ReferencedParagraphs](
		ctx, a.llm, a.model, "generate_counter",
		system, a.counterContext(sub, understood),
		map[string]interface{}{"temperature": 0.4, "max_tokens": 1600},
		a.policy,
		nil,
	)
	if err != nil {
		return nil, usage, err
	}

	// invariant violations reject the response atomically, no retry
	if err := candidate.Validate(); err != nil {
		return nil, usage, err
	}
	if err := a.validator.CheckAll(ctx, candidate.ReferenceURLs()); err != nil {
		return nil, usage, err
	}
	return candidate, usage, nil
}

func (a *Assembler) assembleEvidenceBased(ctx context.Context, sub Submission, understood UnderstoodArguments, ev GatheredEvidence) (Response, structuredUsage, error) {
	if ev.Empty() {
		return nil, structuredUsage{}, ErrNoEvidence
	}

	var sb strings.Builder
	sb.WriteString(a.counterContext(sub, understood))
	sb.WriteString("\nVerified sources you may cite (use EXACT URLs, each at most once):\n")
	for i, s := range ev.Sources {
		fmt.Fprintf(&sb, "Source %d:\nURL: %s\nTitle: %s\nSummary: %s\nKey claims:\n", i+1, s.URL, s.Title, s.Summary)
		for _, c := range s.KeyClaims {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
		fmt.Fprintf(&sb, "Relevance: %s\n\n", s.RelevanceToTopic)
	}

	system := `You are a skilled debater. Write a counter-argument against the student's position as paragraphs grounded ONLY in the verified sources provided. Every paragraph must cite at least one source, every reference must quote the specific claim it relies on, and no URL may be cited twice.
Return ONLY strict JSON with keys:
{"paragraphs": [{"text": string, "references": [{"url": string, "title": string, "supporting_claim": string}]}]}`

	candidate, usage, err := generateStructured[EvidenceResponse](
		ctx, a.llm, a.model, "generate_counter",
		system, sb.String(),
		map[string]interface{}{"temperature": 0.3, "max_tokens": 1800},
		a.policy,
		nil,
	)
	if err != nil {
		return nil, usage, err
	}

	if err := candidate.Validate(); err != nil {
		return nil, usage, err
	}
	if err := candidate.CheckMembership(ev.URLSet()); err != nil {
		return nil, usage, err
	}
	if err := a.validator.CheckAll(ctx, candidate.ReferenceURLs()); err != nil {
		return nil, usage, err
	}
	return candidate, usage, nil
}
