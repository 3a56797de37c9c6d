package core

import (
	"fmt"
	"time"
)

// Side identifies which side of the motion is being argued
type Side string

const (
	SidePro Side = "pro"
	SideCon Side = "con"
)

// ParseSide parses a side string
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SidePro, SideCon:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side %q (want pro or con)", s)
}

// Opposite returns the side the agent argues against the student
func (s Side) Opposite() Side {
	if s == SidePro {
		return SideCon
	}
	return SidePro
}

// Format selects the shape of the generated counter-argument
type Format string

const (
	FormatPoints               Format = "points"
	FormatRebuttalParagraphs   Format = "rebuttal_paragraphs"
	FormatReferencedParagraphs Format = "referenced_paragraphs"
	FormatEvidenceBased        Format = "evidence_based"
)

// ParseFormat parses an output format string
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPoints, FormatRebuttalParagraphs, FormatReferencedParagraphs, FormatEvidenceBased:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid format %q (want points, rebuttal_paragraphs, referenced_paragraphs or evidence_based)", s)
}

// Submission is the student's debate submission
type Submission struct {
	Motion          string `json:"motion"`
	StudentSide     Side   `json:"student_side"`
	ArgumentText    string `json:"argument_text"`
	RequestedFormat Format `json:"requested_format"`
}

// Validate checks the submission fields
func (s Submission) Validate() error {
	if s.Motion == "" {
		return fmt.Errorf("motion is required")
	}
	if s.ArgumentText == "" {
		return fmt.Errorf("argument text is required")
	}
	if _, err := ParseSide(string(s.StudentSide)); err != nil {
		return err
	}
	if _, err := ParseFormat(string(s.RequestedFormat)); err != nil {
		return err
	}
	return nil
}

// UnderstoodArguments is the analysis of the student's argument
type UnderstoodArguments struct {
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"key_points"`
	DetectedClaims []string `json:"detected_claims"`
}

// SourceSummary is a claim-bearing summary of one search result.
// URL is always copied verbatim from the originating search result.
type SourceSummary struct {
	URL              string   `json:"url"`
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	KeyClaims        []string `json:"key_claims"`
	RelevanceToTopic string   `json:"relevance_to_topic"`
}

// GatheredEvidence is the verified evidence bundle from web search.
// An empty Sources slice is a valid terminal state, not an error.
type GatheredEvidence struct {
	QueryUsed string          `json:"query_used"`
	Sources   []SourceSummary `json:"sources"`
}

// Empty reports whether there is nothing to ground a response on
func (g GatheredEvidence) Empty() bool { return len(g.Sources) == 0 }

// URLSet returns the set of source URLs, the only permitted citation pool
// for evidence-based responses.
func (g GatheredEvidence) URLSet() map[string]bool {
	set := make(map[string]bool, len(g.Sources))
	for _, s := range g.Sources {
		set[s.URL] = true
	}
	return set
}

// CounterPoint is one numbered counter-argument point
type CounterPoint struct {
	Point   string `json:"point"`
	Support string `json:"support,omitempty"`
}

// Reference is a citation attached to a paragraph
type Reference struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// ReferencedParagraph is a paragraph with at least one citation
type ReferencedParagraph struct {
	Text       string      `json:"text"`
	References []Reference `json:"references"`
}

// EvidenceReference is a citation drawn from gathered evidence,
// carrying the specific claim the paragraph relies on.
type EvidenceReference struct {
	URL             string `json:"url"`
	Title           string `json:"title,omitempty"`
	SupportingClaim string `json:"supporting_claim"`
}

// EvidenceParagraph is a paragraph built from verified evidence sources
type EvidenceParagraph struct {
	Text       string              `json:"text"`
	References []EvidenceReference `json:"references"`
}

// Response is the closed sum over the four counter-argument shapes.
// Exactly one variant is produced per run.
type Response interface {
	Format() Format
	isResponse()
}

// PointsResponse lists counter-argument points
type PointsResponse struct {
	Points []CounterPoint `json:"points"`
}

// RebuttalParagraphs is free-text rebuttal prose
type RebuttalParagraphs struct {
	Paragraphs []string `json:"paragraphs"`
}

// ReferencedParagraphs is rebuttal prose with cited, validated references
type ReferencedParagraphs struct {
	Paragraphs []ReferencedParagraph `json:"paragraphs"`
}

// EvidenceResponse is rebuttal prose cited exclusively from gathered evidence
type EvidenceResponse struct {
	Paragraphs []EvidenceParagraph `json:"paragraphs"`
}

func (PointsResponse) Format() Format       { return FormatPoints }
func (RebuttalParagraphs) Format() Format   { return FormatRebuttalParagraphs }
func (ReferencedParagraphs) Format() Format { return FormatReferencedParagraphs }
func (EvidenceResponse) Format() Format     { return FormatEvidenceBased }

func (PointsResponse) isResponse()       {}
func (RebuttalParagraphs) isResponse()   {}
func (ReferencedParagraphs) isResponse() {}
func (EvidenceResponse) isResponse()     {}

// RunResult is the final accepted output of one invocation
type RunResult struct {
	ID             string              `json:"id"`
	Submission     Submission          `json:"submission"`
	Understood     UnderstoodArguments `json:"understood"`
	Evidence       GatheredEvidence    `json:"evidence"`
	Response       Response            `json:"-"`
	Rendered       string              `json:"rendered"`
	Cost           float64             `json:"cost"`
	TokensUsed     int64               `json:"tokens_used"`
	ModelsUsed     []string            `json:"models_used"`
	ProcessingTime time.Duration       `json:"processing_time"`
	CreatedAt      time.Time           `json:"created_at"`
}
