package core

import (
	"strings"
	"testing"
)

func TestRenderPoints(t *testing.T) {
	out := Render(PointsResponse{Points: []CounterPoint{
		{Point: "First", Support: "because"},
		{Point: "Second"},
	}})
	if !strings.Contains(out, "1. First") || !strings.Contains(out, "2. Second") {
		t.Fatalf("points not numbered:\n%s", out)
	}
	if !strings.Contains(out, "- because") {
		t.Fatalf("support note missing:\n%s", out)
	}
}

func TestRenderRebuttalParagraphs(t *testing.T) {
	out := Render(RebuttalParagraphs{Paragraphs: []string{"Alpha.", "Beta."}})
	if !strings.Contains(out, "Alpha.") || !strings.Contains(out, "Beta.") {
		t.Fatalf("paragraphs missing:\n%s", out)
	}
}

func TestRenderReferencedParagraphs(t *testing.T) {
	out := Render(ReferencedParagraphs{Paragraphs: []ReferencedParagraph{
		{Text: "Claim text.", References: []Reference{
			{Title: "Study", URL: "https://example.org/1"},
			{URL: "https://example.org/2"},
		}},
	}})
	if !strings.Contains(out, "References:") {
		t.Fatalf("reference list missing:\n%s", out)
	}
	if !strings.Contains(out, "- Study: https://example.org/1") {
		t.Fatalf("titled reference malformed:\n%s", out)
	}
	if !strings.Contains(out, "- https://example.org/2") {
		t.Fatalf("untitled reference malformed:\n%s", out)
	}
}

func TestRenderEvidenceResponse(t *testing.T) {
	out := Render(EvidenceResponse{Paragraphs: []EvidenceParagraph{
		{Text: "Grounded claim.", References: []EvidenceReference{
			{URL: "https://example.org/1", SupportingClaim: "the specific finding"},
		}},
	}})
	if !strings.Contains(out, "- https://example.org/1") {
		t.Fatalf("reference missing:\n%s", out)
	}
	if !strings.Contains(out, "Claim: the specific finding") {
		t.Fatalf("supporting claim missing:\n%s", out)
	}
}
