package core

import "testing"

func TestParseSide(t *testing.T) {
	if s, err := ParseSide("pro"); err != nil || s != SidePro {
		t.Fatalf("ParseSide(pro) = %v, %v", s, err)
	}
	if s, err := ParseSide("con"); err != nil || s != SideCon {
		t.Fatalf("ParseSide(con) = %v, %v", s, err)
	}
	if _, err := ParseSide("neutral"); err == nil {
		t.Fatal("expected error for invalid side")
	}
}

func TestSideOpposite(t *testing.T) {
	if SidePro.Opposite() != SideCon || SideCon.Opposite() != SidePro {
		t.Fatal("opposite sides wrong")
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []string{"points", "rebuttal_paragraphs", "referenced_paragraphs", "evidence_based"} {
		if _, err := ParseFormat(f); err != nil {
			t.Fatalf("ParseFormat(%s): %v", f, err)
		}
	}
	if _, err := ParseFormat("essay"); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestSubmissionValidate(t *testing.T) {
	valid := Submission{
		Motion:          "m",
		StudentSide:     SidePro,
		ArgumentText:    "a",
		RequestedFormat: FormatPoints,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}

	cases := []Submission{
		{StudentSide: SidePro, ArgumentText: "a", RequestedFormat: FormatPoints},
		{Motion: "m", StudentSide: SidePro, RequestedFormat: FormatPoints},
		{Motion: "m", StudentSide: "maybe", ArgumentText: "a", RequestedFormat: FormatPoints},
		{Motion: "m", StudentSide: SidePro, ArgumentText: "a", RequestedFormat: "essay"},
	}
	for i, sub := range cases {
		if err := sub.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestURLSet(t *testing.T) {
	ev := GatheredEvidence{Sources: []SourceSummary{
		{URL: "https://a"},
		{URL: "https://b"},
	}}
	set := ev.URLSet()
	if len(set) != 2 || !set["https://a"] || !set["https://b"] {
		t.Fatalf("unexpected set: %v", set)
	}
	if !(GatheredEvidence{}).Empty() {
		t.Fatal("zero value must be empty")
	}
}
