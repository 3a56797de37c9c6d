package core

import "fmt"

// Structural validation for reference-bearing responses. These checks are
// pure; reachability runs separately (see ReferenceValidator) so that
// network I/O never hides inside construction.

// Validate enforces non-empty citation sets per paragraph and global URL
// uniqueness across all paragraphs.
func (r ReferencedParagraphs) Validate() error {
	seen := make(map[string]bool)
	for idx, p := range r.Paragraphs {
		if len(p.References) == 0 {
			return fmt.Errorf("paragraphs[%d]: %w", idx, ErrEmptyReferences)
		}
		for _, ref := range p.References {
			if ref.URL == "" {
				return fmt.Errorf("paragraphs[%d]: reference has empty URL", idx)
			}
			if seen[ref.URL] {
				return fmt.Errorf("%w: %s", ErrDuplicateReference, ref.URL)
			}
			seen[ref.URL] = true
		}
	}
	return nil
}

// ReferenceURLs returns the cited URLs in citation order. Only valid after
// Validate succeeded, so the slice carries no duplicates.
func (r ReferencedParagraphs) ReferenceURLs() []string {
	var urls []string
	for _, p := range r.Paragraphs {
		for _, ref := range p.References {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}

// Validate enforces the same invariants as ReferencedParagraphs.Validate,
// plus the supporting-claim requirement of the evidence-grounded shape.
// Uniqueness compares by URL value only: two references with the same URL
// but different titles or claims are still duplicates.
func (r EvidenceResponse) Validate() error {
	seen := make(map[string]bool)
	for idx, p := range r.Paragraphs {
		if len(p.References) == 0 {
			return fmt.Errorf("paragraphs[%d]: %w", idx, ErrEmptyReferences)
		}
		for _, ref := range p.References {
			if ref.URL == "" {
				return fmt.Errorf("paragraphs[%d]: reference has empty URL", idx)
			}
			if ref.SupportingClaim == "" {
				return fmt.Errorf("paragraphs[%d]: reference %s has no supporting claim", idx, ref.URL)
			}
			if seen[ref.URL] {
				return fmt.Errorf("%w: %s", ErrDuplicateReference, ref.URL)
			}
			seen[ref.URL] = true
		}
	}
	return nil
}

// CheckMembership rejects any reference whose URL is outside the permitted
// citation pool from gathered evidence.
func (r EvidenceResponse) CheckMembership(allowed map[string]bool) error {
	for idx, p := range r.Paragraphs {
		for _, ref := range p.References {
			if !allowed[ref.URL] {
				return fmt.Errorf("paragraphs[%d]: %w: %s", idx, ErrFabricatedURL, ref.URL)
			}
		}
	}
	return nil
}

// ReferenceURLs returns the cited URLs in citation order
func (r EvidenceResponse) ReferenceURLs() []string {
	var urls []string
	for _, p := range r.Paragraphs {
		for _, ref := range p.References {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}
