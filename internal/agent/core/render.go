package core

import (
	"fmt"
	"strings"
)

// Render formats an accepted response as console text. The switch is
// exhaustive over the response sum type.
func Render(resp Response) string {
	var sb strings.Builder
	switch r := resp.(type) {
	case PointsResponse:
		for i, cp := range r.Points {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, cp.Point)
			if cp.Support != "" {
				fmt.Fprintf(&sb, "   - %s\n", cp.Support)
			}
		}
	case RebuttalParagraphs:
		for _, para := range r.Paragraphs {
			fmt.Fprintf(&sb, "\n%s\n", para)
		}
	case ReferencedParagraphs:
		for _, para := range r.Paragraphs {
			fmt.Fprintf(&sb, "\n%s\n", para.Text)
			sb.WriteString("References:\n")
			for _, ref := range para.References {
				if ref.Title != "" {
					fmt.Fprintf(&sb, "- %s: %s\n", ref.Title, ref.URL)
				} else {
					fmt.Fprintf(&sb, "- %s\n", ref.URL)
				}
			}
		}
	case EvidenceResponse:
		for _, para := range r.Paragraphs {
			fmt.Fprintf(&sb, "\n%s\n", para.Text)
			sb.WriteString("References:\n")
			for _, ref := range para.References {
				fmt.Fprintf(&sb, "- %s\n", ref.URL)
				fmt.Fprintf(&sb, "  Claim: %s\n", ref.SupportingClaim)
			}
		}
	default:
		fmt.Fprintf(&sb, "unknown response format: %s\n", resp.Format())
	}
	return sb.String()
}
