package listing

import (
	"fmt"
	"strings"

	"github.com/gauntletgallery/artlister/internal/analysis"
)

// GenerateDescription renders the full listing description from an
// analysis. The output is plain text suitable for both the preview
// page and the CSV export.
func GenerateDescription(a analysis.Analysis) string {
	var b strings.Builder

	period := a.EstimatedYear
	if period == "" {
		period = "Contemporary"
	}

	fmt.Fprintf(&b, "%s\n\n", a.Title)
	b.WriteString("ARTWORK DETAILS:\n")
	fmt.Fprintf(&b, "- Medium: %s\n", a.Medium)
	fmt.Fprintf(&b, "- Style: %s\n", a.Style)
	fmt.Fprintf(&b, "- Period: %s\n", period)
	fmt.Fprintf(&b, "- Condition: %s\n", a.Condition)
	fmt.Fprintf(&b, "- Size Category: %s\n", titleWord(a.SizeCategory))
	if a.FrameInfo != "" {
		fmt.Fprintf(&b, "- Frame: %s\n", a.FrameInfo)
	}

	b.WriteString("\nDESCRIPTION:\n")
	fmt.Fprintf(&b, "This captivating %s piece showcases %s.",
		strings.ToLower(a.Style), strings.ToLower(a.SubjectMatter))
	if len(a.Colors) > 0 {
		n := len(a.Colors)
		if n > 3 {
			n = 3
		}
		fmt.Fprintf(&b, " The artwork features a rich palette of %s tones, creating a dynamic visual experience that commands attention.",
			strings.Join(a.Colors[:n], ", "))
	}
	b.WriteString("\n")

	b.WriteString("\nKEY FEATURES:\n")
	fmt.Fprintf(&b, "- %s artwork in %s condition\n", a.Medium, strings.ToLower(a.Condition))
	if a.SignaturePresent {
		b.WriteString("- Signed by artist\n")
	} else {
		b.WriteString("- Unsigned piece\n")
	}
	b.WriteString("- Perfect for collectors and art enthusiasts\n")

	b.WriteString("\nAUTHENTICITY:\n")
	if len(a.AuthenticityMarkers) > 0 {
		for _, marker := range a.AuthenticityMarkers {
			fmt.Fprintf(&b, "- %s\n", marker)
		}
	} else {
		b.WriteString("- Sold as-is without authentication\n")
	}

	b.WriteString(`
SHIPPING & HANDLING:
- Carefully packaged with protective materials
- Ships within 1-2 business days
- Tracking number provided
- International shipping available

RETURNS:
- 30-day return policy
- Buyer pays return shipping
- Item must be returned in original condition

Please review all photos carefully and ask any questions before bidding.
Thank you for viewing this exceptional artwork!`)

	return strings.TrimSpace(b.String())
}
