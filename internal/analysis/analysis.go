// Package analysis turns artwork images into structured attributes by
// querying one or more vision model providers and parsing their free-text
// answers.
package analysis

import (
	"strings"

	"github.com/gauntletgallery/artlister/internal/pricing"
)

// Analysis is the structured description of a single artwork.
type Analysis struct {
	Title               string   `json:"title"`
	Artist              string   `json:"artist,omitempty"`
	Medium              string   `json:"medium"`
	Style               string   `json:"style"`
	Colors              []string `json:"colors"`
	SubjectMatter       string   `json:"subject_matter"`
	Condition           string   `json:"condition"`
	EstimatedYear       string   `json:"estimated_year,omitempty"`
	SizeCategory        string   `json:"size_category"`
	FrameInfo           string   `json:"frame_info"`
	SignaturePresent    bool     `json:"signature_present"`
	AuthenticityMarkers []string `json:"authenticity_markers"`
	Keywords            []string `json:"keywords,omitempty"`
}

// PricingAttributes projects the analysis onto the inputs the pricing
// engine cares about.
func (a Analysis) PricingAttributes() pricing.Attributes {
	return pricing.Attributes{
		Medium:              a.Medium,
		Condition:           a.Condition,
		SizeCategory:        a.SizeCategory,
		SignaturePresent:    a.SignaturePresent,
		AuthenticityMarkers: a.AuthenticityMarkers,
	}
}

// AuthenticityVerified reports whether any marker looks like real
// documentation rather than a visual guess.
func (a Analysis) AuthenticityVerified() bool {
	for _, marker := range a.AuthenticityMarkers {
		m := strings.ToLower(marker)
		if strings.Contains(m, "certificate") || strings.Contains(m, "provenance") {
			return true
		}
	}
	return false
}
