package analysis

import (
	"context"
	"fmt"
	"log"
)

// Result is a merged analysis plus per-model bookkeeping for the
// listing's ai_analysis block.
type Result struct {
	Analysis        Analysis
	ModelsUsed      []string
	ModelConfidence map[string]int
	ConfidenceScore float64
}

// fieldCount is the number of top-level attributes a fully answered
// analysis fills in, used to scale the confidence score.
const fieldCount = 13

// Service runs every configured provider and merges their answers.
type Service struct {
	providers []Provider
}

// NewService builds a service over the given providers. At least one
// is required; a MockProvider keeps the pipeline usable offline.
func NewService(providers ...Provider) *Service {
	return &Service{providers: providers}
}

// Analyze queries each provider in order and merges parsed fields,
// keeping the first non-empty value per key. Provider failures are
// logged and skipped; an error is returned only when every provider
// fails or yields nothing.
func (s *Service) Analyze(ctx context.Context, imagePath string) (*Result, error) {
	combined := make(map[string]string)
	result := &Result{ModelConfidence: make(map[string]int)}

	for _, provider := range s.providers {
		text, err := provider.Describe(ctx, imagePath)
		if err != nil {
			log.Printf("Analysis provider %s failed: %v", provider.Name(), err)
			continue
		}

		parsed := ParseResponse(text)
		if parsed.Confidence == ConfidenceEmpty {
			log.Printf("Analysis provider %s returned nothing parseable", provider.Name())
			continue
		}

		filled := 0
		for key, value := range parsed.Fields {
			if value == "" {
				continue
			}
			filled++
			if combined[key] == "" {
				combined[key] = value
			}
		}

		result.ModelsUsed = append(result.ModelsUsed, provider.Name())
		result.ModelConfidence[provider.Name()] = filled
	}

	if len(result.ModelsUsed) == 0 {
		return nil, fmt.Errorf("all analysis providers failed for %s", imagePath)
	}

	result.Analysis = fromFields(combined)
	result.ConfidenceScore = confidenceScore(result.Analysis)
	return result, nil
}

// confidenceScore is the fraction of attributes the merged analysis
// managed to fill.
func confidenceScore(a Analysis) float64 {
	filled := 0
	for _, s := range []string{
		a.Title, a.Artist, a.Medium, a.Style, a.SubjectMatter,
		a.Condition, a.EstimatedYear, a.SizeCategory, a.FrameInfo,
	} {
		if s != "" {
			filled++
		}
	}
	if len(a.Colors) > 0 {
		filled++
	}
	if len(a.AuthenticityMarkers) > 0 {
		filled++
	}
	if len(a.Keywords) > 0 {
		filled++
	}
	if a.SignaturePresent {
		filled++
	}
	return float64(filled) / float64(fieldCount)
}
