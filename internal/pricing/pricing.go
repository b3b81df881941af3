// Package pricing estimates artwork values from fixed lookup tables.
package pricing

import (
	"math"
	"strings"
)

// Attributes captures the characteristics that drive a price estimate.
// Values are treated as immutable for a given analysis pass.
type Attributes struct {
	Medium              string   `json:"medium"`
	Condition           string   `json:"condition"`
	SizeCategory        string   `json:"sizeCategory"`
	SignaturePresent    bool     `json:"signaturePresent"`
	AuthenticityMarkers []string `json:"authenticityMarkers"`
}

// Estimate holds the four derived price points.
type Estimate struct {
	SuggestedMin float64 `json:"suggestedMin"`
	SuggestedMax float64 `json:"suggestedMax"`
	StartingBid  float64 `json:"startingBid"`
	BuyItNow     float64 `json:"buyItNow"`
}

// Breakdown shows how an estimate was computed, for previews and logs.
type Breakdown struct {
	BasePrice              float64 `json:"basePrice"`
	SizeMultiplier         float64 `json:"sizeMultiplier"`
	ConditionMultiplier    float64 `json:"conditionMultiplier"`
	AuthenticityMultiplier float64 `json:"authenticityMultiplier"`
	EstimatedValue         float64 `json:"estimatedValue"`
}

// Engine computes price estimates from a set of lookup tables.
type Engine struct {
	tables Tables
}

// NewEngine creates an engine using the given tables.
func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// Estimate derives the price quadruple for the given attributes.
// It never fails: unrecognized media, sizes and conditions fall back
// to neutral defaults.
func (e *Engine) Estimate(attrs Attributes) Estimate {
	est, _ := e.EstimateWithBreakdown(attrs)
	return est
}

// EstimateWithBreakdown is Estimate plus the intermediate factors.
func (e *Engine) EstimateWithBreakdown(attrs Attributes) (Estimate, Breakdown) {
	base := e.basePrice(attrs.Medium)
	sizeMult := e.sizeMultiplier(attrs.SizeCategory)
	condMult := e.conditionMultiplier(attrs.Condition)
	authMult := e.authenticityMultiplier(attrs)

	value := base * sizeMult * condMult * authMult

	// The starting bid sits below the suggested minimum on purpose: it
	// is an auction floor, not part of the estimate range.
	est := Estimate{
		SuggestedMin: round2(value * 0.7),
		SuggestedMax: round2(value * 1.3),
		StartingBid:  round2(value * 0.3),
		BuyItNow:     round2(value * 1.1),
	}

	return est, Breakdown{
		BasePrice:              base,
		SizeMultiplier:         sizeMult,
		ConditionMultiplier:    condMult,
		AuthenticityMultiplier: authMult,
		EstimatedValue:         value,
	}
}

// basePrice finds the base value for a medium by ordered substring match.
func (e *Engine) basePrice(medium string) float64 {
	m := strings.ToLower(medium)
	for _, bp := range e.tables.MediumBasePrices {
		if strings.Contains(m, bp.Match) {
			return bp.Price
		}
	}
	return e.tables.DefaultBasePrice
}

func (e *Engine) sizeMultiplier(size string) float64 {
	if mult, ok := e.tables.SizeMultipliers[normalizeKey(size)]; ok {
		return mult
	}
	return 1.0
}

func (e *Engine) conditionMultiplier(condition string) float64 {
	if mult, ok := e.tables.ConditionMultipliers[normalizeKey(condition)]; ok {
		return mult
	}
	return 0.8
}

// authenticityMultiplier compounds the signature and certificate factors.
func (e *Engine) authenticityMultiplier(attrs Attributes) float64 {
	mult := 1.0
	if attrs.SignaturePresent {
		mult *= e.tables.SignedMultiplier
	}
	for _, marker := range attrs.AuthenticityMarkers {
		if strings.Contains(strings.ToLower(marker), "certificate") {
			mult *= e.tables.CertificateMultiplier
			break
		}
	}
	return mult
}

// normalizeKey lowercases and converts spaces to underscores so
// "Very Good" matches the "very_good" table key.
func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// round2 rounds half away from zero to 2 decimal places.
func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
