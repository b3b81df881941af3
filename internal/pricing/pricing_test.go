package pricing

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestEstimateSignedPrint(t *testing.T) {
	e := NewEngine(DefaultTables())

	// Signed screen print in excellent condition, medium size, no markers.
	// Base 150, size x1.0, condition x1.0, signature x1.5 = 225.
	attrs := Attributes{
		Medium:           "Screen Print",
		Condition:        "Excellent",
		SizeCategory:     "medium",
		SignaturePresent: true,
	}

	est := e.Estimate(attrs)
	if !almostEqual(est.SuggestedMin, 157.50) {
		t.Errorf("Expected suggested min 157.50, got %.2f", est.SuggestedMin)
	}
	if !almostEqual(est.SuggestedMax, 292.50) {
		t.Errorf("Expected suggested max 292.50, got %.2f", est.SuggestedMax)
	}
	if !almostEqual(est.StartingBid, 67.50) {
		t.Errorf("Expected starting bid 67.50, got %.2f", est.StartingBid)
	}
	if !almostEqual(est.BuyItNow, 247.50) {
		t.Errorf("Expected buy it now 247.50, got %.2f", est.BuyItNow)
	}
}

func TestEstimateBreakdown(t *testing.T) {
	e := NewEngine(DefaultTables())

	attrs := Attributes{
		Medium:              "Oil on canvas",
		Condition:           "mint",
		SizeCategory:        "large",
		SignaturePresent:    true,
		AuthenticityMarkers: []string{"certificate of authenticity"},
	}

	_, bd := e.EstimateWithBreakdown(attrs)
	if !almostEqual(bd.BasePrice, 500) {
		t.Errorf("Expected base price 500 for oil, got %.2f", bd.BasePrice)
	}
	if !almostEqual(bd.SizeMultiplier, 1.5) {
		t.Errorf("Expected size multiplier 1.5 for large, got %.2f", bd.SizeMultiplier)
	}
	if !almostEqual(bd.ConditionMultiplier, 1.2) {
		t.Errorf("Expected condition multiplier 1.2 for mint, got %.2f", bd.ConditionMultiplier)
	}
	// Signature and certificate compound: 1.5 * 1.3
	if !almostEqual(bd.AuthenticityMultiplier, 1.95) {
		t.Errorf("Expected authenticity multiplier 1.95, got %.2f", bd.AuthenticityMultiplier)
	}
	want := 500 * 1.5 * 1.2 * 1.95
	if !almostEqual(bd.EstimatedValue, want) {
		t.Errorf("Expected estimated value %.2f, got %.2f", want, bd.EstimatedValue)
	}
}

func TestEstimateDefaults(t *testing.T) {
	e := NewEngine(DefaultTables())

	// Unknown everything falls back to defaults: base 250, size 1.0,
	// condition 0.8, no authenticity bump.
	attrs := Attributes{
		Medium:       "Found Object Assemblage",
		Condition:    "unknown",
		SizeCategory: "weird",
	}

	_, bd := e.EstimateWithBreakdown(attrs)
	if !almostEqual(bd.BasePrice, 250) {
		t.Errorf("Expected default base price 250, got %.2f", bd.BasePrice)
	}
	if !almostEqual(bd.SizeMultiplier, 1.0) {
		t.Errorf("Expected default size multiplier 1.0, got %.2f", bd.SizeMultiplier)
	}
	if !almostEqual(bd.ConditionMultiplier, 0.8) {
		t.Errorf("Expected default condition multiplier 0.8, got %.2f", bd.ConditionMultiplier)
	}
	if !almostEqual(bd.AuthenticityMultiplier, 1.0) {
		t.Errorf("Expected authenticity multiplier 1.0, got %.2f", bd.AuthenticityMultiplier)
	}
	if !almostEqual(bd.EstimatedValue, 200) {
		t.Errorf("Expected estimated value 200, got %.2f", bd.EstimatedValue)
	}
}

func TestBasePriceMatching(t *testing.T) {
	e := NewEngine(DefaultTables())

	cases := []struct {
		medium string
		want   float64
	}{
		{"Oil on canvas", 500},
		{"acrylic on board", 350},
		{"Watercolor study", 250},
		{"Limited edition print", 150},
		{"Gelatin silver photograph", 200},
		{"Charcoal drawing", 180},
		{"Bronze sculpture", 600},
		{"Mixed media collage", 400},
		{"Digital composition", 100},
		{"", 250},
	}
	for _, c := range cases {
		got := e.basePrice(c.medium)
		if !almostEqual(got, c.want) {
			t.Errorf("basePrice(%q) = %.2f, want %.2f", c.medium, got, c.want)
		}
	}
}

func TestEstimateOrdering(t *testing.T) {
	e := NewEngine(DefaultTables())

	mediums := []string{"oil", "print", "sculpture", "digital", "something else"}
	sizes := []string{"miniature", "small", "medium", "large", "oversized", ""}
	conditions := []string{"mint", "excellent", "good", "fair", "poor", "unknown"}

	for _, m := range mediums {
		for _, s := range sizes {
			for _, c := range conditions {
				est := e.Estimate(Attributes{Medium: m, SizeCategory: s, Condition: c})
				if est.SuggestedMin <= 0 || est.SuggestedMax <= 0 || est.StartingBid <= 0 || est.BuyItNow <= 0 {
					t.Errorf("Non-positive estimate for %s/%s/%s: %+v", m, s, c, est)
				}
				if est.SuggestedMin > est.SuggestedMax {
					t.Errorf("Min above max for %s/%s/%s: %+v", m, s, c, est)
				}
				if est.StartingBid >= est.BuyItNow {
					t.Errorf("Starting bid at or above buy it now for %s/%s/%s: %+v", m, s, c, est)
				}
			}
		}
	}
}

func TestRound2(t *testing.T) {
	if got := round2(157.499); !almostEqual(got, 157.50) {
		t.Errorf("round2(157.499) = %v", got)
	}
	if got := round2(67.505); !almostEqual(got, 67.51) {
		t.Errorf("round2(67.505) = %v", got)
	}
}

func TestFees(t *testing.T) {
	fb := Fees(100)
	if !almostEqual(fb.InsertionFee, 0.30) {
		t.Errorf("Expected insertion fee 0.30, got %.2f", fb.InsertionFee)
	}
	if !almostEqual(fb.FinalValueFee, 12.50) {
		t.Errorf("Expected final value fee 12.50, got %.2f", fb.FinalValueFee)
	}
	if !almostEqual(fb.PaymentProcessing, 3.20) {
		t.Errorf("Expected payment processing 3.20, got %.2f", fb.PaymentProcessing)
	}
	if !almostEqual(fb.TotalFees, 16.00) {
		t.Errorf("Expected total fees 16.00, got %.2f", fb.TotalFees)
	}
	if !almostEqual(fb.NetAmount, 84.00) {
		t.Errorf("Expected net amount 84.00, got %.2f", fb.NetAmount)
	}
}

func TestProfit(t *testing.T) {
	p := Profit(40, 100)
	if !almostEqual(p.GrossProfit, 60) {
		t.Errorf("Expected gross profit 60, got %.2f", p.GrossProfit)
	}
	if !almostEqual(p.NetProfit, 44) {
		t.Errorf("Expected net profit 44, got %.2f", p.NetProfit)
	}
	if !almostEqual(p.ProfitMargin, 44) {
		t.Errorf("Expected margin 44%%, got %.2f", p.ProfitMargin)
	}

	zero := Profit(10, 0)
	if zero.ProfitMargin != 0 {
		t.Errorf("Expected zero margin for zero sale price, got %.2f", zero.ProfitMargin)
	}
}
