// Package listing maps artwork analyses and price estimates onto the
// payload shapes eBay expects, plus CSV bulk-upload rows.
package listing

import (
	"strings"
	"time"
)

// Price is a money amount the way eBay's Sell APIs carry it: a decimal
// string plus a currency code.
type Price struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// PriceRange bounds a suggested value estimate.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AIAnalysis records how the automated analysis arrived at a listing.
type AIAnalysis struct {
	ConfidenceScore      float64        `json:"confidence_score"`
	AuthenticityVerified bool           `json:"authenticity_verified"`
	SuggestedPriceRange  PriceRange     `json:"suggested_price_range"`
	ModelsUsed           []string       `json:"models_used"`
	ModelConfidence      map[string]int `json:"model_confidence,omitempty"`
}

// Metadata captures when and how fast a listing was generated.
type Metadata struct {
	GeneratedAt           time.Time `json:"generated_at"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
}

// Policies names the business policies a published offer references.
type Policies struct {
	Fulfillment string `json:"fulfillment"`
	Payment     string `json:"payment"`
	Return      string `json:"return"`
}

// Listing is the full generated listing: everything needed for a
// preview, a CSV row, or the Sell API calls.
type Listing struct {
	SKU                  string            `json:"sku"`
	Title                string            `json:"title"`
	Subtitle             string            `json:"subtitle,omitempty"`
	Category             Category          `json:"category"`
	Condition            string            `json:"condition"`
	ConditionDescription string            `json:"condition_description"`
	Price                Price             `json:"price"`
	StartingBid          float64           `json:"starting_bid"`
	BuyItNowPrice        float64           `json:"buy_it_now_price"`
	Quantity             int               `json:"quantity"`
	Format               string            `json:"format"`
	Description          string            `json:"description"`
	ItemSpecifics        map[string]string `json:"item_specifics"`
	Images               []string          `json:"images"`
	Policies             Policies          `json:"policies"`
	Tags                 []string          `json:"tags"`
	PaymentMethods       []string          `json:"payment_methods"`
	Location             string            `json:"location"`
	AIAnalysis           AIAnalysis        `json:"ai_analysis"`
	Metadata             Metadata          `json:"metadata"`
}

// TruncateTitle enforces eBay's 80-character title limit. Longer titles
// are cut to 77 characters plus an ellipsis, exactly 80 total. The cut
// counts characters, not bytes, so multibyte titles stay valid UTF-8.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 80 {
		return title
	}
	return string(runes[:77]) + "..."
}

// ConditionID maps a condition grade onto eBay's condition enum.
func ConditionID(condition string) string {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "mint":
		return "NEW"
	case "excellent":
		return "LIKE_NEW"
	case "very good", "very_good":
		return "VERY_GOOD"
	case "good":
		return "GOOD"
	case "fair":
		return "ACCEPTABLE"
	default:
		return "GOOD"
	}
}
