package listing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gauntletgallery/artlister/internal/analysis"
	"github.com/gauntletgallery/artlister/internal/pricing"
)

// Template shapes the title and keyword seed for a class of artwork.
type Template struct {
	Name          string
	TitleFormat   func(a analysis.Analysis) string
	Keywords      []string
	ConditionNote string
}

var templates = map[string]Template{
	"contemporary": {
		Name: "contemporary",
		TitleFormat: func(a analysis.Analysis) string {
			return joinNonEmpty(artistOr(a, ""), "-", a.Title, a.Medium, a.EstimatedYear)
		},
		Keywords:      []string{"contemporary art", "modern art", "gallery", "original"},
		ConditionNote: "Professional gallery piece in excellent condition",
	},
	"vintage": {
		Name: "vintage",
		TitleFormat: func(a analysis.Analysis) string {
			return joinNonEmpty("Vintage", artistOr(a, ""), "-", a.Title, a.EstimatedYear)
		},
		Keywords:      []string{"vintage art", "collectible", "estate", "authentic"},
		ConditionNote: "Vintage piece with age-appropriate wear",
	},
	"print": {
		Name: "print",
		TitleFormat: func(a analysis.Analysis) string {
			return joinNonEmpty(artistOr(a, ""), a.Title, "Print", a.EstimatedYear)
		},
		Keywords:      []string{"art print", "limited edition", "reproduction", "poster"},
		ConditionNote: "High-quality art print",
	},
	"photography": {
		Name: "photography",
		TitleFormat: func(a analysis.Analysis) string {
			return joinNonEmpty(artistOr(a, ""), "-", a.Title, "Photograph", a.EstimatedYear)
		},
		Keywords:      []string{"fine art photography", "photo", "print", "gallery"},
		ConditionNote: "Professional photography print",
	},
}

// SelectTemplate picks the listing template for an analysis: photographs
// and prints by medium, vintage for pre-1990 work, contemporary
// otherwise.
func SelectTemplate(a analysis.Analysis) Template {
	medium := strings.ToLower(a.Medium)
	switch {
	case strings.Contains(medium, "photograph") || strings.Contains(medium, "photo"):
		return templates["photography"]
	case strings.Contains(medium, "print"):
		return templates["print"]
	case yearBefore(a.EstimatedYear, 1990):
		return templates["vintage"]
	default:
		return templates["contemporary"]
	}
}

func yearBefore(year string, cutoff int) bool {
	year = strings.TrimSpace(year)
	if len(year) < 4 {
		return false
	}
	n, err := strconv.Atoi(year[:4])
	if err != nil {
		return false
	}
	return n < cutoff
}

func artistOr(a analysis.Analysis, fallback string) string {
	if a.Artist != "" && !strings.EqualFold(a.Artist, "unknown") {
		return a.Artist
	}
	return fallback
}

// Options carries per-gallery settings for listing generation.
type Options struct {
	Currency       string
	Location       string
	Quantity       int
	PaymentMethods []string
	Categories     []CategoryRule
	Policies       Policies
}

// DefaultOptions returns US-market defaults.
func DefaultOptions() Options {
	return Options{
		Currency:       "USD",
		Location:       "United States",
		Quantity:       1,
		PaymentMethods: []string{"PayPal", "Credit Card", "Debit Card"},
		Categories:     DefaultCategories(),
	}
}

// Builder assembles listings from analyses and price estimates.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder with the given options. Zero-valued
// fields fall back to DefaultOptions.
func NewBuilder(opts Options) *Builder {
	defaults := DefaultOptions()
	if opts.Currency == "" {
		opts.Currency = defaults.Currency
	}
	if opts.Location == "" {
		opts.Location = defaults.Location
	}
	if opts.Quantity == 0 {
		opts.Quantity = defaults.Quantity
	}
	if len(opts.PaymentMethods) == 0 {
		opts.PaymentMethods = defaults.PaymentMethods
	}
	if len(opts.Categories) == 0 {
		opts.Categories = defaults.Categories
	}
	return &Builder{opts: opts}
}

// Build assembles the full listing for an analysis result and its price
// estimate. elapsed is the wall-clock processing time for the item.
func (b *Builder) Build(result *analysis.Result, est pricing.Estimate, images []string, elapsed time.Duration) *Listing {
	a := result.Analysis
	tmpl := SelectTemplate(a)

	title := a.Title
	if formatted := tmpl.TitleFormat(a); formatted != "" {
		title = formatted
	}

	return &Listing{
		SKU:                  GenerateSKU(a.Artist),
		Title:                TruncateTitle(title),
		Subtitle:             strings.TrimSpace(a.Style + " " + a.Medium),
		Category:             Categorize(b.opts.Categories, a.Medium),
		Condition:            ConditionID(a.Condition),
		ConditionDescription: fmt.Sprintf("Artwork in %s condition. See photos for details.", strings.ToLower(a.Condition)),
		Price:                Price{Value: fmt.Sprintf("%.2f", est.BuyItNow), Currency: b.opts.Currency},
		StartingBid:          est.StartingBid,
		BuyItNowPrice:        est.BuyItNow,
		Quantity:             b.opts.Quantity,
		Format:               "FIXED_PRICE",
		Description:          GenerateDescription(a),
		ItemSpecifics:        itemSpecifics(a),
		Images:               images,
		Policies:             b.opts.Policies,
		Tags:                 GenerateTags(a, tmpl.Keywords),
		PaymentMethods:       b.opts.PaymentMethods,
		Location:             b.opts.Location,
		AIAnalysis: AIAnalysis{
			ConfidenceScore:      result.ConfidenceScore,
			AuthenticityVerified: a.AuthenticityVerified(),
			SuggestedPriceRange:  PriceRange{Min: est.SuggestedMin, Max: est.SuggestedMax},
			ModelsUsed:           result.ModelsUsed,
			ModelConfidence:      result.ModelConfidence,
		},
		Metadata: Metadata{
			GeneratedAt:           time.Now().UTC(),
			ProcessingTimeSeconds: elapsed.Seconds(),
		},
	}
}

// GenerateSKU builds a unique SKU from the artist's initials, a
// timestamp, and a random suffix, e.g. "VANG-240830154512-3f9a2c".
// The suffix keeps SKUs distinct when a batch run processes several
// images within the same second.
func GenerateSKU(artist string) string {
	var prefix strings.Builder
	for _, r := range strings.ToUpper(artist) {
		if r >= 'A' && r <= 'Z' {
			prefix.WriteRune(r)
			if prefix.Len() == 4 {
				break
			}
		}
	}
	p := prefix.String()
	if p == "" {
		p = "ART"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return p + "-" + time.Now().Format("060102150405") + "-" + suffix
}

func itemSpecifics(a analysis.Analysis) map[string]string {
	features := "Original Artwork"
	if len(a.AuthenticityMarkers) > 0 {
		n := len(a.AuthenticityMarkers)
		if n > 3 {
			n = 3
		}
		features = strings.Join(a.AuthenticityMarkers[:n], ", ")
	}

	year := a.EstimatedYear
	if year == "" {
		year = "Unknown"
	}

	material := "Paper"
	if strings.Contains(strings.ToLower(a.Medium), "canvas") {
		material = "Canvas"
	}

	framing := "Unframed"
	if strings.Contains(strings.ToLower(a.FrameInfo), "framed") &&
		!strings.Contains(strings.ToLower(a.FrameInfo), "unframed") {
		framing = "Framed"
	}

	signed := "No"
	if a.SignaturePresent {
		signed = "Yes"
	}

	originality := "Original"
	if strings.Contains(strings.ToLower(a.Medium), "print") {
		originality = "Print"
	}

	specs := map[string]string{
		"Artist":                      artistOr(a, "Unknown"),
		"Type":                        a.Medium,
		"Medium":                      a.Medium,
		"Style":                       a.Style,
		"Subject":                     a.SubjectMatter,
		"Size":                        titleWord(a.SizeCategory),
		"Size Type/Largest Dimension": titleWord(a.SizeCategory),
		"Features":                    features,
		"Year":                        year,
		"Year of Production":          year,
		"Material":                    material,
		"Framing":                     framing,
		"Signed":                      signed,
		"Originality":                 originality,
	}
	if len(a.Colors) > 0 {
		n := len(a.Colors)
		if n > 3 {
			n = 3
		}
		specs["Color"] = strings.Join(a.Colors[:n], ", ")
	}
	return specs
}

// GenerateTags produces up to 30 unique lowercase search tags.
func GenerateTags(a analysis.Analysis, seed []string) []string {
	var tags []string
	tags = append(tags, strings.Fields(strings.ToLower(a.Medium))...)
	tags = append(tags, strings.Fields(strings.ToLower(a.Style))...)

	for i, color := range a.Colors {
		if i == 3 {
			break
		}
		tags = append(tags, strings.ToLower(color))
	}

	subjectWords := 0
	for _, word := range strings.Fields(strings.ToLower(a.SubjectMatter)) {
		if len(word) > 3 {
			tags = append(tags, word)
			subjectWords++
			if subjectWords == 5 {
				break
			}
		}
	}

	tags = append(tags, seed...)
	tags = append(tags, "art", "artwork", "original", "handmade", "wall art",
		"home decor", "collectible", "fine art")

	switch strings.ToLower(a.Condition) {
	case "mint", "excellent":
		tags = append(tags, "pristine")
	}
	if a.SignaturePresent {
		tags = append(tags, "signed", "authentic")
	}

	seen := make(map[string]bool, len(tags))
	unique := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		unique = append(unique, tag)
		if len(unique) == 30 {
			break
		}
	}
	return unique
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	s := strings.Join(out, " ")
	s = strings.TrimPrefix(s, "- ")
	return strings.TrimSpace(s)
}

func titleWord(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
