package listing

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gauntletgallery/artlister/internal/analysis"
	"github.com/gauntletgallery/artlister/internal/pricing"
)

func TestTruncateTitle(t *testing.T) {
	short := "A Quiet Harbor Scene"
	if got := TruncateTitle(short); got != short {
		t.Errorf("Short title should pass through, got %q", got)
	}

	exact := strings.Repeat("x", 80)
	if got := TruncateTitle(exact); got != exact {
		t.Errorf("80-char title should pass through unchanged")
	}

	long := strings.Repeat("x", 120)
	got := TruncateTitle(long)
	if len(got) != 80 {
		t.Errorf("Truncated title should be exactly 80 chars, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncated title should end with ellipsis, got %q", got)
	}
	if got[:77] != long[:77] {
		t.Errorf("Truncated title should keep the first 77 chars")
	}

	accented := strings.Repeat("é", 50)
	if got := TruncateTitle(accented); got != accented {
		t.Errorf("50-char multibyte title should pass through, got %q", got)
	}

	longAccented := strings.Repeat("é", 100)
	got = TruncateTitle(longAccented)
	if !utf8.ValidString(got) {
		t.Errorf("Truncated multibyte title is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 80 {
		t.Errorf("Truncated multibyte title should be 80 chars, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncated multibyte title should end with ellipsis, got %q", got)
	}
}

func TestCategorize(t *testing.T) {
	rules := DefaultCategories()

	cases := []struct {
		medium string
		id     int
		name   string
	}{
		{"Oil on canvas", 20125, "Art > Paintings > Oil Paintings"},
		{"Acrylic on board", 20126, "Art > Paintings > Acrylic Paintings"},
		{"Watercolor on paper", 20127, "Art > Paintings > Watercolor Paintings"},
		{"Limited edition print", 360010003, "Art > Prints > Lithographs"},
		{"Stone lithograph", 360010003, "Art > Prints > Lithographs"},
		{"Gelatin silver photograph", 360010011, "Art > Photographs > Contemporary"},
		{"Pencil on paper", 20130, "Art > Drawings > Pencil Drawings"},
		{"Charcoal drawing", 20130, "Art > Drawings > Pencil Drawings"},
		{"Bronze sculpture", 553, "Art > Sculptures > Contemporary"},
		{"Digital composition", 360010016, "Art > Digital Art > Digital Prints"},
		{"Found Object Assemblage", 20128, "Art > Paintings > Mixed Media"},
		{"", 20128, "Art > Paintings > Mixed Media"},
	}
	for _, c := range cases {
		got := Categorize(rules, c.medium)
		if got.ID != c.id || got.Name != c.name {
			t.Errorf("Categorize(%q) = %d %q, want %d %q", c.medium, got.ID, got.Name, c.id, c.name)
		}
	}
}

func TestConditionID(t *testing.T) {
	cases := []struct {
		condition string
		want      string
	}{
		{"mint", "NEW"},
		{"Excellent", "LIKE_NEW"},
		{"very good", "VERY_GOOD"},
		{"very_good", "VERY_GOOD"},
		{"good", "GOOD"},
		{"fair", "ACCEPTABLE"},
		{"poor", "GOOD"},
		{"", "GOOD"},
	}
	for _, c := range cases {
		if got := ConditionID(c.condition); got != c.want {
			t.Errorf("ConditionID(%q) = %q, want %q", c.condition, got, c.want)
		}
	}
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Analysis: analysis.Analysis{
			Title:               "Harbor at Dawn",
			Artist:              "Jane Moreau",
			Medium:              "Oil on canvas",
			Style:               "Impressionism",
			Colors:              []string{"Blue", "Gold", "Grey"},
			SubjectMatter:       "Fishing boats at sunrise",
			Condition:           "excellent",
			EstimatedYear:       "2019",
			SizeCategory:        "medium",
			FrameInfo:           "Framed in gilt wood",
			SignaturePresent:    true,
			AuthenticityMarkers: []string{"Certificate of authenticity"},
		},
		ModelsUsed:      []string{"mock"},
		ModelConfidence: map[string]int{"mock": 12},
		ConfidenceScore: 0.9,
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder(Options{})
	est := pricing.Estimate{
		SuggestedMin: 157.50,
		SuggestedMax: 292.50,
		StartingBid:  67.50,
		BuyItNow:     247.50,
	}

	l := b.Build(sampleResult(), est, []string{"https://img.example/1.jpg"}, 1200*time.Millisecond)

	if l.SKU == "" || !strings.HasPrefix(l.SKU, "JANE-") {
		t.Errorf("Expected SKU with artist prefix, got %q", l.SKU)
	}
	if len(l.Title) > 80 {
		t.Errorf("Title exceeds 80 chars: %q", l.Title)
	}
	if l.Category.ID != 20125 {
		t.Errorf("Expected oil painting category 20125, got %d", l.Category.ID)
	}
	if l.Condition != "LIKE_NEW" {
		t.Errorf("Expected LIKE_NEW condition, got %q", l.Condition)
	}
	if l.Price.Value != "247.50" || l.Price.Currency != "USD" {
		t.Errorf("Expected price 247.50 USD, got %+v", l.Price)
	}
	if l.Quantity != 1 || l.Format != "FIXED_PRICE" {
		t.Errorf("Expected quantity 1 fixed price, got %d %q", l.Quantity, l.Format)
	}
	if l.ItemSpecifics["Artist"] != "Jane Moreau" {
		t.Errorf("Expected Artist specific, got %q", l.ItemSpecifics["Artist"])
	}
	if l.ItemSpecifics["Material"] != "Canvas" {
		t.Errorf("Expected Canvas material for oil on canvas, got %q", l.ItemSpecifics["Material"])
	}
	if l.ItemSpecifics["Framing"] != "Framed" {
		t.Errorf("Expected Framed, got %q", l.ItemSpecifics["Framing"])
	}
	if l.ItemSpecifics["Signed"] != "Yes" {
		t.Errorf("Expected Signed Yes, got %q", l.ItemSpecifics["Signed"])
	}
	if !l.AIAnalysis.AuthenticityVerified {
		t.Error("Expected certificate marker to verify authenticity")
	}
	if l.AIAnalysis.SuggestedPriceRange.Min != 157.50 || l.AIAnalysis.SuggestedPriceRange.Max != 292.50 {
		t.Errorf("Expected price range from estimate, got %+v", l.AIAnalysis.SuggestedPriceRange)
	}
	if len(l.Tags) == 0 || len(l.Tags) > 30 {
		t.Errorf("Expected between 1 and 30 tags, got %d", len(l.Tags))
	}
	if l.Metadata.ProcessingTimeSeconds != 1.2 {
		t.Errorf("Expected 1.2s processing time, got %v", l.Metadata.ProcessingTimeSeconds)
	}
	if !strings.Contains(l.Description, "ARTWORK DETAILS") {
		t.Error("Expected structured description sections")
	}
	if len(l.Description) < 100 {
		t.Error("Description should be substantial")
	}
}

func TestSelectTemplate(t *testing.T) {
	cases := []struct {
		medium string
		year   string
		want   string
	}{
		{"Gelatin silver photograph", "", "photography"},
		{"Screen print", "", "print"},
		{"Oil on canvas", "1975", "vintage"},
		{"Oil on canvas", "2015", "contemporary"},
		{"Oil on canvas", "", "contemporary"},
	}
	for _, c := range cases {
		got := SelectTemplate(analysis.Analysis{Medium: c.medium, EstimatedYear: c.year})
		if got.Name != c.want {
			t.Errorf("SelectTemplate(%s, %s) = %s, want %s", c.medium, c.year, got.Name, c.want)
		}
	}
}

func TestGenerateSKU(t *testing.T) {
	sku := GenerateSKU("Jane Moreau")
	if !strings.HasPrefix(sku, "JANE-") {
		t.Errorf("Expected JANE- prefix, got %q", sku)
	}
	if !strings.Contains(sku, "-") {
		t.Errorf("SKU should contain hyphen separator, got %q", sku)
	}

	if got := GenerateSKU("12345"); !strings.HasPrefix(got, "ART-") {
		t.Errorf("Expected ART fallback prefix for non-alpha artist, got %q", got)
	}

	// Back-to-back generation lands in the same second; the random
	// suffix must still keep the SKUs apart.
	if a, b := GenerateSKU("Jane Moreau"), GenerateSKU("Jane Moreau"); a == b {
		t.Errorf("Expected distinct SKUs for same-second generation, got %q twice", a)
	}
}

func TestGenerateTagsLimit(t *testing.T) {
	a := analysis.Analysis{
		Medium:           "mixed media collage assemblage on reclaimed wood panel",
		Style:            "post modern contemporary abstract expressionist outsider",
		Colors:           []string{"Red", "Blue", "Green", "Yellow"},
		SubjectMatter:    "sprawling urban landscape with distant mountains under churning clouds",
		Condition:        "mint",
		SignaturePresent: true,
	}

	tags := GenerateTags(a, []string{"contemporary art", "modern art", "gallery", "original"})
	if len(tags) > 30 {
		t.Errorf("Expected at most 30 tags, got %d", len(tags))
	}

	seen := make(map[string]bool)
	for _, tag := range tags {
		if seen[tag] {
			t.Errorf("Duplicate tag %q", tag)
		}
		seen[tag] = true
	}
	if !seen["signed"] || !seen["pristine"] {
		t.Errorf("Expected condition and signature tags, got %v", tags)
	}
}

func TestWriteCSV(t *testing.T) {
	b := NewBuilder(Options{})
	est := pricing.Estimate{StartingBid: 67.50, BuyItNow: 247.50, SuggestedMin: 157.50, SuggestedMax: 292.50}
	l := b.Build(sampleResult(), est, nil, time.Second)
	l.Description = strings.Repeat("d", 5000)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*Listing{l}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	r := csv.NewReader(&buf)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("Exported CSV does not parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header plus one row, got %d records", len(records))
	}

	wantHeader := []string{
		"Title", "Subtitle", "Category ID", "Condition", "Start Price",
		"Buy It Now Price", "Description", "PicURL", "Quantity",
		"Duration", "Location", "Payment Methods", "Shipping Service",
	}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("Header column %d = %q, want %q", i, records[0][i], col)
		}
	}

	row := records[1]
	if row[2] != "20125" {
		t.Errorf("Expected category 20125, got %q", row[2])
	}
	if row[4] != "67.50" || row[5] != "247.50" {
		t.Errorf("Expected prices 67.50/247.50, got %q/%q", row[4], row[5])
	}
	if len(row[6]) != 4000 {
		t.Errorf("Expected description truncated to 4000 chars, got %d", len(row[6]))
	}
	if row[8] != "1" || row[9] != "7" {
		t.Errorf("Expected quantity 1 duration 7, got %q/%q", row[8], row[9])
	}
	if row[10] != "United States" {
		t.Errorf("Expected United States location, got %q", row[10])
	}
	if row[11] != "PayPal|Credit Card|Debit Card" {
		t.Errorf("Expected pipe-joined payment methods, got %q", row[11])
	}
	if row[12] != "USPS Priority Mail" {
		t.Errorf("Expected USPS Priority Mail, got %q", row[12])
	}
}

func TestWriteCSVMultibyteDescription(t *testing.T) {
	b := NewBuilder(Options{})
	est := pricing.Estimate{StartingBid: 67.50, BuyItNow: 247.50}
	l := b.Build(sampleResult(), est, nil, time.Second)
	l.Description = strings.Repeat("é", 4500)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*Listing{l}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Exported CSV does not parse: %v", err)
	}

	desc := records[1][6]
	if !utf8.ValidString(desc) {
		t.Error("Truncated description is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(desc); n != 4000 {
		t.Errorf("Expected description truncated to 4000 chars, got %d", n)
	}
}
