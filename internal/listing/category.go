package listing

import "strings"

// CategoryRule maps a medium substring to an eBay category. Rules are
// checked in order; the first match wins.
type CategoryRule struct {
	Matches []string `yaml:"matches"`
	ID      int      `yaml:"id"`
	Name    string   `yaml:"name"`
}

// DefaultCategories returns the built-in eBay art category table.
func DefaultCategories() []CategoryRule {
	return []CategoryRule{
		{Matches: []string{"oil"}, ID: 20125, Name: "Art > Paintings > Oil Paintings"},
		{Matches: []string{"acrylic"}, ID: 20126, Name: "Art > Paintings > Acrylic Paintings"},
		{Matches: []string{"watercolor"}, ID: 20127, Name: "Art > Paintings > Watercolor Paintings"},
		{Matches: []string{"print", "lithograph"}, ID: 360010003, Name: "Art > Prints > Lithographs"},
		{Matches: []string{"photograph"}, ID: 360010011, Name: "Art > Photographs > Contemporary"},
		{Matches: []string{"drawing", "pencil"}, ID: 20130, Name: "Art > Drawings > Pencil Drawings"},
		{Matches: []string{"sculpture"}, ID: 553, Name: "Art > Sculptures > Contemporary"},
		{Matches: []string{"digital"}, ID: 360010016, Name: "Art > Digital Art > Digital Prints"},
	}
}

// fallbackCategory is used when no rule matches the medium.
var fallbackCategory = Category{ID: 20128, Name: "Art > Paintings > Mixed Media"}

// Category identifies an eBay leaf category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Categorize resolves the category for a medium using the given rules.
func Categorize(rules []CategoryRule, medium string) Category {
	m := strings.ToLower(medium)
	for _, rule := range rules {
		for _, match := range rule.Matches {
			if strings.Contains(m, match) {
				return Category{ID: rule.ID, Name: rule.Name}
			}
		}
	}
	return fallbackCategory
}
