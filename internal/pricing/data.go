package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BasePrice pairs a medium substring with its base value in USD.
// Matching is ordered: the first substring found in the medium wins.
type BasePrice struct {
	Match string  `yaml:"match"`
	Price float64 `yaml:"price"`
}

// Tables holds every lookup table the pricing engine consults.
// The zero value is unusable; start from DefaultTables and override
// from YAML where an operator needs marketplace-specific numbers.
type Tables struct {
	MediumBasePrices      []BasePrice        `yaml:"medium_base_prices"`
	DefaultBasePrice      float64            `yaml:"default_base_price"`
	SizeMultipliers       map[string]float64 `yaml:"size_multipliers"`
	ConditionMultipliers  map[string]float64 `yaml:"condition_multipliers"`
	SignedMultiplier      float64            `yaml:"signed_multiplier"`
	CertificateMultiplier float64            `yaml:"certificate_multiplier"`
}

// DefaultTables returns the built-in pricing tables.
func DefaultTables() Tables {
	return Tables{
		MediumBasePrices: []BasePrice{
			{Match: "oil", Price: 500},
			{Match: "acrylic", Price: 350},
			{Match: "watercolor", Price: 250},
			{Match: "print", Price: 150},
			{Match: "photograph", Price: 200},
			{Match: "drawing", Price: 180},
			{Match: "sculpture", Price: 600},
			{Match: "mixed", Price: 400},
			{Match: "digital", Price: 100},
		},
		DefaultBasePrice: 250,
		SizeMultipliers: map[string]float64{
			"miniature": 0.5,
			"small":     0.8,
			"medium":    1.0,
			"large":     1.5,
			"oversized": 2.0,
		},
		ConditionMultipliers: map[string]float64{
			"mint":      1.2,
			"excellent": 1.0,
			"very_good": 0.8,
			"good":      0.6,
			"fair":      0.4,
			"poor":      0.2,
		},
		SignedMultiplier:      1.5,
		CertificateMultiplier: 1.3,
	}
}

// LoadTables reads pricing tables from a YAML file, starting from the
// defaults so a partial file only overrides the sections it names.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()

	data, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("failed to read pricing tables: %w", err)
	}

	if err := yaml.Unmarshal(data, &tables); err != nil {
		return DefaultTables(), fmt.Errorf("failed to parse pricing tables: %w", err)
	}

	return tables, nil
}
