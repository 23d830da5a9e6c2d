package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPalette is the chart colour cycle used when no categories file is given
var DefaultPalette = []string{
	"#00ffff", "#8b5cf6", "#ec4899", "#10b981", "#f59e0b",
	"#ef4444", "#06b6d4", "#84cc16", "#f97316", "#6366f1",
}

// DefaultCurrencySymbol prefixes amounts in notifications and reports
const DefaultCurrencySymbol = "₹"

// Catalog is the presentation data loaded from CATEGORIES_FILE
type Catalog struct {
	DefaultCategories []string `yaml:"default_categories"`
	Palette           []string `yaml:"palette"`
	CurrencySymbol    string   `yaml:"currency_symbol"`
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() Catalog {
	return Catalog{
		DefaultCategories: append([]string(nil), domain.DefaultCategories...),
		Palette:           append([]string(nil), DefaultPalette...),
		CurrencySymbol:    DefaultCurrencySymbol,
	}
}

// LoadCatalog reads a YAML categories file. Missing sections fall back to defaults.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read categories file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog YAML
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse categories file: %w", err)
	}

	defaults := DefaultCatalog()
	categories := make([]string, 0, len(c.DefaultCategories))
	seen := make(map[string]bool)
	for _, name := range c.DefaultCategories {
		name, err := domain.NormalizeCategory(name)
		if err != nil {
			return Catalog{}, fmt.Errorf("categories file: %w", err)
		}
		if !seen[name] {
			seen[name] = true
			categories = append(categories, name)
		}
	}
	c.DefaultCategories = categories

	if len(c.DefaultCategories) == 0 {
		c.DefaultCategories = defaults.DefaultCategories
	}
	if len(c.Palette) == 0 {
		c.Palette = defaults.Palette
	}
	if strings.TrimSpace(c.CurrencySymbol) == "" {
		c.CurrencySymbol = defaults.CurrencySymbol
	}
	return c, nil
}
