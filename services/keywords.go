package services

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"ir-query-processor/errors"
	"ir-query-processor/models"
)

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

// KeywordConfig holds the data-driven classification tables: the sentinel
// values excluded from surface extraction and, per category, the bilingual
// keyword set and entity extraction patterns. Category order is significant
// and preserved from the file.
type KeywordConfig struct {
	Sentinels  []string       `yaml:"sentinels"`
	Categories []CategoryRule `yaml:"categories"`
}

// CategoryRule defines one intent category's detection keywords and
// entity extraction patterns.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Patterns []string `yaml:"patterns"`
}

// knownCategories are the classification buckets the pipeline dispatches on.
// multiple and general are synthesized by the parser, never configured.
var knownCategories = map[string]models.IntentCategory{
	"person":         models.IntentPerson,
	"location":       models.IntentLocation,
	"incident":       models.IntentIncident,
	"area_committee": models.IntentAreaCommittee,
	"weapon":         models.IntentWeapon,
	"date":           models.IntentDate,
}

// LoadKeywordConfig loads the classification tables. An empty path loads
// the embedded defaults; otherwise the file at path replaces them entirely.
func LoadKeywordConfig(path string) (*KeywordConfig, error) {
	data := defaultKeywordsYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrTypeInternal,
				errors.ErrCodeKeywordTableError, "Failed to read keywords file")
		}
		data = fileData
	}

	var cfg KeywordConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.ErrTypeInternal,
			errors.ErrCodeKeywordTableError, "Failed to parse keywords file")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks category names, keyword presence, and pattern syntax so
// a broken table fails at startup rather than mid-query.
func (c *KeywordConfig) validate() error {
	if len(c.Categories) == 0 {
		return errors.NewInternalError(errors.ErrCodeKeywordTableError,
			"Keyword config defines no categories", nil)
	}

	seen := make(map[string]bool)
	for _, rule := range c.Categories {
		if _, ok := knownCategories[rule.Name]; !ok {
			return errors.NewInternalError(errors.ErrCodeKeywordTableError,
				fmt.Sprintf("Unknown category %q in keyword config", rule.Name), nil)
		}
		if seen[rule.Name] {
			return errors.NewInternalError(errors.ErrCodeKeywordTableError,
				fmt.Sprintf("Duplicate category %q in keyword config", rule.Name), nil)
		}
		seen[rule.Name] = true

		if len(rule.Keywords) == 0 {
			return errors.NewInternalError(errors.ErrCodeKeywordTableError,
				fmt.Sprintf("Category %q has no keywords", rule.Name), nil)
		}
		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return errors.NewInternalError(errors.ErrCodeKeywordTableError,
					fmt.Sprintf("Category %q has an empty keyword", rule.Name), nil)
			}
		}
		for _, pattern := range rule.Patterns {
			if _, err := regexp.Compile(pattern); err != nil {
				return errors.WrapError(err, errors.ErrTypeInternal,
					errors.ErrCodeKeywordTableError,
					fmt.Sprintf("Category %q has an invalid pattern", rule.Name))
			}
		}
	}

	return nil
}

// SentinelSet returns the lower-cased sentinel values as a lookup set.
func (c *KeywordConfig) SentinelSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Sentinels))
	for _, s := range c.Sentinels {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}
