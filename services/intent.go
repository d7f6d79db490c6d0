package services

import (
	"ir-query-processor/errors"
	"ir-query-processor/models"
	"regexp"
	"strings"
)

// Intent confidence levels. A single detected category is a strong signal;
// several detected categories mean the query spans topics; none means we
// fall back to broad full-text matching.
const (
	confidenceGeneral  = 0.3
	confidenceSingle   = 0.8
	confidenceMultiple = 0.7
)

// IntentParser classifies a query into one category and extracts the entity
// strings its patterns capture. The keyword and pattern tables are loaded
// from configuration so new languages or categories never require parser
// changes. Parse is a pure function: the same query against the same tables
// always yields the same intent.
type IntentParser struct {
	categories []categoryMatcher
}

type categoryMatcher struct {
	category models.IntentCategory
	keywords []string
	patterns []*regexp.Regexp
}

// NewIntentParser compiles the category tables from cfg. Pattern compilation
// errors surface here so a bad table fails at startup, not mid-query.
func NewIntentParser(cfg *KeywordConfig) (*IntentParser, error) {
	if cfg == nil {
		return nil, errors.NewInternalError(errors.ErrCodeKeywordTableError, "keyword configuration is nil", nil)
	}

	matchers := make([]categoryMatcher, 0, len(cfg.Categories))
	for _, rule := range cfg.Categories {
		category, ok := knownCategories[rule.Name]
		if !ok {
			return nil, errors.NewInternalError(errors.ErrCodeKeywordTableError,
				"unknown intent category: "+rule.Name, nil)
		}

		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			keywords = append(keywords, strings.ToLower(keyword))
		}

		patterns := make([]*regexp.Regexp, 0, len(rule.Patterns))
		for _, pattern := range rule.Patterns {
			compiled, err := regexp.Compile(pattern)
			if err != nil {
				return nil, errors.WrapError(err, errors.ErrTypeInternal,
					errors.ErrCodeKeywordTableError, "invalid extraction pattern for category "+rule.Name)
			}
			patterns = append(patterns, compiled)
		}

		matchers = append(matchers, categoryMatcher{
			category: category,
			keywords: keywords,
			patterns: patterns,
		})
	}

	return &IntentParser{categories: matchers}, nil
}

// Parse detects categories by keyword containment against the lower-cased
// query, then runs each detected category's extraction patterns against the
// original-case query. Zero detected categories yield a general intent,
// exactly one yields that category, several yield a multi-topic intent.
func (p *IntentParser) Parse(query string) models.QueryIntent {
	lowered := strings.ToLower(query)

	var detected []models.IntentCategory
	entities := make(map[models.IntentCategory][]string)

	for _, matcher := range p.categories {
		if !matcher.detectedIn(lowered) {
			continue
		}
		detected = append(detected, matcher.category)
		if extracted := matcher.extract(query); len(extracted) > 0 {
			entities[matcher.category] = extracted
		}
	}

	var category models.IntentCategory
	var confidence float64
	switch len(detected) {
	case 0:
		category = models.IntentGeneral
		confidence = confidenceGeneral
	case 1:
		category = detected[0]
		confidence = confidenceSingle
	default:
		category = models.IntentMultiple
		confidence = confidenceMultiple
	}

	filters := models.QueryFilters{}
	if persons := entities[models.IntentPerson]; len(persons) > 0 {
		filters.Name = persons[0]
	}
	if locations := entities[models.IntentLocation]; len(locations) > 0 {
		filters.Location = locations[0]
	}
	if len(entities) == 0 {
		// Nothing extracted: carry the raw query so retrieval still has
		// something to match against.
		filters.General = strings.TrimSpace(query)
	}

	return models.QueryIntent{
		Category:      category,
		Entities:      entities,
		Filters:       filters,
		Confidence:    confidence,
		OriginalQuery: query,
	}
}

func (m categoryMatcher) detectedIn(loweredQuery string) bool {
	for _, keyword := range m.keywords {
		if strings.Contains(loweredQuery, keyword) {
			return true
		}
	}
	return false
}

// extract collects every capture from every pattern, preserving pattern
// order and deduplicating case-insensitively on first sighting.
func (m categoryMatcher) extract(query string) []string {
	var extracted []string
	seen := make(map[string]struct{})
	for _, pattern := range m.patterns {
		for _, match := range pattern.FindAllStringSubmatch(query, -1) {
			if len(match) < 2 {
				continue
			}
			entity := strings.TrimSpace(match[1])
			if entity == "" {
				continue
			}
			key := strings.ToLower(entity)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			extracted = append(extracted, entity)
		}
	}
	return extracted
}
