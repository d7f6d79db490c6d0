package services

import (
	"ir-query-processor/models"
	"sort"
	"strings"
)

const (
	// generalSuggestionLimit caps free-text suggestion lists.
	generalSuggestionLimit = 10
	// fieldSuggestionLimit caps single-field filter suggestion lists.
	fieldSuggestionLimit = 8
	// suggestionLabelRunes caps the display label; the full value is kept
	// for re-querying.
	suggestionLabelRunes = 60
)

// SuggestionEngine turns matching report surfaces into ranked autocomplete
// suggestions. It holds no per-query state: every call recomputes from the
// corpus snapshot it is given, so invoking it on every keystroke is safe.
type SuggestionEngine struct {
	extractor *SurfaceExtractor
}

func NewSuggestionEngine(extractor *SurfaceExtractor) *SuggestionEngine {
	return &SuggestionEngine{extractor: extractor}
}

type suggestionKey struct {
	fieldType models.FieldType
	value     string
}

type suggestionGroup struct {
	fieldType models.FieldType
	value     string
	reports   map[string]struct{}
}

// Suggest returns up to 10 suggestions whose surface text contains query,
// case-insensitively. The same value under two field types stays two
// suggestions; the text may be a person in one report and a place in another.
func (e *SuggestionEngine) Suggest(query string, corpus []models.Report) []models.Suggestion {
	return e.collect(query, corpus, "", generalSuggestionLimit)
}

// SuggestField returns up to 8 suggestions drawn from a single field type,
// used for dropdown-style administrative filters.
func (e *SuggestionEngine) SuggestField(query string, fieldType models.FieldType, corpus []models.Report) []models.Suggestion {
	return e.collect(query, corpus, fieldType, fieldSuggestionLimit)
}

func (e *SuggestionEngine) collect(query string, corpus []models.Report, only models.FieldType, limit int) []models.Suggestion {
	if len(query) < 1 {
		return nil
	}
	lowered := strings.ToLower(query)

	groups := make(map[suggestionKey]*suggestionGroup)
	for _, report := range corpus {
		for _, entry := range e.extractor.Extract(report) {
			if only != "" && entry.FieldType != only {
				continue
			}
			if !strings.Contains(strings.ToLower(entry.Text), lowered) {
				continue
			}
			key := suggestionKey{fieldType: entry.FieldType, value: entry.Text}
			group, ok := groups[key]
			if !ok {
				group = &suggestionGroup{
					fieldType: entry.FieldType,
					value:     entry.Text,
					reports:   make(map[string]struct{}),
				}
				groups[key] = group
			}
			// Count distinct reports, not raw occurrences: the same
			// value repeated inside one report is still one hit.
			group.reports[entry.ReportID] = struct{}{}
		}
	}

	ordered := make([]*suggestionGroup, 0, len(groups))
	for _, group := range groups {
		ordered = append(ordered, group)
	}
	sort.Slice(ordered, func(i, j int) bool {
		iExact := strings.EqualFold(ordered[i].value, query)
		jExact := strings.EqualFold(ordered[j].value, query)
		if iExact != jExact {
			return iExact
		}
		if len(ordered[i].reports) != len(ordered[j].reports) {
			return len(ordered[i].reports) > len(ordered[j].reports)
		}
		if ordered[i].value != ordered[j].value {
			return ordered[i].value < ordered[j].value
		}
		return ordered[i].fieldType < ordered[j].fieldType
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	suggestions := make([]models.Suggestion, 0, len(ordered))
	for _, group := range ordered {
		suggestions = append(suggestions, models.Suggestion{
			FieldType: group.fieldType,
			Value:     group.value,
			Label:     suggestionLabel(group.value),
			Count:     len(group.reports),
		})
	}
	return suggestions
}

func suggestionLabel(value string) string {
	runes := []rune(value)
	if len(runes) <= suggestionLabelRunes {
		return value
	}
	return string(runes[:suggestionLabelRunes-3]) + "..."
}
