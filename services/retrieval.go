package services

import (
	"ir-query-processor/models"
	"strings"
)

// CandidateRetriever narrows a corpus snapshot to the reports an intent's
// entities plausibly concern. Predicates run in a fixed order and each one
// intersects with the current candidate set: categories combine
// conjunctively, while the entity strings within one category combine
// disjunctively (any one of them may match).
type CandidateRetriever struct{}

func NewCandidateRetriever() *CandidateRetriever {
	return &CandidateRetriever{}
}

// Retrieve applies the person, location, incident, area-committee, and
// weapon predicates in that order, skipping any category without entities.
// An intent with no entities at all returns the corpus unnarrowed; scoring
// and formatting decide what to do with it.
func (r *CandidateRetriever) Retrieve(intent models.QueryIntent, corpus []models.Report) []models.Report {
	candidates := corpus

	if persons := intent.EntityList(models.IntentPerson); len(persons) > 0 {
		candidates = filterReports(candidates, func(report models.Report) bool {
			return matchesPerson(report, persons)
		})
	}
	if locations := intent.EntityList(models.IntentLocation); len(locations) > 0 {
		candidates = filterReports(candidates, func(report models.Report) bool {
			return matchesLocation(report, locations)
		})
	}
	if incidents := intent.EntityList(models.IntentIncident); len(incidents) > 0 {
		candidates = filterReports(candidates, func(report models.Report) bool {
			return matchesIncident(report, incidents)
		})
	}
	if committees := intent.EntityList(models.IntentAreaCommittee); len(committees) > 0 {
		candidates = filterReports(candidates, func(report models.Report) bool {
			return matchesAreaCommittee(report, committees)
		})
	}
	if weapons := intent.EntityList(models.IntentWeapon); len(weapons) > 0 {
		candidates = filterReports(candidates, func(report models.Report) bool {
			return matchesWeapon(report, weapons)
		})
	}

	return candidates
}

func filterReports(reports []models.Report, keep func(models.Report) bool) []models.Report {
	filtered := make([]models.Report, 0, len(reports))
	for _, report := range reports {
		if keep(report) {
			filtered = append(filtered, report)
		}
	}
	return filtered
}

// matchesPerson checks the subject name and aliases. Name matching is
// bidirectional so "Rakesh Kumar Singh" still finds a report whose subject
// is recorded as "Rakesh Kumar".
func matchesPerson(report models.Report, entities []string) bool {
	md := report.Metadata
	if md == nil {
		return false
	}
	for _, entity := range entities {
		if containsEitherFold(md.Name, entity) {
			return true
		}
		for _, alias := range md.Aliases {
			if containsEitherFold(alias, entity) {
				return true
			}
		}
	}
	return false
}

func matchesLocation(report models.Report, entities []string) bool {
	md := report.Metadata
	for _, entity := range entities {
		if containsFold(report.AreaCommittee, entity) {
			return true
		}
		if md == nil {
			continue
		}
		if containsFold(md.AreaRegion, entity) {
			return true
		}
		for _, village := range md.VillagesCovered {
			if containsFold(village, entity) {
				return true
			}
		}
	}
	return false
}

func matchesIncident(report models.Report, entities []string) bool {
	md := report.Metadata
	if md == nil {
		return false
	}
	for _, entity := range entities {
		for _, activity := range md.CriminalActivities {
			if containsFold(activity.Incident, entity) {
				return true
			}
		}
		for _, encounter := range md.PoliceEncounters {
			if containsFold(encounter.EncounterDetails, entity) {
				return true
			}
		}
	}
	return false
}

func matchesAreaCommittee(report models.Report, entities []string) bool {
	for _, entity := range entities {
		if containsFold(report.AreaCommittee, entity) {
			return true
		}
	}
	return false
}

func matchesWeapon(report models.Report, entities []string) bool {
	md := report.Metadata
	if md == nil {
		return false
	}
	for _, entity := range entities {
		for _, weapon := range md.WeaponsAssets {
			if containsFold(weapon, entity) {
				return true
			}
		}
	}
	return false
}

// containsFold reports whether needle occurs in haystack, ignoring case.
// Empty operands never match.
func containsFold(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsEitherFold(a, b string) bool {
	return containsFold(a, b) || containsFold(b, a)
}
