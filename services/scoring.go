package services

import (
	"ir-query-processor/models"
	"strings"
	"time"
)

const (
	recentUploadWindow   = 30 * 24 * time.Hour
	moderateUploadWindow = 90 * 24 * time.Hour
)

// ScoreWeights holds the additive bonus per matched field. Each bonus is
// applied at most once per field regardless of how many entities hit it.
type ScoreWeights struct {
	NameExact         float64
	NameSubstring     float64
	AliasExact        float64
	AliasSubstring    float64
	LocationRegion    float64
	LocationVillage   float64
	IncidentActivity  float64
	IncidentEncounter float64
	WeaponAsset       float64
	RecentUpload      float64
	ModerateUpload    float64
}

// ScoreProfile parameterizes the scorer. Ranking candidates and computing
// citation confidence are the same operation with different bases, so both
// run through one function instead of two near-duplicate ones.
type ScoreProfile struct {
	Base    float64
	Weights ScoreWeights
}

func defaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		NameExact:         1.0,
		NameSubstring:     0.6,
		AliasExact:        0.8,
		AliasSubstring:    0.4,
		LocationRegion:    0.5,
		LocationVillage:   0.4,
		IncidentActivity:  0.5,
		IncidentEncounter: 0.5,
		WeaponAsset:       0.2,
		RecentUpload:      0.1,
		ModerateUpload:    0.05,
	}
}

// RetrievalProfile ranks candidates inside the query pipeline. The low base
// keeps unmatched noise near the bottom of the ranking.
func RetrievalProfile() ScoreProfile {
	return ScoreProfile{Base: 0.1, Weights: defaultScoreWeights()}
}

// CitationProfile computes the per-source confidence shown with citations.
// The higher base reflects that a cited report already survived narrowing.
func CitationProfile() ScoreProfile {
	return ScoreProfile{Base: 0.5, Weights: defaultScoreWeights()}
}

// RelevanceScorer rates how strongly one report matches an intent.
type RelevanceScorer struct{}

func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{}
}

// Score sums the profile's base with one bonus per matched field and clamps
// the result to [0, 1]. Where a field could earn either an exact or a
// substring bonus, only the larger applies. now anchors the recency bonus so
// scoring stays deterministic under test.
func (s *RelevanceScorer) Score(report models.Report, intent models.QueryIntent, profile ScoreProfile, now time.Time) float64 {
	score := profile.Base
	weights := profile.Weights

	if md := report.Metadata; md != nil {
		persons := intent.EntityList(models.IntentPerson)
		score += bestMatchBonus(md.Name, persons, weights.NameExact, weights.NameSubstring)
		score += bestAliasBonus(md.Aliases, persons, weights.AliasExact, weights.AliasSubstring)

		locations := intent.EntityList(models.IntentLocation)
		if anyEntityIn(md.AreaRegion, locations) {
			score += weights.LocationRegion
		}
		if anyEntityInList(md.VillagesCovered, locations) {
			score += weights.LocationVillage
		}

		incidents := intent.EntityList(models.IntentIncident)
		if anyActivityMatches(md.CriminalActivities, incidents) {
			score += weights.IncidentActivity
		}
		if anyEncounterMatches(md.PoliceEncounters, incidents) {
			score += weights.IncidentEncounter
		}

		weapons := intent.EntityList(models.IntentWeapon)
		if anyEntityInList(md.WeaponsAssets, weapons) {
			score += weights.WeaponAsset
		}
	}

	if !report.UploadedAt.IsZero() {
		age := now.Sub(report.UploadedAt)
		switch {
		case age < recentUploadWindow:
			score += weights.RecentUpload
		case age < moderateUploadWindow:
			score += weights.ModerateUpload
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// bestMatchBonus returns the single highest bonus any entity earns against
// value: exact equality outranks containment, and only one bonus survives.
func bestMatchBonus(value string, entities []string, exactBonus, substringBonus float64) float64 {
	if value == "" {
		return 0
	}
	var best float64
	for _, entity := range entities {
		switch {
		case strings.EqualFold(value, entity):
			if exactBonus > best {
				best = exactBonus
			}
		case containsEitherFold(value, entity):
			if substringBonus > best {
				best = substringBonus
			}
		}
	}
	return best
}

func bestAliasBonus(aliases []string, entities []string, exactBonus, substringBonus float64) float64 {
	var best float64
	for _, alias := range aliases {
		if bonus := bestMatchBonus(alias, entities, exactBonus, substringBonus); bonus > best {
			best = bonus
		}
	}
	return best
}

func anyEntityIn(value string, entities []string) bool {
	for _, entity := range entities {
		if containsFold(value, entity) {
			return true
		}
	}
	return false
}

func anyEntityInList(values []string, entities []string) bool {
	for _, value := range values {
		if anyEntityIn(value, entities) {
			return true
		}
	}
	return false
}

func anyActivityMatches(activities []models.CriminalActivity, entities []string) bool {
	for _, activity := range activities {
		if anyEntityIn(activity.Incident, entities) {
			return true
		}
	}
	return false
}

func anyEncounterMatches(encounters []models.PoliceEncounter, entities []string) bool {
	for _, encounter := range encounters {
		if anyEntityIn(encounter.EncounterDetails, entities) {
			return true
		}
	}
	return false
}
