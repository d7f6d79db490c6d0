package services

import (
	"ir-query-processor/models"
	"strings"
)

// SurfaceExtractor flattens one report's nested optional fields into
// (fieldType, text) surfaces for matching. Placeholder values from the
// configured sentinel set, empty strings, and whitespace-only strings are
// dropped as if absent. Extraction is a pure function of the report and is
// safe to run concurrently for different reports.
type SurfaceExtractor struct {
	sentinels map[string]struct{}
}

// NewSurfaceExtractor creates a surface extractor with the given sentinel
// set (lower-cased values, as produced by KeywordConfig.SentinelSet).
func NewSurfaceExtractor(sentinels map[string]struct{}) *SurfaceExtractor {
	if sentinels == nil {
		sentinels = make(map[string]struct{})
	}
	return &SurfaceExtractor{sentinels: sentinels}
}

// Extract returns every populated, non-sentinel text surface of the report.
// For list-of-record fields every textual member of every sub-record is
// emitted as its own surface.
func (e *SurfaceExtractor) Extract(report models.Report) []models.SurfaceEntry {
	var entries []models.SurfaceEntry

	add := func(fieldType models.FieldType, text string) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return
		}
		if _, isSentinel := e.sentinels[strings.ToLower(trimmed)]; isSentinel {
			return
		}
		entries = append(entries, models.SurfaceEntry{
			FieldType: fieldType,
			Text:      trimmed,
			ReportID:  report.ID,
		})
	}

	// Administrative fields live directly on the report row.
	add(models.FieldPoliceStation, report.PoliceStation)
	add(models.FieldDivision, report.Division)
	add(models.FieldAreaCommitteeFT, report.AreaCommittee)
	add(models.FieldRank, report.Rank)

	if md := report.Metadata; md != nil {
		add(models.FieldName, md.Name)
		for _, alias := range md.Aliases {
			add(models.FieldAlias, alias)
		}
		add(models.FieldGroupBattalion, md.GroupBattalion)
		add(models.FieldAreaRegion, md.AreaRegion)
		add(models.FieldSupplyTeam, md.SupplyTeam)
		add(models.FieldIEDBomb, md.IEDBomb)
		add(models.FieldMeeting, md.Meeting)
		add(models.FieldPlatoon, md.Platoon)
		add(models.FieldInvolvement, md.Involvement)
		add(models.FieldHistory, md.History)
		add(models.FieldBounty, md.Bounty)
		add(models.FieldOrgPeriod, md.OrganizationalPeriod)

		for _, village := range md.VillagesCovered {
			add(models.FieldVillage, village)
		}
		for _, activity := range md.CriminalActivities {
			add(models.FieldActivity, activity.Incident)
			add(models.FieldActivity, activity.Year)
			add(models.FieldActivityPlace, activity.Location)
		}
		for _, change := range md.RoleChanges {
			add(models.FieldRoleChange, change.Role)
			add(models.FieldRoleChange, change.Year)
		}
		for _, encounter := range md.PoliceEncounters {
			add(models.FieldEncounter, encounter.EncounterDetails)
			add(models.FieldEncounter, encounter.Year)
		}
		for _, weapon := range md.WeaponsAssets {
			add(models.FieldWeaponAsset, weapon)
		}
		for _, point := range md.ImportantPoints {
			add(models.FieldImportantPoint, point)
		}
		for _, route := range md.MovementRoutes {
			add(models.FieldMovementRoute, route.RouteName)
			add(models.FieldMovementRoute, route.Description)
			add(models.FieldMovementRoute, route.Purpose)
			add(models.FieldMovementRoute, route.Frequency)
			for _, segment := range route.Segments {
				add(models.FieldMovementRoute, segment.From)
				add(models.FieldMovementRoute, segment.To)
				add(models.FieldMovementRoute, segment.Description)
			}
		}
		for _, associate := range md.MaoistsMet {
			add(models.FieldAssociate, associate.Name)
		}
	}

	// Question texts are the same standard set on every report; only the
	// extracted answers carry report-specific signal.
	if qa := report.QuestionsAnalysis; qa != nil {
		for _, result := range qa.Results {
			if result.Found {
				add(models.FieldQuestionAnswer, result.Answer)
			}
		}
	}

	return entries
}
