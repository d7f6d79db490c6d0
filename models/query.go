package models

// FieldType tags a flattened text surface with the report field it came
// from. The same text under two different field types is two different
// surfaces; the tag is part of suggestion identity.
type FieldType string

const (
	FieldName            FieldType = "name"
	FieldAlias           FieldType = "alias"
	FieldGroupBattalion  FieldType = "group_battalion"
	FieldAreaRegion      FieldType = "area_region"
	FieldSupplyTeam      FieldType = "supply_team"
	FieldIEDBomb         FieldType = "ied_bomb"
	FieldMeeting         FieldType = "meeting"
	FieldPlatoon         FieldType = "platoon"
	FieldInvolvement     FieldType = "involvement"
	FieldHistory         FieldType = "history"
	FieldBounty          FieldType = "bounty"
	FieldVillage         FieldType = "village"
	FieldActivity        FieldType = "criminal_activity"
	FieldActivityPlace   FieldType = "activity_location"
	FieldRoleChange      FieldType = "role_change"
	FieldEncounter       FieldType = "police_encounter"
	FieldWeaponAsset     FieldType = "weapon_asset"
	FieldOrgPeriod       FieldType = "organizational_period"
	FieldImportantPoint  FieldType = "important_point"
	FieldMovementRoute   FieldType = "movement_route"
	FieldAssociate       FieldType = "associate"
	FieldQuestionAnswer  FieldType = "question_answer"
	FieldPoliceStation   FieldType = "police_station"
	FieldDivision        FieldType = "division"
	FieldAreaCommitteeFT FieldType = "area_committee"
	FieldRank            FieldType = "rank"
)

// SurfaceEntry is one flattened (fieldType, text) unit extracted from a
// report for matching. Surfaces are recomputed per query and never persisted.
type SurfaceEntry struct {
	FieldType FieldType `json:"field_type"`
	Text      string    `json:"text"`
	ReportID  string    `json:"report_id"`
}

// Suggestion is one autocomplete candidate. Value carries the full matched
// string used for re-querying; Label may be a truncated display form. Count
// is the number of distinct reports containing Value under FieldType.
type Suggestion struct {
	FieldType FieldType `json:"fieldType"`
	Value     string    `json:"value"`
	Label     string    `json:"label"`
	Count     int       `json:"count"`
}

// IntentCategory is the classification bucket a query is assigned to.
type IntentCategory string

const (
	IntentPerson        IntentCategory = "person"
	IntentLocation      IntentCategory = "location"
	IntentIncident      IntentCategory = "incident"
	IntentAreaCommittee IntentCategory = "area_committee"
	IntentWeapon        IntentCategory = "weapon"
	IntentDate          IntentCategory = "date"
	IntentMultiple      IntentCategory = "multiple"
	IntentGeneral       IntentCategory = "general"
)

// QueryFilters carries the opportunistic filters the parser derives from
// extracted entities. General holds the raw query when no entity was
// extracted, so downstream retrieval always has something to match.
type QueryFilters struct {
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	General  string `json:"general,omitempty"`
}

// QueryIntent is the parsed form of one query. It is built once per
// submission and immutable afterward; Entities lists preserve extraction
// order.
type QueryIntent struct {
	Category      IntentCategory              `json:"category"`
	Entities      map[IntentCategory][]string `json:"entities"`
	Filters       QueryFilters                `json:"filters"`
	Confidence    float64                     `json:"confidence"`
	OriginalQuery string                      `json:"originalQuery"`
}

// EntityList returns the extracted entities for one category, nil when none.
func (qi QueryIntent) EntityList(category IntentCategory) []string {
	if qi.Entities == nil {
		return nil
	}
	return qi.Entities[category]
}

// Source is one ranked citation attached to a chatbot response.
type Source struct {
	ReportID   string  `json:"reportId"`
	ReportName string  `json:"reportName"`
	Confidence float64 `json:"confidence"`
}

// ChatbotResponse is the full answer to one processed query.
type ChatbotResponse struct {
	Response string      `json:"response"`
	Sources  []Source    `json:"sources"`
	Intent   QueryIntent `json:"intent"`
}
