package models

import (
	"errors"
	"time"
)

// Report represents one extracted incident report as stored by the document
// store. The core pipeline only ever reads snapshots of these records; all
// mutation happens upstream in the extraction service.
type Report struct {
	ID                string             `json:"id" db:"id"`
	OriginalFilename  string             `json:"original_filename" db:"original_filename"`
	PoliceStation     string             `json:"police_station" db:"police_station"`
	Division          string             `json:"division" db:"division"`
	AreaCommittee     string             `json:"area_committee" db:"area_committee"`
	Rank              string             `json:"rank" db:"rank"`
	Metadata          *ReportMetadata    `json:"metadata" db:"metadata"`
	QuestionsAnalysis *QuestionsAnalysis `json:"questions_analysis" db:"questions_analysis"`
	UploadedAt        time.Time          `json:"uploaded_at" db:"uploaded_at"`
}

// ReportMetadata holds the structured fields the extraction pipeline pulls
// out of a report document. Every field is optional; absent values are
// empty strings or nil slices, and placeholder values ("unknown", "अज्ञात")
// may appear anywhere and are filtered at extraction time by the surface
// extractor, not here.
type ReportMetadata struct {
	Name                 string             `json:"name"`
	Aliases              []string           `json:"aliases"`
	GroupBattalion       string             `json:"group_battalion"`
	AreaRegion           string             `json:"area_region"`
	SupplyTeam           string             `json:"supply_team"`
	IEDBomb              string             `json:"ied_bomb"`
	Meeting              string             `json:"meeting"`
	Platoon              string             `json:"platoon"`
	Involvement          string             `json:"involvement"`
	History              string             `json:"history"`
	Bounty               string             `json:"bounty"`
	VillagesCovered      []string           `json:"villages_covered"`
	CriminalActivities   []CriminalActivity `json:"criminal_activities"`
	RoleChanges          []RoleChange       `json:"role_changes"`
	PoliceEncounters     []PoliceEncounter  `json:"police_encounters"`
	WeaponsAssets        []string           `json:"weapons_assets"`
	OrganizationalPeriod string             `json:"organizational_period"`
	ImportantPoints      []string           `json:"important_points"`
	MovementRoutes       []MovementRoute    `json:"movement_routes"`
	MaoistsMet           []AssociatedPerson `json:"maoists_met"`
}

// CriminalActivity is one incident attributed to the subject.
type CriminalActivity struct {
	SerialNo int    `json:"sr_no"`
	Incident string `json:"incident"`
	Year     string `json:"year"`
	Location string `json:"location"`
}

// RoleChange records one step in the subject's organizational hierarchy.
type RoleChange struct {
	Year string `json:"year"`
	Role string `json:"role"`
}

// PoliceEncounter is one encounter the subject participated in.
type PoliceEncounter struct {
	Year             string `json:"year"`
	EncounterDetails string `json:"encounter_details"`
}

// MovementRoute describes a route the subject is known to travel.
type MovementRoute struct {
	RouteName   string         `json:"route_name"`
	Description string         `json:"description"`
	Purpose     string         `json:"purpose"`
	Frequency   string         `json:"frequency"`
	Segments    []RouteSegment `json:"segments"`
}

// RouteSegment is one leg of a movement route.
type RouteSegment struct {
	Sequence    int    `json:"sequence"`
	From        string `json:"from"`
	To          string `json:"to"`
	Description string `json:"description"`
}

// AssociatedPerson is another subject referenced by this report.
type AssociatedPerson struct {
	Name string `json:"name"`
}

// QuestionsAnalysis holds the standard-question extraction results attached
// to a report by the upload pipeline.
type QuestionsAnalysis struct {
	Summary QuestionsSummary `json:"summary"`
	Results []QuestionResult `json:"results"`
}

// QuestionsSummary aggregates the per-question outcomes.
type QuestionsSummary struct {
	TotalQuestions int     `json:"total_questions"`
	QuestionsFound int     `json:"questions_found"`
	SuccessRate    float64 `json:"success_rate"`
}

// QuestionResult is one standard question with its extracted answer.
type QuestionResult struct {
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	Found          bool    `json:"found"`
	Confidence     float64 `json:"confidence"`
	QuestionNumber int     `json:"question_number"`
}

// ReportFilter is the coarse filter the document store applies before the
// core narrows the snapshot in memory.
type ReportFilter struct {
	SearchTerm    string `json:"search_term,omitempty"`
	AreaCommittee string `json:"area_committee,omitempty"`
	PoliceStation string `json:"police_station,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// Common errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrInvalidInput     = errors.New("invalid input")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
