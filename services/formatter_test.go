package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ir-query-processor/models"
)

func newTestFormatter() *ResponseFormatter {
	return NewResponseFormatter(testSentinels())
}

func TestResponseFormatter_Person(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{
			ID:               "r1",
			OriginalFilename: "report_hidma.json",
			Metadata: &models.ReportMetadata{
				Name:       "Hidma",
				AreaRegion: "South Bastar",
				CriminalActivities: []models.CriminalActivity{
					{Incident: "Ambush on patrol"},
					{Incident: "Road blast"},
					{Incident: "Camp raid"},
				},
				PoliceEncounters: []models.PoliceEncounter{{Year: "2020"}, {Year: "2022"}},
			},
		},
		{ID: "r2", OriginalFilename: "report_deva.json"},
	}

	got := formatter.Format(reports, intentWith(models.IntentPerson, "hidma"))

	assert.Contains(t, got, "I found 2 reports related to your query.")
	assert.Contains(t, got, "1. **report_hidma.json**")
	assert.Contains(t, got, "- Person: Hidma")
	assert.Contains(t, got, "- Area: South Bastar")
	// Only the leading two activities are listed.
	assert.Contains(t, got, "- Activities: Ambush on patrol; Road blast")
	assert.NotContains(t, got, "Camp raid")
	assert.Contains(t, got, "- Police encounters: 2")
	assert.Contains(t, got, "2. **report_deva.json**")
}

func TestResponseFormatter_PersonOverflow(t *testing.T) {
	formatter := newTestFormatter()
	var reports []models.Report
	for i := 0; i < 5; i++ {
		reports = append(reports, models.Report{
			ID:               fmt.Sprintf("r%d", i),
			OriginalFilename: fmt.Sprintf("report_%d.json", i),
		})
	}

	got := formatter.Format(reports, intentWith(models.IntentPerson, "hidma"))

	assert.Contains(t, got, "3. **report_2.json**")
	assert.NotContains(t, got, "report_3.json")
	assert.Contains(t, got, "... and 2 more reports.")
}

func TestResponseFormatter_Location(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", Metadata: &models.ReportMetadata{
			Name:               "Hidma",
			CriminalActivities: []models.CriminalActivity{{Incident: "Ambush on patrol"}},
		}},
		{ID: "r2", Metadata: &models.ReportMetadata{Name: "Hidma"}},
		{ID: "r3", Metadata: &models.ReportMetadata{Name: "Deva"}},
	}

	got := formatter.Format(reports, intentWith(models.IntentLocation, "bastar"))

	assert.Contains(t, got, "I found 3 reports covering this area.")
	// Subjects sort by report count descending, then name.
	assert.Contains(t, got, "1. Hidma (2 reports)")
	assert.Contains(t, got, "2. Deva (1 report)")
	assert.Contains(t, got, "Common incidents in this area:")
	assert.Contains(t, got, "- Ambush on patrol (1 report)")
}

func TestResponseFormatter_LocationSubjectOverflow(t *testing.T) {
	formatter := newTestFormatter()
	var reports []models.Report
	for i := 0; i < 7; i++ {
		reports = append(reports, models.Report{
			ID:       fmt.Sprintf("r%d", i),
			Metadata: &models.ReportMetadata{Name: fmt.Sprintf("Subject %d", i)},
		})
	}

	got := formatter.Format(reports, intentWith(models.IntentLocation, "bastar"))

	assert.Contains(t, got, "5. Subject 4 (1 report)")
	assert.Contains(t, got, "... and 2 more subjects.")
	assert.NotContains(t, got, "Common incidents")
}

func TestResponseFormatter_Incident(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", Metadata: &models.ReportMetadata{
			Name:               "Hidma",
			CriminalActivities: []models.CriminalActivity{{Incident: "Ambush on patrol"}},
		}},
		{ID: "r2", Metadata: &models.ReportMetadata{
			Name:               "Deva",
			CriminalActivities: []models.CriminalActivity{{Incident: "Ambush on patrol"}},
		}},
		{ID: "r3", Metadata: &models.ReportMetadata{
			Name:             "Rakesh",
			PoliceEncounters: []models.PoliceEncounter{{EncounterDetails: "Exchange of fire"}},
		}},
	}

	got := formatter.Format(reports, intentWith(models.IntentIncident, "ambush"))

	assert.Contains(t, got, "I found 3 reports describing matching incidents.")
	assert.Contains(t, got, "1. **Ambush on patrol** - 2 reports, 2 subjects")
	assert.Contains(t, got, "2. **Exchange of fire** - 1 report, 1 subject")
}

func TestResponseFormatter_IncidentWithoutDetails(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", Metadata: &models.ReportMetadata{Name: "Hidma"}},
	}

	got := formatter.Format(reports, intentWith(models.IntentIncident, "ambush"))
	assert.Equal(t, "I found 1 report related to your query, but none of them describe a specific incident.", got)
}

func TestResponseFormatter_AreaCommittee(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", AreaCommittee: "Darbha Area Committee", Metadata: &models.ReportMetadata{Name: "Hidma"}},
		{ID: "r2", AreaCommittee: "Darbha Area Committee", Metadata: &models.ReportMetadata{Name: "Deva"}},
		{ID: "r3", AreaCommittee: ""},
	}

	got := formatter.Format(reports, intentWith(models.IntentAreaCommittee, "darbha"))

	assert.Contains(t, got, "I found 3 reports with area committee activity.")
	assert.Contains(t, got, "1. **Darbha Area Committee** - 2 reports, 2 subjects")
}

func TestResponseFormatter_AreaCommitteeNoneRecorded(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{{ID: "r1"}}

	got := formatter.Format(reports, intentWith(models.IntentAreaCommittee, "darbha"))
	assert.Equal(t, "I found 1 report related to your query, but none of them record an area committee.", got)
}

func TestResponseFormatter_Weapon(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", Metadata: &models.ReportMetadata{
			Name:          "Hidma",
			WeaponsAssets: []string{"AK-47", "unknown", "ak-47"},
		}},
		{ID: "r2", Metadata: &models.ReportMetadata{
			Name:          "Deva",
			WeaponsAssets: []string{"SLR rifle"},
		}},
		{ID: "r3"},
	}

	got := formatter.Format(reports, intentWith(models.IntentWeapon, "rifle"))

	assert.Contains(t, got, "I found 3 reports mentioning weapons or assets.")
	// Case-insensitive dedupe keeps the first spelling; sentinels are omitted.
	assert.Contains(t, got, "- AK-47\n")
	assert.NotContains(t, got, "- ak-47")
	assert.NotContains(t, got, "unknown")
	assert.Contains(t, got, "- SLR rifle")
	assert.Contains(t, got, "Subjects linked to them: Hidma, Deva")
}

func TestResponseFormatter_WeaponNoneRecorded(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", Metadata: &models.ReportMetadata{WeaponsAssets: []string{"unknown"}}},
	}

	got := formatter.Format(reports, intentWith(models.IntentWeapon, "rifle"))
	assert.Equal(t, "I found 1 report related to your query, but none of them record specific weapons or assets.", got)
}

func TestResponseFormatter_Date(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", UploadedAt: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "r2", UploadedAt: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "r3", UploadedAt: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "r4"},
	}

	got := formatter.Format(reports, intentWith(models.IntentDate, "2023"))

	assert.Contains(t, got, "I found 4 reports for the requested period.")
	assert.Contains(t, got, "- 2023: 2 reports\n- 2021: 1 report")
}

func TestResponseFormatter_DateNoUploadTimes(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{{ID: "r1"}}

	got := formatter.Format(reports, intentWith(models.IntentDate, "2023"))
	assert.Equal(t, "I found 1 report related to your query, but none of them carry an upload date.", got)
}

func TestResponseFormatter_General(t *testing.T) {
	formatter := newTestFormatter()
	reports := []models.Report{
		{ID: "r1", OriginalFilename: "a.json", Metadata: &models.ReportMetadata{Name: "Hidma", AreaRegion: "South Bastar"}},
		{ID: "r2", OriginalFilename: "b.json"},
		{ID: "r3", OriginalFilename: "c.json"},
		{ID: "r4", OriginalFilename: "d.json"},
	}

	intent := models.QueryIntent{Category: models.IntentGeneral, OriginalQuery: "everything"}
	got := formatter.Format(reports, intent)

	assert.Contains(t, got, "I found 4 reports related to your query.")
	assert.Contains(t, got, "1. **a.json**")
	assert.Contains(t, got, "- Person: Hidma")
	assert.Contains(t, got, "3. **c.json**")
	assert.NotContains(t, got, "d.json")
	assert.Contains(t, got, "... and 1 more reports.")
}

func TestResponseFormatter_NotFound(t *testing.T) {
	formatter := newTestFormatter()

	tests := []struct {
		name   string
		intent models.QueryIntent
		want   string
	}{
		{
			name:   "person with a name",
			intent: intentWith(models.IntentPerson, "Hidma"),
			want: "I couldn't find anyone named 'Hidma' in our intelligence reports database. " +
				"The name might be spelled differently, or this person might not be in our records. " +
				"Try checking the spelling or searching for a related name.",
		},
		{
			name:   "person without a name",
			intent: models.QueryIntent{Category: models.IntentPerson},
			want:   "Please specify the name of the person you're looking for.",
		},
		{
			name:   "location",
			intent: intentWith(models.IntentLocation, "Bastar"),
			want:   "I couldn't find any reports covering 'Bastar'. Try a nearby village, area, or district name.",
		},
		{
			name: "location falls back to the raw query",
			intent: models.QueryIntent{
				Category:      models.IntentLocation,
				OriginalQuery: "where was he seen",
			},
			want: "I couldn't find any reports covering 'where was he seen'. Try a nearby village, area, or district name.",
		},
		{
			name:   "incident",
			intent: intentWith(models.IntentIncident, "ambush"),
			want:   "I couldn't find any reports describing incidents matching 'ambush'. Try keywords such as ambush, encounter, or blast.",
		},
		{
			name:   "area committee",
			intent: intentWith(models.IntentAreaCommittee, "Darbha"),
			want:   "I couldn't find any reports for an area committee matching 'Darbha'. Try the committee's full name.",
		},
		{
			name:   "weapon",
			intent: intentWith(models.IntentWeapon, "mortar"),
			want:   "I couldn't find any reports mentioning weapons matching 'mortar'. Try a broader term such as rifle or IED.",
		},
		{
			name:   "date",
			intent: models.QueryIntent{Category: models.IntentDate},
			want:   "I couldn't find any reports for that time period. Try a specific year, such as 2021.",
		},
		{
			name: "general",
			intent: models.QueryIntent{
				Category:      models.IntentGeneral,
				OriginalQuery: "anything at all",
			},
			want: "I couldn't find any reports matching 'anything at all'. " +
				"Try asking about specific people, locations, or incidents that might be in our intelligence database.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.Format(nil, tt.intent)
			assert.Equal(t, tt.want, got)
		})
	}
}
