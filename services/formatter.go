package services

import (
	"fmt"
	"ir-query-processor/models"
	"sort"
	"strings"
)

const (
	personListLimit       = 3
	personActivityLimit   = 2
	locationSubjectLimit  = 5
	locationIncidentLimit = 3
	incidentGroupLimit    = 5
	committeeGroupLimit   = 5
	weaponListLimit       = 10
	weaponSubjectLimit    = 5
	generalListLimit      = 3
)

// ResponseFormatter renders ranked reports into the investigator-facing
// answer text. Dispatch is keyed by the intent category and every branch is
// terminal; an empty result set produces a category-appropriate "not found"
// message rather than an error.
type ResponseFormatter struct {
	sentinels map[string]struct{}
}

// NewResponseFormatter creates a formatter that treats the given lower-cased
// values as placeholders to omit from rendered lists.
func NewResponseFormatter(sentinels map[string]struct{}) *ResponseFormatter {
	if sentinels == nil {
		sentinels = make(map[string]struct{})
	}
	return &ResponseFormatter{sentinels: sentinels}
}

// Format renders the ranked reports for the intent's category. The input
// order is preserved inside each branch, so callers should pass reports
// ranked best-first.
func (f *ResponseFormatter) Format(reports []models.Report, intent models.QueryIntent) string {
	if len(reports) == 0 {
		return f.formatNotFound(intent)
	}
	switch intent.Category {
	case models.IntentPerson:
		return f.formatPerson(reports)
	case models.IntentLocation:
		return f.formatLocation(reports)
	case models.IntentIncident:
		return f.formatIncident(reports)
	case models.IntentAreaCommittee:
		return f.formatAreaCommittee(reports)
	case models.IntentWeapon:
		return f.formatWeapon(reports)
	case models.IntentDate:
		return f.formatDate(reports)
	default:
		return f.formatGeneral(reports)
	}
}

func (f *ResponseFormatter) formatPerson(reports []models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %s related to your query.\n\n", pluralize(len(reports), "report"))

	shown := len(reports)
	if shown > personListLimit {
		shown = personListLimit
	}
	for i, report := range reports[:shown] {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, report.OriginalFilename)
		md := report.Metadata
		if md == nil {
			b.WriteString("\n")
			continue
		}
		if md.Name != "" {
			fmt.Fprintf(&b, "   - Person: %s\n", md.Name)
		}
		if md.AreaRegion != "" {
			fmt.Fprintf(&b, "   - Area: %s\n", md.AreaRegion)
		}
		if activities := f.leadingIncidents(md.CriminalActivities, personActivityLimit); len(activities) > 0 {
			fmt.Fprintf(&b, "   - Activities: %s\n", strings.Join(activities, "; "))
		}
		if n := len(md.PoliceEncounters); n > 0 {
			fmt.Fprintf(&b, "   - Police encounters: %d\n", n)
		}
		b.WriteString("\n")
	}
	if remainder := len(reports) - shown; remainder > 0 {
		fmt.Fprintf(&b, "... and %d more reports.", remainder)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *ResponseFormatter) formatLocation(reports []models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %s covering this area.\n\n", pluralize(len(reports), "report"))

	subjects := groupBySubject(reports)
	b.WriteString("Subjects active here:\n")
	shown := len(subjects)
	if shown > locationSubjectLimit {
		shown = locationSubjectLimit
	}
	for i, subject := range subjects[:shown] {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, subject.key, pluralize(subject.reports, "report"))
	}
	if remainder := len(subjects) - shown; remainder > 0 {
		fmt.Fprintf(&b, "... and %d more subjects.\n", remainder)
	}

	if incidents := f.groupIncidents(reports); len(incidents) > 0 {
		b.WriteString("\nCommon incidents in this area:\n")
		if len(incidents) > locationIncidentLimit {
			incidents = incidents[:locationIncidentLimit]
		}
		for _, group := range incidents {
			fmt.Fprintf(&b, "- %s (%s)\n", group.key, pluralize(group.reports, "report"))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *ResponseFormatter) formatIncident(reports []models.Report) string {
	groups := f.groupIncidents(reports)
	if len(groups) == 0 {
		return fmt.Sprintf("I found %s related to your query, but none of them describe a specific incident.",
			pluralize(len(reports), "report"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %s describing matching incidents.\n\n", pluralize(len(reports), "report"))
	if len(groups) > incidentGroupLimit {
		groups = groups[:incidentGroupLimit]
	}
	for i, group := range groups {
		fmt.Fprintf(&b, "%d. **%s** - %s, %s\n", i+1, group.key,
			pluralize(group.reports, "report"), pluralize(group.subjects, "subject"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *ResponseFormatter) formatAreaCommittee(reports []models.Report) string {
	groups := groupByCommittee(reports)
	if len(groups) == 0 {
		return fmt.Sprintf("I found %s related to your query, but none of them record an area committee.",
			pluralize(len(reports), "report"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %s with area committee activity.\n\n", pluralize(len(reports), "report"))
	if len(groups) > committeeGroupLimit {
		groups = groups[:committeeGroupLimit]
	}
	for i, group := range groups {
		fmt.Fprintf(&b, "%d. **%s** - %s, %s\n", i+1, group.key,
			pluralize(group.reports, "report"), pluralize(group.subjects, "subject"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *ResponseFormatter) formatWeapon(reports []models.Report) string {
	var weapons []string
	seenWeapons := make(map[string]struct{})
	var subjects []string
	seenSubjects := make(map[string]struct{})

	for _, report := range reports {
		md := report.Metadata
		if md == nil {
			continue
		}
		holdsAny := false
		for _, weapon := range md.WeaponsAssets {
			trimmed := strings.TrimSpace(weapon)
			if trimmed == "" || f.isSentinel(trimmed) {
				continue
			}
			holdsAny = true
			key := strings.ToLower(trimmed)
			if _, dup := seenWeapons[key]; dup {
				continue
			}
			seenWeapons[key] = struct{}{}
			weapons = append(weapons, trimmed)
		}
		if holdsAny {
			name := subjectName(report)
			key := strings.ToLower(name)
			if _, dup := seenSubjects[key]; !dup {
				seenSubjects[key] = struct{}{}
				subjects = append(subjects, name)
			}
		}
	}

	if len(weapons) == 0 {
		return fmt.Sprintf("I found %s related to your query, but none of them record specific weapons or assets.",
			pluralize(len(reports), "report"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %s mentioning weapons or assets.\n\n", pluralize(len(reports), "report"))
	b.WriteString("Weapons and assets recorded:\n")
	shown := len(weapons)
	if shown > weaponListLimit {
		shown = weaponListLimit
	}
	for _, weapon := range weapons[:shown] {
		fmt.Fprintf(&b, "- %s\n", weapon)
	}
	if remainder := len(weapons) - shown; remainder > 0 {
		fmt.Fprintf(&b, "... and %d more entries.\n", remainder)
	}

	if len(subjects) > weaponSubjectLimit {
		subjects = subjects[:weaponSubjectLimit]
	}
	if len(subjects) > 0 {
		fmt.Fprintf(&b, "\nSubjects linked to them: %s", strings.Join(subjects, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *ResponseFormatter) formatDate(reports []models.Report) string {
	counts := make(map[int]int)
	for _, report := range reports {
		if report.UploadedAt.IsZero() {
			continue
		}
		counts[report.UploadedAt.Year()]++
	}
	if len(counts) == 0 {
		return fmt.Sprintf("I found %s related to your query, but none of them carry an upload date.",
			pluralize(len(reports), "report"))
	}

	years := make([]int, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	var b strings.Builder
	fmt.Fprintf(&b, "I found %s for the requested period.\n\n", pluralize(len(reports), "report"))
	b.WriteString("Reports by upload year:\n")
	for _, year := range years {
		fmt.Fprintf(&b, "- %d: %s\n", year, pluralize(counts[year], "report"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *ResponseFormatter) formatGeneral(reports []models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %s related to your query.\n\n", pluralize(len(reports), "report"))

	shown := len(reports)
	if shown > generalListLimit {
		shown = generalListLimit
	}
	for i, report := range reports[:shown] {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, report.OriginalFilename)
		if md := report.Metadata; md != nil {
			if md.Name != "" {
				fmt.Fprintf(&b, "   - Person: %s\n", md.Name)
			}
			if md.AreaRegion != "" {
				fmt.Fprintf(&b, "   - Area: %s\n", md.AreaRegion)
			}
		}
		b.WriteString("\n")
	}
	if remainder := len(reports) - shown; remainder > 0 {
		fmt.Fprintf(&b, "... and %d more reports.", remainder)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *ResponseFormatter) formatNotFound(intent models.QueryIntent) string {
	switch intent.Category {
	case models.IntentPerson:
		if persons := intent.EntityList(models.IntentPerson); len(persons) > 0 {
			return fmt.Sprintf("I couldn't find anyone named '%s' in our intelligence reports database. "+
				"The name might be spelled differently, or this person might not be in our records. "+
				"Try checking the spelling or searching for a related name.", persons[0])
		}
		return "Please specify the name of the person you're looking for."
	case models.IntentLocation:
		return fmt.Sprintf("I couldn't find any reports covering '%s'. Try a nearby village, area, or district name.",
			firstEntityOrQuery(intent, models.IntentLocation))
	case models.IntentIncident:
		return fmt.Sprintf("I couldn't find any reports describing incidents matching '%s'. "+
			"Try keywords such as ambush, encounter, or blast.",
			firstEntityOrQuery(intent, models.IntentIncident))
	case models.IntentAreaCommittee:
		return fmt.Sprintf("I couldn't find any reports for an area committee matching '%s'. "+
			"Try the committee's full name.",
			firstEntityOrQuery(intent, models.IntentAreaCommittee))
	case models.IntentWeapon:
		return fmt.Sprintf("I couldn't find any reports mentioning weapons matching '%s'. "+
			"Try a broader term such as rifle or IED.",
			firstEntityOrQuery(intent, models.IntentWeapon))
	case models.IntentDate:
		return "I couldn't find any reports for that time period. Try a specific year, such as 2021."
	default:
		return fmt.Sprintf("I couldn't find any reports matching '%s'. "+
			"Try asking about specific people, locations, or incidents that might be in our intelligence database.",
			intent.OriginalQuery)
	}
}

func (f *ResponseFormatter) isSentinel(value string) bool {
	_, ok := f.sentinels[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// leadingIncidents returns up to limit non-placeholder incident texts in
// the report's own order.
func (f *ResponseFormatter) leadingIncidents(activities []models.CriminalActivity, limit int) []string {
	var incidents []string
	for _, activity := range activities {
		text := strings.TrimSpace(activity.Incident)
		if text == "" || f.isSentinel(text) {
			continue
		}
		incidents = append(incidents, text)
		if len(incidents) == limit {
			break
		}
	}
	return incidents
}

// groupIncidents buckets activity and encounter texts across reports,
// tracking distinct reports and distinct subjects per incident text, ordered
// by report count descending then text ascending.
func (f *ResponseFormatter) groupIncidents(reports []models.Report) []textGroup {
	type bucket struct {
		reports  map[string]struct{}
		subjects map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	record := func(text string, report models.Report) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || f.isSentinel(trimmed) {
			return
		}
		entry, ok := buckets[trimmed]
		if !ok {
			entry = &bucket{reports: make(map[string]struct{}), subjects: make(map[string]struct{})}
			buckets[trimmed] = entry
		}
		entry.reports[report.ID] = struct{}{}
		entry.subjects[strings.ToLower(subjectName(report))] = struct{}{}
	}

	for _, report := range reports {
		md := report.Metadata
		if md == nil {
			continue
		}
		for _, activity := range md.CriminalActivities {
			record(activity.Incident, report)
		}
		for _, encounter := range md.PoliceEncounters {
			record(encounter.EncounterDetails, report)
		}
	}

	groups := make([]textGroup, 0, len(buckets))
	for text, entry := range buckets {
		groups = append(groups, textGroup{key: text, reports: len(entry.reports), subjects: len(entry.subjects)})
	}
	sortTextGroups(groups)
	return groups
}

type textGroup struct {
	key      string
	reports  int
	subjects int
}

func sortTextGroups(groups []textGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].reports != groups[j].reports {
			return groups[i].reports > groups[j].reports
		}
		return groups[i].key < groups[j].key
	})
}

func groupBySubject(reports []models.Report) []textGroup {
	counts := make(map[string]int)
	for _, report := range reports {
		counts[subjectName(report)]++
	}
	groups := make([]textGroup, 0, len(counts))
	for name, count := range counts {
		groups = append(groups, textGroup{key: name, reports: count})
	}
	sortTextGroups(groups)
	return groups
}

func groupByCommittee(reports []models.Report) []textGroup {
	type bucket struct {
		reports  int
		subjects map[string]struct{}
	}
	buckets := make(map[string]*bucket)
	for _, report := range reports {
		committee := strings.TrimSpace(report.AreaCommittee)
		if committee == "" {
			continue
		}
		entry, ok := buckets[committee]
		if !ok {
			entry = &bucket{subjects: make(map[string]struct{})}
			buckets[committee] = entry
		}
		entry.reports++
		entry.subjects[strings.ToLower(subjectName(report))] = struct{}{}
	}
	groups := make([]textGroup, 0, len(buckets))
	for committee, entry := range buckets {
		groups = append(groups, textGroup{key: committee, reports: entry.reports, subjects: len(entry.subjects)})
	}
	sortTextGroups(groups)
	return groups
}

// subjectName falls back to the report filename when the subject was never
// identified so grouping still has a stable key.
func subjectName(report models.Report) string {
	if report.Metadata != nil && strings.TrimSpace(report.Metadata.Name) != "" {
		return strings.TrimSpace(report.Metadata.Name)
	}
	return report.OriginalFilename
}

func firstEntityOrQuery(intent models.QueryIntent, category models.IntentCategory) string {
	if entities := intent.EntityList(category); len(entities) > 0 {
		return entities[0]
	}
	return intent.OriginalQuery
}

func pluralize(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", count, noun)
}
