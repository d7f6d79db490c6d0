package services

import (
	"fmt"
	"ir-query-processor/config"
	"ir-query-processor/models"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxFollowUpSuggestions = 4

// QueryRecord is one history entry in a conversation session.
type QueryRecord struct {
	Query        string                `json:"query"`
	Category     models.IntentCategory `json:"category"`
	ResultsCount int                   `json:"resultsCount"`
	Timestamp    time.Time             `json:"timestamp"`
}

// Session tracks one investigator conversation. Sessions are isolated per
// district: the internal key is prefixed so two districts sharing a client
// session id never see each other's context.
type Session struct {
	ID                 string                `json:"id"`
	CreatedAt          time.Time             `json:"createdAt"`
	LastActivity       time.Time             `json:"lastActivity"`
	History            []QueryRecord         `json:"history"`
	MentionedPeople    []string              `json:"mentionedPeople"`
	MentionedLocations []string              `json:"mentionedLocations"`
	MentionedIncidents []string              `json:"mentionedIncidents"`
	CurrentFocus       models.IntentCategory `json:"currentFocus"`
	FollowUps          []string              `json:"followUps"`
}

// SessionManager keeps conversation sessions in memory, evicting sessions
// idle past the configured TTL. All methods are safe for concurrent use.
type SessionManager struct {
	mu             sync.RWMutex
	sessions       map[string]*Session
	districtPrefix string
	idleTTL        time.Duration
	maxHistory     int
	stopCleanup    chan bool
}

// NewSessionManager creates a manager for the given district and starts its
// eviction goroutine. Call Stop to release it.
func NewSessionManager(districtPrefix string, cfg *config.SessionConfig) *SessionManager {
	manager := &SessionManager{
		sessions:       make(map[string]*Session),
		districtPrefix: districtPrefix,
		idleTTL:        cfg.IdleTTL,
		maxHistory:     cfg.MaxHistory,
		stopCleanup:    make(chan bool),
	}
	go manager.cleanupLoop(cfg.CleanupInterval)
	return manager
}

// Stop terminates the eviction goroutine.
func (m *SessionManager) Stop() {
	close(m.stopCleanup)
}

// RecordQuery folds a completed query into its session: history, mentioned
// entities, current focus, and fresh follow-up suggestions. An empty
// sessionID starts a new session. It returns the client-visible session id
// and the follow-ups to surface with the response.
func (m *SessionManager) RecordQuery(sessionID string, intent models.QueryIntent, results []models.Report) (string, []string) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	now := time.Now()
	followUps := buildFollowUps(intent, results)

	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.locked(sessionID, now)
	session.LastActivity = now
	session.History = append(session.History, QueryRecord{
		Query:        intent.OriginalQuery,
		Category:     intent.Category,
		ResultsCount: len(results),
		Timestamp:    now,
	})
	if len(session.History) > m.maxHistory {
		session.History = session.History[len(session.History)-m.maxHistory:]
	}

	session.MentionedPeople = mergeMentions(session.MentionedPeople, intent.EntityList(models.IntentPerson))
	session.MentionedLocations = mergeMentions(session.MentionedLocations, intent.EntityList(models.IntentLocation))
	session.MentionedIncidents = mergeMentions(session.MentionedIncidents, intent.EntityList(models.IntentIncident))
	session.CurrentFocus = intent.Category
	session.FollowUps = followUps

	return sessionID, followUps
}

// Snapshot returns a copy of the session for inspection, or false if the
// session does not exist or has been evicted.
func (m *SessionManager) Snapshot(sessionID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[m.internalKey(sessionID)]
	if !ok {
		return Session{}, false
	}
	copied := *session
	copied.History = append([]QueryRecord(nil), session.History...)
	copied.MentionedPeople = append([]string(nil), session.MentionedPeople...)
	copied.MentionedLocations = append([]string(nil), session.MentionedLocations...)
	copied.MentionedIncidents = append([]string(nil), session.MentionedIncidents...)
	copied.FollowUps = append([]string(nil), session.FollowUps...)
	return copied, true
}

// ActiveSessions returns the number of live sessions.
func (m *SessionManager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) internalKey(sessionID string) string {
	return fmt.Sprintf("%s_%s", m.districtPrefix, sessionID)
}

// locked fetches or creates the session; callers must hold the write lock.
func (m *SessionManager) locked(sessionID string, now time.Time) *Session {
	key := m.internalKey(sessionID)
	session, ok := m.sessions[key]
	if !ok {
		session = &Session{
			ID:        sessionID,
			CreatedAt: now,
		}
		m.sessions[key] = session
	}
	return session
}

func (m *SessionManager) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *SessionManager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, session := range m.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(m.sessions, key)
		}
	}
}

// mergeMentions appends unseen values, deduplicating case-insensitively and
// preserving first-seen order.
func mergeMentions(existing []string, additions []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, value := range existing {
		seen[strings.ToLower(value)] = struct{}{}
	}
	for _, value := range additions {
		key := strings.ToLower(value)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		existing = append(existing, value)
	}
	return existing
}

// buildFollowUps derives up to four next-question suggestions from the top
// results: related people, places, and the angles the current category
// leaves open.
func buildFollowUps(intent models.QueryIntent, results []models.Report) []string {
	if len(results) == 0 {
		return []string{"Try searching for a different name or location"}
	}

	var people []string
	seenPeople := make(map[string]struct{})
	var locations []string
	seenLocations := make(map[string]struct{})

	top := results
	if len(top) > 5 {
		top = top[:5]
	}
	for _, report := range top {
		md := report.Metadata
		if md == nil {
			continue
		}
		addMention(&people, seenPeople, md.Name)
		addMention(&locations, seenLocations, md.AreaRegion)
		associates := md.MaoistsMet
		if len(associates) > 3 {
			associates = associates[:3]
		}
		for _, associate := range associates {
			addMention(&people, seenPeople, associate.Name)
		}
	}

	var followUps []string
	switch intent.Category {
	case models.IntentPerson:
		queried := ""
		if persons := intent.EntityList(models.IntentPerson); len(persons) > 0 {
			queried = strings.ToLower(persons[0])
		}
		added := 0
		for _, person := range people {
			if strings.ToLower(person) == queried {
				continue
			}
			followUps = append(followUps, fmt.Sprintf("Tell me about %s", person))
			if added++; added == 3 {
				break
			}
		}
		for i, location := range locations {
			if i == 2 {
				break
			}
			followUps = append(followUps, fmt.Sprintf("What incidents happened in %s?", location))
		}
	case models.IntentLocation:
		for i, person := range people {
			if i == 3 {
				break
			}
			followUps = append(followUps, fmt.Sprintf("Tell me about %s", person))
		}
		followUps = append(followUps, "What weapons were found in this area?")
	case models.IntentIncident:
		for i, person := range people {
			if i == 2 {
				break
			}
			followUps = append(followUps, fmt.Sprintf("What is %s's involvement?", person))
		}
	}

	if len(followUps) > maxFollowUpSuggestions {
		followUps = followUps[:maxFollowUpSuggestions]
	}
	return followUps
}

func addMention(values *[]string, seen map[string]struct{}, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	key := strings.ToLower(trimmed)
	if _, dup := seen[key]; dup {
		return
	}
	seen[key] = struct{}{}
	*values = append(*values, trimmed)
}
