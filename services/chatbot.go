package services

import (
	"context"
	"fmt"
	"ir-query-processor/models"
	"sort"
	"strings"
	"time"
)

const (
	// maxRankedResults caps the ranked candidate list before formatting.
	maxRankedResults = 20
	// maxSources caps the citations attached to a response.
	maxSources = 5

	// Prompt summary caps, matching the grounding context the polish
	// prompt can usefully carry.
	promptSummaryReports   = 10
	promptSummaryPeople    = 5
	promptSummaryLocations = 3

	// storeFailureResponse is served verbatim when the report store is
	// unreachable. Store failures never surface as transport errors.
	storeFailureResponse = "Sorry, I encountered an error while processing your request. Please try again."
)

// scoredReport pairs a report with its retrieval relevance for ranking.
type scoredReport struct {
	report models.Report
	score  float64
}

// chatbotService wires the full query pipeline: parse the query into an
// intent, retrieve and rank candidate reports, format a deterministic
// answer, optionally polish it with the LLM, attach citations, and record
// the exchange in the conversation session.
type chatbotService struct {
	store     ReportStore
	parser    *IntentParser
	engine    *SuggestionEngine
	retriever *CandidateRetriever
	scorer    *RelevanceScorer
	formatter *ResponseFormatter
	sessions  *SessionManager
	llm       LLMService
	logger    Logger
}

// NewChatbotService creates the query pipeline service.
func NewChatbotService(
	store ReportStore,
	parser *IntentParser,
	engine *SuggestionEngine,
	retriever *CandidateRetriever,
	scorer *RelevanceScorer,
	formatter *ResponseFormatter,
	sessions *SessionManager,
	llm LLMService,
	logger Logger,
) ChatbotService {
	return &chatbotService{
		store:     store,
		parser:    parser,
		engine:    engine,
		retriever: retriever,
		scorer:    scorer,
		formatter: formatter,
		sessions:  sessions,
		llm:       llm,
		logger:    logger,
	}
}

// ParseQuery classifies a query without executing it.
func (s *chatbotService) ParseQuery(query string) models.QueryIntent {
	return s.parser.Parse(query)
}

// GenerateSuggestions returns autocomplete candidates across all fields.
func (s *chatbotService) GenerateSuggestions(query string, corpus []models.Report) []models.Suggestion {
	return s.engine.Suggest(query, corpus)
}

// GenerateFieldSuggestions returns autocomplete candidates for one field.
func (s *chatbotService) GenerateFieldSuggestions(query string, fieldType models.FieldType, corpus []models.Report) []models.Suggestion {
	return s.engine.SuggestField(query, fieldType, corpus)
}

// ProcessQuery runs the full pipeline for one query. It always returns a
// usable response: when the store is unreachable the user gets an apology
// with empty sources, and the error slot stays nil.
func (s *chatbotService) ProcessQuery(ctx context.Context, query, sessionID string) (*models.ChatQueryResponse, error) {
	start := time.Now()
	intent := s.parser.Parse(query)

	corpus, err := s.store.FetchReports(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to fetch reports for chat query", err,
			String("category", string(intent.Category)),
		)
		return &models.ChatQueryResponse{
			Response:  storeFailureResponse,
			Sources:   []models.Source{},
			Intent:    intent,
			SessionID: sessionID,
		}, nil
	}

	now := time.Now()
	candidates := s.retriever.Retrieve(intent, corpus)
	ranked := s.rankCandidates(candidates, intent, now)

	responseText := s.formatter.Format(ranked, intent)

	// The LLM only rephrases answers that carry results; the deterministic
	// not-found texts are served unchanged.
	if s.llm != nil && s.llm.Enabled() && len(ranked) > 0 {
		polished, llmErr := s.llm.GenerateResponse(ctx, s.buildPolishPrompt(intent, ranked, responseText))
		if llmErr != nil {
			s.logger.Warn("LLM polish failed, serving heuristic response",
				String("error", llmErr.Error()),
			)
		} else if strings.TrimSpace(polished) != "" {
			responseText = strings.TrimSpace(polished)
		}
	}

	sources := s.buildSources(ranked, intent, now)
	sessionID, followUps := s.sessions.RecordQuery(sessionID, intent, ranked)

	s.logger.Info("Processed chat query",
		String("category", string(intent.Category)),
		Float64("confidence", intent.Confidence),
		Int("candidates", len(candidates)),
		Int("results", len(ranked)),
		Duration("duration", time.Since(start)),
	)

	return &models.ChatQueryResponse{
		Response:            responseText,
		Sources:             sources,
		Intent:              intent,
		SessionID:           sessionID,
		FollowUpSuggestions: followUps,
	}, nil
}

// rankCandidates orders candidates by retrieval relevance, most relevant
// first, and caps the list. Ties keep the store's recency order.
func (s *chatbotService) rankCandidates(candidates []models.Report, intent models.QueryIntent, now time.Time) []models.Report {
	profile := RetrievalProfile()

	scored := make([]scoredReport, len(candidates))
	for i, report := range candidates {
		scored[i] = scoredReport{
			report: report,
			score:  s.scorer.Score(report, intent, profile, now),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxRankedResults {
		scored = scored[:maxRankedResults]
	}

	ranked := make([]models.Report, len(scored))
	for i, sr := range scored {
		ranked[i] = sr.report
	}
	return ranked
}

// buildSources attaches citation confidences to the top ranked reports.
func (s *chatbotService) buildSources(ranked []models.Report, intent models.QueryIntent, now time.Time) []models.Source {
	profile := CitationProfile()

	limit := len(ranked)
	if limit > maxSources {
		limit = maxSources
	}

	sources := make([]models.Source, 0, limit)
	for _, report := range ranked[:limit] {
		sources = append(sources, models.Source{
			ReportID:   report.ID,
			ReportName: report.OriginalFilename,
			Confidence: s.scorer.Score(report, intent, profile, now),
		})
	}
	return sources
}

// buildPolishPrompt assembles the rewrite instruction for the LLM. The
// draft answer and a short results summary are the only facts offered, so
// the model has nothing else to repeat.
func (s *chatbotService) buildPolishPrompt(intent models.QueryIntent, reports []models.Report, draft string) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant for an Intelligence Reports (IR) dashboard.\n")
	fmt.Fprintf(&b, "User query: %q\n", intent.OriginalQuery)
	fmt.Fprintf(&b, "Query type: %s\n\n", intent.Category)
	b.WriteString("Search Results Summary:\n")
	b.WriteString(resultsSummary(reports))
	b.WriteString("\n\nDraft answer:\n")
	b.WriteString(draft)
	b.WriteString("\n\nGenerate a natural, conversational response that:\n")
	b.WriteString("1. Directly answers the user's question\n")
	b.WriteString("2. Highlights key findings from the reports\n")
	b.WriteString("3. Mentions specific names, locations, incidents when relevant\n")
	b.WriteString("4. Is informative but concise\n")
	b.WriteString("5. Uses natural language, not technical jargon\n\n")
	b.WriteString("IMPORTANT: Only restate facts present in the draft answer or the summary. Do not make up information.\n")

	return b.String()
}

// resultsSummary condenses the ranked reports into the few lines of
// grounding context the polish prompt carries.
func resultsSummary(reports []models.Report) string {
	if len(reports) == 0 {
		return "No relevant reports found."
	}

	var people, locations []string
	seenPeople := make(map[string]struct{})
	seenLocations := make(map[string]struct{})

	scan := reports
	if len(scan) > promptSummaryReports {
		scan = scan[:promptSummaryReports]
	}
	for _, report := range scan {
		md := report.Metadata
		if md == nil {
			continue
		}
		if name := strings.TrimSpace(md.Name); name != "" {
			if _, ok := seenPeople[name]; !ok {
				seenPeople[name] = struct{}{}
				people = append(people, name)
			}
		}
		if region := strings.TrimSpace(md.AreaRegion); region != "" {
			if _, ok := seenLocations[region]; !ok {
				seenLocations[region] = struct{}{}
				locations = append(locations, region)
			}
		}
	}

	parts := []string{fmt.Sprintf("Found %d reports", len(reports))}
	if len(people) > 0 {
		if len(people) > promptSummaryPeople {
			people = people[:promptSummaryPeople]
		}
		parts = append(parts, "People: "+strings.Join(people, ", "))
	}
	if len(locations) > 0 {
		if len(locations) > promptSummaryLocations {
			locations = locations[:promptSummaryLocations]
		}
		parts = append(parts, "Locations: "+strings.Join(locations, ", "))
	}

	return strings.Join(parts, "\n")
}
