package knowledge

import (
	"context"
	"strings"
	"sync"

	"stocksense/internal/domain/user"
	"stocksense/pkg/logger"
)

const historyWindow = 20

// Analysis is the outcome of classifying a single search term. The
// classification is total: every input produces an analysis, unmatched
// terms fall back to an estimated score.
type Analysis struct {
	Term             string              `json:"term"`
	Complexity       float64             `json:"complexity"`
	Tier             user.ExpertiseTier  `json:"tier"`
	Confidence       float64             `json:"confidence"`
	Reasoning        string              `json:"reasoning"`
	SuggestedContent []string            `json:"suggested_content"`
	RelatedConcepts  []string            `json:"related_concepts"`
}

// Assessment is the rolling view over the recent search window.
type Assessment struct {
	Tier            user.ExpertiseTier `json:"tier"`
	Confidence      float64            `json:"confidence"`
	SearchPattern   string             `json:"search_pattern"`
	Recommendations []string           `json:"recommendations"`
}

// Service classifies search terms and keeps a bounded trailing window
// of complexity scores for the rolling expertise assessment.
type Service struct {
	mu      sync.Mutex
	history []Analysis
	lookup  *DefinitionClient
	log     *logger.Logger
}

func NewService(lookup *DefinitionClient) *Service {
	return &Service{
		lookup: lookup,
		log:    logger.Get().With("component", "knowledge"),
	}
}

// AnalyzeTerm classifies a search term, records it in the trailing
// window, and returns the analysis. It never fails.
func (s *Service) AnalyzeTerm(ctx context.Context, term string) Analysis {
	normalized := strings.ToLower(strings.TrimSpace(term))

	complexity, reasoning := scoreTerm(normalized)

	s.mu.Lock()
	recent := recentAverage(s.history)
	s.mu.Unlock()

	tier, confidence := tierFor(complexity, recent)

	a := Analysis{
		Term:             normalized,
		Complexity:       complexity,
		Tier:             tier,
		Confidence:       confidence,
		Reasoning:        reasoning,
		SuggestedContent: suggestedContent[string(tier)],
		RelatedConcepts:  relatedConcepts(normalized),
	}

	s.mu.Lock()
	s.history = append(s.history, a)
	if len(s.history) > historyWindow {
		s.history = s.history[len(s.history)-historyWindow:]
	}
	s.mu.Unlock()

	s.log.Debugw("analyzed search term",
		"term", normalized,
		"complexity", complexity,
		"tier", tier,
	)
	return a
}

// Assessment computes the rolling expertise view over the trailing
// window. The tier comes from the plain mean complexity of the window.
func (s *Service) Assessment() Assessment {
	s.mu.Lock()
	history := make([]Analysis, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	if len(history) == 0 {
		return Assessment{
			Tier:            user.TierBeginner,
			Confidence:      0.5,
			SearchPattern:   "insufficient data",
			Recommendations: baseRecommendations[string(user.TierBeginner)],
		}
	}

	var sum float64
	for _, a := range history {
		sum += a.Complexity
	}
	avg := sum / float64(len(history))

	var tier user.ExpertiseTier
	var confidence float64
	switch {
	case avg <= 1.4:
		tier, confidence = user.TierBeginner, 0.8
	case avg <= 2.3:
		tier, confidence = user.TierIntermediate, 0.85
	default:
		tier, confidence = user.TierAdvanced, 0.9
	}

	pattern := "consistent complexity level"
	if isProgressing(history) {
		pattern = "progressing from simple to complex terms"
		confidence += 0.1
		if confidence > 1.0 {
			confidence = 1.0
		}
	}

	return Assessment{
		Tier:            tier,
		Confidence:      confidence,
		SearchPattern:   pattern,
		Recommendations: personalizedRecommendations(tier, history),
	}
}

// personalizedRecommendations extends the per-tier base set with items
// keyed off the last few search topics, capped at four entries.
func personalizedRecommendations(tier user.ExpertiseTier, history []Analysis) []string {
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	topics := make([]string, 0, len(recent))
	for _, a := range recent {
		topics = append(topics, a.Term)
	}

	recs := append([]string(nil), baseRecommendations[string(tier)]...)
	if anyTopicContains(topics, "dividend") {
		recs = append(recs, "Explore dividend growth investing strategies")
	}
	if anyTopicContains(topics, "technical", "chart") {
		recs = append(recs, "Study advanced technical analysis patterns")
	}
	if anyTopicContains(topics, "option", "derivative") {
		recs = append(recs, "Learn about risk management with derivatives")
	}

	if len(recs) > 4 {
		recs = recs[:4]
	}
	return recs
}

func anyTopicContains(topics []string, subs ...string) bool {
	for _, t := range topics {
		for _, sub := range subs {
			if strings.Contains(t, sub) {
				return true
			}
		}
	}
	return false
}

// History returns a copy of the trailing analysis window.
func (s *Service) History() []Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Analysis, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the trailing window.
func (s *Service) Reset() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// Lookup fetches a definition for a term, falling back to the local
// definition set when the instant answer service is unavailable.
func (s *Service) Lookup(ctx context.Context, term string) Definition {
	if s.lookup == nil {
		return localDefinition(term)
	}
	return s.lookup.Lookup(ctx, term)
}

// scoreTerm assigns the complexity score for one term. Matched terms
// score 1, 2 or 3; unmatched terms get an estimate from structural
// hints in the query.
func scoreTerm(term string) (float64, string) {
	if matchesAny(term, beginnerTerms) {
		return 1, "matched beginner terminology"
	}
	if matchesAny(term, intermediateTerms) {
		return 2, "matched intermediate terminology"
	}
	if matchesAny(term, advancedTerms) {
		return 3, "matched advanced terminology"
	}
	if matchesAny(term, complexityIndicators) || len(strings.Fields(term)) > 2 {
		return 2.5, "unmatched term with complexity indicators"
	}
	return 1.5, "unmatched simple term"
}

func matchesAny(term string, list []string) bool {
	for _, t := range list {
		if strings.Contains(term, t) || strings.Contains(t, term) {
			return true
		}
	}
	return false
}

// tierFor blends the term's own score with the recent average so one
// outlier search does not flip the per-term tier.
func tierFor(complexity, recent float64) (user.ExpertiseTier, float64) {
	score := complexity
	if recent > 0 {
		score = (complexity + recent) / 2
	}
	switch {
	case score <= 1.3:
		return user.TierBeginner, 0.8
	case score <= 2.2:
		return user.TierIntermediate, 0.85
	default:
		return user.TierAdvanced, 0.9
	}
}

func recentAverage(history []Analysis) float64 {
	if len(history) == 0 {
		return 0
	}
	n := len(history)
	if n > 5 {
		history = history[n-5:]
	}
	var sum float64
	for _, a := range history {
		sum += a.Complexity
	}
	return sum / float64(len(history))
}

// isProgressing reports whether the last few searches trend from
// simpler to more complex terms.
func isProgressing(history []Analysis) bool {
	if len(history) < 2 {
		return false
	}
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	return recent[len(recent)-1].Complexity > recent[0].Complexity
}

func relatedConcepts(term string) []string {
	var out []string
	for stem, concepts := range contextMap {
		if strings.Contains(term, stem) {
			out = append(out, concepts...)
		}
	}
	return out
}
