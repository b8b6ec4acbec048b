package tracking

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"stocksense/internal/domain/user"
	"stocksense/internal/knowledge"
	"stocksense/internal/metrics"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// sectorKeywords maps dashboard sectors to search keywords used for
// preferred-sector inference
var sectorKeywords = map[string][]string{
	"Technology":  {"tech", "software", "ai", "artificial intelligence", "cloud", "saas", "semiconductor", "apple", "microsoft", "google", "nvidia"},
	"Healthcare":  {"pharma", "biotech", "medical", "health", "drug", "vaccine", "hospital"},
	"Finance":     {"bank", "insurance", "financial services", "fintech", "payment", "credit"},
	"Energy":      {"oil", "gas", "renewable", "solar", "wind", "energy", "exxon", "chevron"},
	"Consumer":    {"retail", "consumer goods", "amazon", "walmart", "nike", "coca cola"},
	"Real Estate": {"reit", "real estate", "property", "housing", "commercial real estate"},
	"Automotive":  {"auto", "car", "electric vehicle", "tesla", "ford", "gm"},
}

// demoSearches seed the profile when simulating a user type
var demoSearches = map[user.ExpertiseTier][]string{
	user.TierBeginner:     {"AAPL stock price", "how to buy stocks", "what is dividend", "stock market basics", "investment for beginners"},
	user.TierIntermediate: {"AAPL PE ratio", "moving averages", "RSI indicator", "earnings report", "market cap analysis"},
	user.TierAdvanced:     {"AAPL options volatility", "VIX correlation analysis", "beta coefficient", "derivatives pricing models", "quantitative hedge strategies"},
}

// SearchResult pairs the per-term analysis with the updated rolling
// assessment
type SearchResult struct {
	Analysis   knowledge.Analysis   `json:"analysis"`
	Assessment knowledge.Assessment `json:"assessment"`
}

// Service tracks user behavior and keeps the profile persisted after
// every mutation.
type Service struct {
	mu        sync.Mutex
	repo      user.Repository
	knowledge *knowledge.Service
	clock     clock.Clock
	log       *logger.Logger

	profile      *user.Profile
	sectionEnter map[string]time.Time
}

func NewService(repo user.Repository, kn *knowledge.Service, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		repo:         repo,
		knowledge:    kn,
		clock:        clk,
		log:          logger.Get().With("component", "tracking"),
		sectionEnter: make(map[string]time.Time),
	}
}

// TrackSearch records a search, classifies it, and folds the result
// into the profile (expertise tier and preferred sectors).
func (s *Service) TrackSearch(ctx context.Context, query string) (*SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.ensureProfile(ctx)
	if err != nil {
		return nil, err
	}

	profile.AppendSearch(query)

	analysis := s.knowledge.AnalyzeTerm(ctx, query)
	assessment := s.knowledge.Assessment()
	metrics.SearchesAnalyzed.WithLabelValues(string(assessment.Tier)).Inc()

	profile.ExpertiseTier = assessment.Tier
	s.updatePreferredSectors(profile, query, analysis.RelatedConcepts)
	profile.LastActive = s.clock.Now()

	if err := s.save(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Debugw("tracked search", "query", query, "tier", assessment.Tier)
	return &SearchResult{Analysis: analysis, Assessment: assessment}, nil
}

// TrackClick records one interaction event
func (s *Service) TrackClick(ctx context.Context, element, section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.ensureProfile(ctx)
	if err != nil {
		return err
	}

	profile.AppendClick(user.ClickEvent{
		Timestamp: s.clock.Now(),
		Element:   element,
		Section:   section,
	})
	profile.LastActive = s.clock.Now()

	return s.save(ctx, profile)
}

// SectionEnter marks the start of time tracking for a section.
// Re-entering an already open section restarts its clock.
func (s *Service) SectionEnter(section string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sectionEnter[section] = s.clock.Now()
}

// SectionLeave closes an open section and accumulates the time spent.
// Leaving a section that was never entered is a no-op.
func (s *Service) SectionLeave(ctx context.Context, section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entered, ok := s.sectionEnter[section]
	if !ok {
		return nil
	}
	delete(s.sectionEnter, section)

	profile, err := s.ensureProfile(ctx)
	if err != nil {
		return err
	}

	profile.AddTimeSpent(section, s.clock.Now().Sub(entered))
	return s.save(ctx, profile)
}

// Profile returns a copy of the current profile, creating a fresh one
// if none is persisted yet.
func (s *Service) Profile(ctx context.Context) (*user.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.ensureProfile(ctx)
	if err != nil {
		return nil, err
	}
	return profile.Clone(), nil
}

// Insights returns the current rolling knowledge assessment
func (s *Service) Insights() knowledge.Assessment {
	return s.knowledge.Assessment()
}

// SearchAnalysisHistory returns the trailing per-term analyses
func (s *Service) SearchAnalysisHistory() []knowledge.Analysis {
	return s.knowledge.History()
}

// Reset discards the profile and the analysis window and starts over
// with a fresh beginner profile.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx); err != nil {
		return err
	}

	s.knowledge.Reset()
	s.sectionEnter = make(map[string]time.Time)
	s.profile = user.NewProfile(newProfileID())

	s.log.Infow("user profile reset", "user", s.profile.ID)
	return s.save(ctx, s.profile)
}

// Simulate replaces the profile with a canned profile of the given
// tier and replays a few of its searches through the classifier.
func (s *Service) Simulate(ctx context.Context, tier user.ExpertiseTier) error {
	if !tier.Valid() {
		return errors.NewValidationError("tier", "unknown expertise tier", tier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.ensureProfile(ctx)
	if err != nil {
		return err
	}

	searches := demoSearches[tier]
	profile.ExpertiseTier = tier
	profile.SearchHistory = append([]string(nil), searches...)

	for _, q := range searches[:3] {
		s.knowledge.AnalyzeTerm(ctx, q)
	}

	s.log.Infow("simulating user type", "tier", tier)
	return s.save(ctx, profile)
}

func (s *Service) ensureProfile(ctx context.Context) (*user.Profile, error) {
	if s.profile != nil {
		return s.profile, nil
	}

	profile, err := s.repo.Get(ctx)
	if err == nil {
		s.profile = profile
		return profile, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	s.profile = user.NewProfile(newProfileID())
	if err := s.save(ctx, s.profile); err != nil {
		return nil, err
	}
	return s.profile, nil
}

func (s *Service) save(ctx context.Context, profile *user.Profile) error {
	if err := s.repo.Save(ctx, profile); err != nil {
		return errors.Wrap(err, "failed to persist user profile")
	}
	return nil
}

func (s *Service) updatePreferredSectors(profile *user.Profile, query string, related []string) {
	concepts := make([]string, 0, len(related)+1)
	concepts = append(concepts, strings.ToLower(query))
	for _, c := range related {
		concepts = append(concepts, strings.ToLower(c))
	}

	for sector, keywords := range sectorKeywords {
		if matchesSector(concepts, keywords) {
			profile.AddPreferredSector(sector)
		}
	}
}

func matchesSector(concepts, keywords []string) bool {
	for _, kw := range keywords {
		for _, c := range concepts {
			if strings.Contains(c, kw) {
				return true
			}
		}
	}
	return false
}

func newProfileID() string {
	return "user_" + uuid.NewString()
}
