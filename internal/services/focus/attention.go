package focus

import (
	"time"

	"stocksense/internal/domain/focus"
	"stocksense/internal/metrics"
)

// ActivityKind is a tracked user input variant
type ActivityKind string

const (
	ActivityClick  ActivityKind = "click"
	ActivityScroll ActivityKind = "scroll"
)

// RecordActivity registers user input, feeding the focus score
func (s *Service) RecordActivity(kind ActivityKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case ActivityClick:
		s.attention.Clicks++
	case ActivityScroll:
		s.attention.Scrolls++
	}
	s.attention.LastActivity = s.clock.Now()
}

// RecordTabSwitch registers the user leaving the dashboard tab
func (s *Service) RecordTabSwitch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attention.TabSwitches++
}

// Attention returns a copy of the current attention metrics
func (s *Service) Attention() focus.AttentionMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attention
}

// recomputeScore rescores attention from recent signals. 100 base,
// minus inactivity past two minutes (5/min, cap 50), minus excess tab
// switches past five (5 each, cap 30), plus 10 for sustained activity
// over five minutes, clamped to [0,100].
func (s *Service) recomputeScore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	score := 100

	inactive := now.Sub(s.attention.LastActivity)
	if inactive > 2*time.Minute {
		penalty := int(inactive.Minutes()-2) * 5
		if penalty > 50 {
			penalty = 50
		}
		score -= penalty
	} else {
		// active within the window counts toward sustained engagement
		s.attention.TimeSpent += scoreInterval
	}

	if s.attention.TabSwitches > 5 {
		penalty := (s.attention.TabSwitches - 5) * 5
		if penalty > 30 {
			penalty = 30
		}
		score -= penalty
	}

	if s.attention.TimeSpent > 5*time.Minute {
		score += 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	s.attention.FocusScore = score
	metrics.FocusScore.Set(float64(score))
}
