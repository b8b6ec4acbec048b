package focus

import (
	"context"
	"time"

	"stocksense/internal/domain/focus"
)

// Stats summarizes today's sessions from the persisted history
func (s *Service) Stats(ctx context.Context) (focus.Stats, error) {
	history, err := s.repo.History(ctx)
	if err != nil {
		return focus.Stats{}, err
	}

	s.mu.Lock()
	now := s.clock.Now()
	score := s.attention.FocusScore
	s.mu.Unlock()

	midnight := now.Truncate(24 * time.Hour)

	var stats focus.Stats
	stats.FocusScore = score

	var totalMinutes int
	for _, session := range history {
		if session.StartTime.Before(midnight) || session.Kind != focus.KindWork {
			continue
		}
		stats.TodayTotal++
		totalMinutes += session.Duration
		if session.Completed {
			stats.TodayCompleted++
			stats.TodayFocusMinutes += session.Duration
			stats.CurrentStreak++
		} else {
			stats.CurrentStreak = 0
		}
	}

	if stats.TodayTotal > 0 {
		stats.AverageSessionLength = totalMinutes / stats.TodayTotal
	}

	return stats, nil
}
