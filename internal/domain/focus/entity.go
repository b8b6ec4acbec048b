package focus

import (
	"time"
)

// SessionKind is the Pomodoro-style session variant
type SessionKind string

const (
	KindWork      SessionKind = "work"
	KindBreak     SessionKind = "break"
	KindLongBreak SessionKind = "long-break"
)

// Valid reports whether the kind is one of the enumerated variants
func (k SessionKind) Valid() bool {
	switch k {
	case KindWork, KindBreak, KindLongBreak:
		return true
	}
	return false
}

// Session is one timed focus or break interval.
// At most one session is current at any instant; starting a new session
// while one is running ends the old one as interrupted.
type Session struct {
	ID          string      `json:"id"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     *time.Time  `json:"endTime,omitempty"`
	Duration    int         `json:"duration"` // planned minutes
	Kind        SessionKind `json:"kind"`
	Completed   bool        `json:"completed"`
	Interrupted bool        `json:"interrupted,omitempty"`
}

// Settings control the focus timer and attention tracking
type Settings struct {
	BreakReminders         bool `json:"breakReminders"`
	BreakIntervalMinutes   int  `json:"breakInterval"`
	AutoChain              bool `json:"autoChain"`
	WorkMinutes            int  `json:"workDuration"`
	ShortBreakMinutes      int  `json:"shortBreakDuration"`
	LongBreakMinutes       int  `json:"longBreakDuration"`
	SessionsUntilLongBreak int  `json:"sessionsUntilLongBreak"`
	AttentionTracking      bool `json:"attentionTracking"`
}

// DefaultSettings are Pomodoro-style defaults
func DefaultSettings() Settings {
	return Settings{
		BreakReminders:         true,
		BreakIntervalMinutes:   25,
		AutoChain:              false,
		WorkMinutes:            25,
		ShortBreakMinutes:      5,
		LongBreakMinutes:       15,
		SessionsUntilLongBreak: 4,
		AttentionTracking:      true,
	}
}

// DurationFor returns the planned minutes for a session kind
func (s Settings) DurationFor(kind SessionKind) int {
	switch kind {
	case KindLongBreak:
		return s.LongBreakMinutes
	case KindBreak:
		return s.ShortBreakMinutes
	default:
		return s.WorkMinutes
	}
}

// AttentionMetrics tracks user activity signals feeding the focus score
type AttentionMetrics struct {
	TimeSpent    time.Duration `json:"timeSpent"`
	Clicks       int           `json:"clicks"`
	Scrolls      int           `json:"scrolls"`
	TabSwitches  int           `json:"tabSwitches"`
	LastActivity time.Time     `json:"lastActivity"`
	FocusScore   int           `json:"focusScore"` // 0-100
}

// Stats summarizes today's sessions
type Stats struct {
	TodayTotal           int `json:"todayTotal"`
	TodayCompleted       int `json:"todayCompleted"`
	TodayFocusMinutes    int `json:"todayFocusMinutes"`
	AverageSessionLength int `json:"averageSessionLength"`
	CurrentStreak        int `json:"currentStreak"`
	FocusScore           int `json:"focusScore"`
}
