package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stocksense/internal/adapters/config"
)

func TestFocusDefaultsFromConfig(t *testing.T) {
	cfg := config.FocusConfig{
		WorkDuration:           50 * time.Minute,
		ShortBreakDuration:     10 * time.Minute,
		LongBreakDuration:      20 * time.Minute,
		SessionsUntilLongBreak: 3,
		BreakReminderInterval:  45 * time.Minute,
		AutoChain:              true,
	}

	s := focusDefaults(cfg)
	assert.Equal(t, 50, s.WorkMinutes)
	assert.Equal(t, 10, s.ShortBreakMinutes)
	assert.Equal(t, 20, s.LongBreakMinutes)
	assert.Equal(t, 3, s.SessionsUntilLongBreak)
	assert.Equal(t, 45, s.BreakIntervalMinutes)
	assert.True(t, s.AutoChain)
	assert.True(t, s.BreakReminders)
}
