package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksense/internal/domain/market"
	"stocksense/internal/domain/user"
	"stocksense/pkg/errors"
)

type stubProvider struct {
	mu       sync.Mutex
	snapshot *market.Snapshot
	err      error
}

func (p *stubProvider) Snapshot(ctx context.Context) (*market.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.snapshot, nil
}

type stubProfiles struct {
	profile *user.Profile
	err     error
}

func (p *stubProfiles) Profile(ctx context.Context) (*user.Profile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.profile, nil
}

func testSnapshot(score float64, vol market.Volatility) *market.Snapshot {
	label := market.SentimentNeutral
	if score < -0.3 {
		label = market.SentimentBearish
	} else if score > 0.3 {
		label = market.SentimentBullish
	}
	return &market.Snapshot{
		Instruments: []market.Stock{
			{
				Symbol:        "TSLA",
				Name:          "Tesla Inc.",
				Price:         decimal.NewFromFloat(248.50),
				Change:        decimal.NewFromFloat(-12.80),
				ChangePercent: -4.9,
				Sentiment:     market.Sentiment{Score: -0.4, Label: market.SentimentBearish, Confidence: 0.8},
				Sector:        "Automotive",
				MarketCap:     790_000_000,
			},
			{
				Symbol:        "NVDA",
				Name:          "NVIDIA Corporation",
				Price:         decimal.NewFromFloat(421.30),
				Change:        decimal.NewFromFloat(8.90),
				ChangePercent: 2.2,
				Sentiment:     market.Sentiment{Score: 0.6, Label: market.SentimentBullish, Confidence: 0.9},
				Sector:        "Technology",
				MarketCap:     1_040_000_000,
			},
		},
		Condition: market.Condition{
			Overall:    market.Sentiment{Score: score, Label: label, Confidence: 0.6},
			VIX:        18.5,
			Trend:      market.TrendSideways,
			Volatility: vol,
		},
		Timestamp: time.Now(),
	}
}

func newTestAgent(provider market.Provider, profile *user.Profile) (*Agent, *clock.Mock) {
	clk := clock.NewMock()
	return New(provider, &stubProfiles{profile: profile}, NewDispatcher(), clk, 5*time.Second), clk
}

func TestUrgencyGrading(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		vol      market.Volatility
		expected Urgency
	}{
		{"strong sentiment", 0.8, market.VolatilityLow, UrgencyHigh},
		{"strong negative sentiment", -0.75, market.VolatilityLow, UrgencyHigh},
		{"high volatility", 0.0, market.VolatilityHigh, UrgencyHigh},
		{"moderate sentiment", -0.5, market.VolatilityLow, UrgencyMedium},
		{"medium volatility", 0.1, market.VolatilityMedium, UrgencyMedium},
		{"calm market", 0.1, market.VolatilityLow, UrgencyLow},
		{"score at medium cutoff", 0.3, market.VolatilityLow, UrgencyLow},
		{"score just over medium cutoff", 0.3000001, market.VolatilityLow, UrgencyMedium},
		{"score at high cutoff", 0.7, market.VolatilityLow, UrgencyMedium},
		{"score just over high cutoff", 0.7000001, market.VolatilityLow, UrgencyHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := market.Condition{
				Overall:    market.Sentiment{Score: tt.score, Label: market.SentimentNeutral},
				Volatility: tt.vol,
			}
			assert.Equal(t, tt.expected, urgencyFor(cond))
		})
	}
}

func TestPlanActionsBearishMarket(t *testing.T) {
	provider := &stubProvider{snapshot: testSnapshot(-0.8, market.VolatilityHigh)}
	profile := user.NewProfile("u1")
	a, _ := newTestAgent(provider, profile)

	obs, err := a.observe(context.Background())
	require.NoError(t, err)
	thought := a.think(obs)

	assert.Equal(t, UrgencyHigh, thought.Urgency)
	require.Len(t, thought.Actions, 3) // ui_change, mode_switch, content_update

	var ui *Action
	for i := range thought.Actions {
		if thought.Actions[i].Kind == KindUIChange {
			ui = &thought.Actions[i]
		}
		assert.NoError(t, thought.Actions[i].Validate())
	}
	require.NotNil(t, ui)
	assert.Equal(t, 10, ui.Priority)
	assert.Equal(t, "red", ui.UIChange.Theme)

	assert.Contains(t, thought.Recommendations, "Consider defensive positions")
	assert.Contains(t, thought.Recommendations[2], "TSLA")
}

func TestPlanActionsBearishModeratePriority(t *testing.T) {
	provider := &stubProvider{snapshot: testSnapshot(-0.5, market.VolatilityLow)}
	a, _ := newTestAgent(provider, user.NewProfile("u1"))

	obs, err := a.observe(context.Background())
	require.NoError(t, err)
	thought := a.think(obs)

	assert.Equal(t, UrgencyMedium, thought.Urgency)
	assert.Equal(t, KindUIChange, thought.Actions[0].Kind)
	assert.Equal(t, 5, thought.Actions[0].Priority)
}

func TestPlanActionsNeutralMarketAdvancedUser(t *testing.T) {
	provider := &stubProvider{snapshot: testSnapshot(0.1, market.VolatilityLow)}
	profile := user.NewProfile("u1")
	profile.ExpertiseTier = user.TierAdvanced
	a, _ := newTestAgent(provider, profile)

	obs, err := a.observe(context.Background())
	require.NoError(t, err)
	thought := a.think(obs)

	require.Len(t, thought.Actions, 2) // mode_switch, content_update
	assert.Equal(t, KindModeSwitch, thought.Actions[0].Kind)
	assert.True(t, thought.Actions[0].ModeSwitch.ShowAdvancedMetrics)
	assert.Equal(t, KindContentUpdate, thought.Actions[1].Kind)
}

func TestActDeliversByDescendingPriority(t *testing.T) {
	provider := &stubProvider{snapshot: testSnapshot(-0.8, market.VolatilityHigh)}
	a, _ := newTestAgent(provider, user.NewProfile("u1"))

	var priorities []int
	a.Dispatcher().Subscribe(func(action Action) {
		priorities = append(priorities, action.Priority)
	})

	obs, err := a.observe(context.Background())
	require.NoError(t, err)
	a.act(a.think(obs).Actions)

	require.Equal(t, []int{10, 3, 2}, priorities)
}

func TestStartStopIdempotent(t *testing.T) {
	provider := &stubProvider{snapshot: testSnapshot(0.1, market.VolatilityLow)}
	a, clk := newTestAgent(provider, user.NewProfile("u1"))

	a.Start()
	a.Start()
	require.Eventually(t, func() bool {
		return a.State().CycleCount == 1
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		clk.Add(5 * time.Second)
		return a.State().CycleCount >= 2
	}, time.Second, 10*time.Millisecond)

	a.Stop()
	a.Stop()
	assert.False(t, a.Running())

	state := a.State()
	assert.GreaterOrEqual(t, state.CycleCount, uint64(2))
	assert.Nil(t, state.LastObservation)
	assert.Nil(t, state.LastThought)
	assert.Empty(t, state.RecentActions)
}

func TestCycleErrorRetainsPriorState(t *testing.T) {
	provider := &stubProvider{snapshot: testSnapshot(0.1, market.VolatilityLow)}
	a, _ := newTestAgent(provider, user.NewProfile("u1"))

	a.runCycle(context.Background())
	require.Equal(t, uint64(1), a.State().CycleCount)
	prior := a.State().LastObservation
	require.NotNil(t, prior)

	provider.mu.Lock()
	provider.err = errors.Wrap(errors.ErrNetwork, "provider down")
	provider.mu.Unlock()

	a.runCycle(context.Background())

	state := a.State()
	assert.Equal(t, uint64(1), state.CycleCount)
	assert.Equal(t, prior, state.LastObservation)
}

func TestRecentActionsBounded(t *testing.T) {
	provider := &stubProvider{snapshot: testSnapshot(-0.8, market.VolatilityHigh)}
	a, _ := newTestAgent(provider, user.NewProfile("u1"))

	for i := 0; i < 50; i++ {
		a.runCycle(context.Background())
	}

	assert.Len(t, a.State().RecentActions, maxRecentActions)
}

func TestActionValidate(t *testing.T) {
	valid := Action{
		Kind:         KindNotification,
		Notification: &NotificationPayload{Message: "break time"},
	}
	assert.NoError(t, valid.Validate())

	missing := Action{Kind: KindUIChange}
	assert.Error(t, missing.Validate())

	mismatched := Action{
		Kind:       KindUIChange,
		ModeSwitch: &ModeSwitchPayload{Mode: user.TierBeginner},
	}
	assert.Error(t, mismatched.Validate())

	doubled := Action{
		Kind:         KindNotification,
		Notification: &NotificationPayload{Message: "x"},
		UIChange:     &UIChangePayload{Theme: "red"},
	}
	assert.Error(t, doubled.Validate())

	assert.Error(t, Action{Kind: Kind("bogus")}.Validate())
}
