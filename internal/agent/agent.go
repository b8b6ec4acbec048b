// Package agent implements the observe-think-act loop driving the
// dashboard. Each cycle reads a market snapshot and the tracked user
// profile, derives narratives and urgency, and dispatches prioritized
// actions to subscribers.
package agent

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"stocksense/internal/domain/market"
	"stocksense/internal/domain/user"
	"stocksense/internal/metrics"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// maxRecentActions bounds the retained action history
const maxRecentActions = 100

// ProfileSource supplies the tracked user profile for observation
type ProfileSource interface {
	Profile(ctx context.Context) (*user.Profile, error)
}

// Observation is one cycle's view of the world
type Observation struct {
	Snapshot  *market.Snapshot `json:"snapshot"`
	User      *user.Profile    `json:"user"`
	Timestamp time.Time        `json:"timestamp"`
}

// Thought is the plan derived from an observation
type Thought struct {
	MarketAnalysis  string   `json:"marketAnalysis"`
	UserAnalysis    string   `json:"userAnalysis"`
	Recommendations []string `json:"recommendations"`
	Urgency         Urgency  `json:"urgency"`
	Actions         []Action `json:"actions"`
}

// State is a copy of the agent's externally visible state
type State struct {
	Active          bool         `json:"active"`
	CycleCount      uint64       `json:"cycleCount"`
	LastObservation *Observation `json:"lastObservation,omitempty"`
	LastThought     *Thought     `json:"lastThought,omitempty"`
	RecentActions   []Action     `json:"recentActions"`
}

// Agent runs the periodic cycle. Start and Stop are idempotent; a
// failed cycle is logged and the previous observation kept.
type Agent struct {
	provider   market.Provider
	profiles   ProfileSource
	dispatcher *Dispatcher
	clock      clock.Clock
	interval   time.Duration
	log        *logger.Logger

	mu              sync.Mutex
	running         bool
	cancel          context.CancelFunc
	done            chan struct{}
	cycleCount      uint64
	lastObservation *Observation
	lastThought     *Thought
	recentActions   []Action
}

func New(provider market.Provider, profiles ProfileSource, dispatcher *Dispatcher, clk clock.Clock, interval time.Duration) *Agent {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Agent{
		provider:   provider,
		profiles:   profiles,
		dispatcher: dispatcher,
		clock:      clk,
		interval:   interval,
		log:        logger.Get().With("component", "agent"),
	}
}

// Dispatcher exposes the action dispatcher for subscribers
func (a *Agent) Dispatcher() *Dispatcher {
	return a.dispatcher
}

// Start arms the cycle ticker and runs an immediate cycle.
// Starting a running agent is a no-op.
func (a *Agent) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.running = true
	a.cancel = cancel
	a.done = make(chan struct{})
	done := a.done
	a.mu.Unlock()

	a.log.Info("agent activated")

	go func() {
		defer close(done)

		a.runCycle(ctx)

		ticker := a.clock.Ticker(a.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runCycle(ctx)
			}
		}
	}()
}

// Stop cancels the ticker and clears transient cycle state, keeping
// the cycle counter. Stopping a stopped agent is a no-op.
func (a *Agent) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	cancel := a.cancel
	done := a.done
	a.mu.Unlock()

	cancel()
	<-done

	a.mu.Lock()
	a.lastObservation = nil
	a.lastThought = nil
	a.recentActions = nil
	a.mu.Unlock()

	a.log.Info("agent deactivated")
}

// Running reports whether the cycle ticker is armed
func (a *Agent) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// State returns a copy of the current agent state
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return State{
		Active:          a.running,
		CycleCount:      a.cycleCount,
		LastObservation: a.lastObservation,
		LastThought:     a.lastThought,
		RecentActions:   append([]Action(nil), a.recentActions...),
	}
}

func (a *Agent) runCycle(ctx context.Context) {
	started := a.clock.Now()

	observation, err := a.observe(ctx)
	if err != nil {
		a.log.Errorw("agent cycle failed", "error", err)
		metrics.AgentCycles.WithLabelValues("error").Inc()
		return
	}

	thought := a.think(observation)
	a.act(thought.Actions)

	a.mu.Lock()
	a.cycleCount++
	a.lastObservation = observation
	a.lastThought = thought
	count := a.cycleCount
	a.mu.Unlock()

	metrics.AgentCycles.WithLabelValues("success").Inc()
	metrics.AgentCycleDuration.Observe(a.clock.Now().Sub(started).Seconds())
	a.log.Debugw("agent cycle completed", "cycle", count, "urgency", thought.Urgency, "actions", len(thought.Actions))
}

// observe gathers the market snapshot and the user profile. Any error
// aborts the cycle with prior state retained.
func (a *Agent) observe(ctx context.Context) (*Observation, error) {
	snapshot, err := a.provider.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to observe market")
	}

	profile, err := a.profiles.Profile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to observe user")
	}

	return &Observation{
		Snapshot:  snapshot,
		User:      profile,
		Timestamp: a.clock.Now(),
	}, nil
}

// think derives narratives, urgency and planned actions
func (a *Agent) think(obs *Observation) *Thought {
	marketAnalysis := analyzeMarket(obs.Snapshot)
	userAnalysis := analyzeUser(obs.User)
	urgency := urgencyFor(obs.Snapshot.Condition)

	return &Thought{
		MarketAnalysis:  marketAnalysis,
		UserAnalysis:    userAnalysis,
		Recommendations: recommendations(obs.Snapshot, obs.User),
		Urgency:         urgency,
		Actions:         a.planActions(obs, marketAnalysis, userAnalysis, urgency),
	}
}

// planActions maps the analysis onto concrete dashboard actions
func (a *Agent) planActions(obs *Observation, marketAnalysis, userAnalysis string, urgency Urgency) []Action {
	now := a.clock.Now()
	var actions []Action

	if obs.Snapshot.Condition.Overall.Score < -0.3 {
		priority := 5
		if urgency == UrgencyHigh {
			priority = 10
		}
		actions = append(actions, Action{
			ID:        uuid.NewString(),
			Kind:      KindUIChange,
			Target:    "theme",
			Priority:  priority,
			Timestamp: now,
			UIChange: &UIChangePayload{
				Theme:   "red",
				Message: "Market Alert: Bearish conditions detected",
			},
		})
	}

	switch obs.User.ExpertiseTier {
	case user.TierBeginner:
		actions = append(actions, Action{
			ID:        uuid.NewString(),
			Kind:      KindModeSwitch,
			Target:    "interface",
			Priority:  3,
			Timestamp: now,
			ModeSwitch: &ModeSwitchPayload{
				Mode:         user.TierBeginner,
				ShowTooltips: true,
			},
		})
	case user.TierAdvanced:
		actions = append(actions, Action{
			ID:        uuid.NewString(),
			Kind:      KindModeSwitch,
			Target:    "interface",
			Priority:  3,
			Timestamp: now,
			ModeSwitch: &ModeSwitchPayload{
				Mode:                user.TierAdvanced,
				ShowAdvancedMetrics: true,
			},
		})
	}

	actions = append(actions, Action{
		ID:        uuid.NewString(),
		Kind:      KindContentUpdate,
		Target:    "dashboard",
		Priority:  2,
		Timestamp: now,
		ContentUpdate: &ContentUpdatePayload{
			MarketAnalysis: marketAnalysis,
			UserAnalysis:   userAnalysis,
			Timestamp:      now,
		},
	})

	return actions
}

// act delivers actions through the dispatcher in non-increasing
// priority order, ties keeping their planned order
func (a *Agent) act(actions []Action) {
	sorted := append([]Action(nil), actions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	for _, action := range sorted {
		a.dispatcher.Dispatch(action)
		metrics.ActionsDispatched.WithLabelValues(string(action.Kind)).Inc()
	}

	a.mu.Lock()
	a.recentActions = append(a.recentActions, sorted...)
	if len(a.recentActions) > maxRecentActions {
		a.recentActions = a.recentActions[len(a.recentActions)-maxRecentActions:]
	}
	a.mu.Unlock()
}
