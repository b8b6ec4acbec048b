// Package focus runs the Pomodoro-style session timer and attention
// tracking behind the dashboard's focus tools.
package focus

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"stocksense/internal/domain/focus"
	"stocksense/internal/metrics"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

const (
	chainDelay    = 2 * time.Second
	scoreInterval = 30 * time.Second
)

// Notification is pushed to subscribers on timer events
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	Session *focus.Session   `json:"session,omitempty"`
}

// NotificationKind enumerates timer events
type NotificationKind string

const (
	NotifySessionComplete NotificationKind = "session_complete"
	NotifyBreakReminder   NotificationKind = "break_reminder"
	NotifyWorkPrompt      NotificationKind = "work_prompt"
)

type subscriber struct {
	id uint64
	fn func(Notification)
}

// Service owns the single current session, the countdown, attention
// metrics and session history. All time flows through the injected
// clock.
type Service struct {
	repo     focus.Repository
	clock    clock.Clock
	defaults focus.Settings
	log      *logger.Logger

	mu            sync.Mutex
	settings      focus.Settings
	current       *focus.Session
	remaining     int // seconds
	completedWork int // work sessions since the last long break
	attention     focus.AttentionMetrics
	lastBreakAt   time.Time
	chainTimer    *clock.Timer

	subs   []subscriber
	nextID uint64

	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewService builds the timer around repo. defaults seed the settings
// when the repository has none persisted yet.
func NewService(repo focus.Repository, clk clock.Clock, defaults focus.Settings) *Service {
	if clk == nil {
		clk = clock.New()
	}
	if defaults.WorkMinutes <= 0 {
		defaults = focus.DefaultSettings()
	}
	return &Service{
		repo:     repo,
		clock:    clk,
		defaults: defaults,
		log:      logger.Get().With("component", "focus"),
	}
}

// Start loads settings and arms the countdown ticker. Starting a
// running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			s.log.Warnw("failed to load focus settings, using defaults", "error", err)
		}
		settings = s.defaults
	}
	s.settings = settings
	s.attention = focus.AttentionMetrics{LastActivity: s.clock.Now(), FocusScore: 100}
	s.lastBreakAt = s.clock.Now()

	runCtx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.run(runCtx, done)
	s.log.Info("focus tracker started")
	return nil
}

// Stop disarms the countdown. The current session, if any, stays current
// so a restart resumes its countdown. Stopping a stopped service is a
// no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	if s.chainTimer != nil {
		s.chainTimer.Stop()
		s.chainTimer = nil
	}
	s.mu.Unlock()

	cancel()
	<-done
	s.log.Info("focus tracker stopped")
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	countdown := s.clock.Ticker(time.Second)
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-countdown.C:
			s.tick(ctx)
		}
	}
}

// RecomputeScore refreshes the attention score and fires a break
// reminder when one is due. Called periodically by the focus score
// worker.
func (s *Service) RecomputeScore() {
	s.recomputeScore()
	s.maybeRemindBreak()
}

// StartSession begins a session of the given kind. A running session
// is ended as interrupted and persisted first.
func (s *Service) StartSession(ctx context.Context, kind focus.SessionKind) (*focus.Session, error) {
	if !kind.Valid() {
		return nil, errors.NewValidationError("kind", "unknown session kind", string(kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		if err := s.closeCurrentLocked(ctx, false); err != nil {
			return nil, err
		}
	}
	if s.chainTimer != nil {
		s.chainTimer.Stop()
		s.chainTimer = nil
	}

	duration := s.settings.DurationFor(kind)
	session := &focus.Session{
		ID:        uuid.NewString(),
		StartTime: s.clock.Now(),
		Duration:  duration,
		Kind:      kind,
	}
	s.current = session
	s.remaining = duration * 60

	s.log.Infow("focus session started", "kind", kind, "minutes", duration)
	out := *session
	return &out, nil
}

// StopSession ends the current session as interrupted
func (s *Service) StopSession(ctx context.Context) (*focus.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, errors.ErrNoActiveSession
	}

	closed := *s.current
	if err := s.closeCurrentLocked(ctx, false); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	closed.EndTime = &now
	closed.Interrupted = true
	return &closed, nil
}

// Current returns a copy of the running session and its remaining
// seconds, or nil when idle
func (s *Service) Current() (*focus.Session, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, 0
	}
	out := *s.current
	return &out, s.remaining
}

// Settings returns the active timer settings
func (s *Service) Settings() focus.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings validates, applies and persists new settings
func (s *Service) UpdateSettings(ctx context.Context, settings focus.Settings) error {
	if settings.WorkMinutes <= 0 || settings.ShortBreakMinutes <= 0 || settings.LongBreakMinutes <= 0 {
		return errors.NewValidationError("durations", "must be positive", settings)
	}
	if settings.SessionsUntilLongBreak <= 0 {
		return errors.NewValidationError("sessionsUntilLongBreak", "must be positive", settings.SessionsUntilLongBreak)
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Subscribe registers a notification subscriber and returns its
// disposer
func (s *Service) Subscribe(fn func(Notification)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// tick advances the countdown by one second
func (s *Service) tick(ctx context.Context) {
	s.mu.Lock()

	if s.current == nil {
		s.mu.Unlock()
		return
	}

	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}

	completed := *s.current
	now := s.clock.Now()
	completed.EndTime = &now
	completed.Completed = true

	s.current = nil
	s.remaining = 0
	if completed.Kind == focus.KindWork {
		s.completedWork++
	} else {
		s.lastBreakAt = now
		s.completedWork = s.completedWorkAfterBreak(completed.Kind)
	}

	if err := s.repo.AppendHistory(ctx, completed); err != nil {
		s.log.Errorw("failed to persist completed session", "error", err)
	}
	metrics.FocusSessions.WithLabelValues(string(completed.Kind), "completed").Inc()

	autoChain := s.settings.AutoChain
	s.mu.Unlock()

	s.log.Infow("focus session completed", "kind", completed.Kind)
	s.notify(Notification{
		Kind:    NotifySessionComplete,
		Message: completionMessage(completed.Kind),
		Session: &completed,
	})

	if autoChain {
		s.scheduleChain(completed.Kind)
	}
}

func (s *Service) completedWorkAfterBreak(kind focus.SessionKind) int {
	if kind == focus.KindLongBreak {
		return 0
	}
	return s.completedWork
}

// scheduleChain arms the follow-up transition after a short delay
func (s *Service) scheduleChain(finished focus.SessionKind) {
	s.mu.Lock()
	if s.chainTimer != nil {
		s.chainTimer.Stop()
	}
	s.chainTimer = s.clock.AfterFunc(chainDelay, func() {
		s.chain(finished)
	})
	s.mu.Unlock()
}

func (s *Service) chain(finished focus.SessionKind) {
	ctx := context.Background()

	if finished == focus.KindWork {
		next := focus.KindBreak
		s.mu.Lock()
		untilLong := s.settings.SessionsUntilLongBreak
		count := s.completedWork
		s.mu.Unlock()
		if untilLong > 0 && count%untilLong == 0 {
			next = focus.KindLongBreak
		}
		if _, err := s.StartSession(ctx, next); err != nil {
			s.log.Errorw("failed to chain into break", "error", err)
		}
		return
	}

	// breaks prompt rather than force the next work session
	s.notify(Notification{
		Kind:    NotifyWorkPrompt,
		Message: "Break finished. Ready for another focus session?",
	})
}

func (s *Service) notify(n Notification) {
	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		s.deliver(sub, n)
	}
}

func (s *Service) deliver(sub subscriber, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("notification subscriber panicked", "subscription", sub.id, "panic", r)
		}
	}()
	sub.fn(n)
}

func (s *Service) closeCurrentLocked(ctx context.Context, completed bool) error {
	session := *s.current
	now := s.clock.Now()
	session.EndTime = &now
	session.Completed = completed
	session.Interrupted = !completed

	s.current = nil
	s.remaining = 0

	if session.Kind != focus.KindWork {
		s.lastBreakAt = now
	}

	if err := s.repo.AppendHistory(ctx, session); err != nil {
		return errors.Wrap(err, "failed to persist interrupted session")
	}
	metrics.FocusSessions.WithLabelValues(string(session.Kind), "interrupted").Inc()
	s.log.Infow("focus session interrupted", "kind", session.Kind)
	return nil
}

// maybeRemindBreak emits a reminder when work has gone on past the
// configured interval without a break
func (s *Service) maybeRemindBreak() {
	s.mu.Lock()
	if !s.settings.BreakReminders || (s.current != nil && s.current.Kind != focus.KindWork) {
		s.mu.Unlock()
		return
	}
	interval := time.Duration(s.settings.BreakIntervalMinutes) * time.Minute
	if interval <= 0 || s.clock.Now().Sub(s.lastBreakAt) < interval {
		s.mu.Unlock()
		return
	}
	s.lastBreakAt = s.clock.Now()
	s.mu.Unlock()

	s.notify(Notification{
		Kind:    NotifyBreakReminder,
		Message: "You've been focused for a while. Time for a short break?",
	})
}

func completionMessage(kind focus.SessionKind) string {
	switch kind {
	case focus.KindWork:
		return "Focus session complete. Great work!"
	case focus.KindLongBreak:
		return "Long break finished."
	default:
		return "Break finished."
	}
}
