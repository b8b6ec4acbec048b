package agent

import (
	"time"

	"stocksense/internal/domain/user"
	"stocksense/pkg/errors"
)

// Kind is the action variant dispatched to dashboard subscribers
type Kind string

const (
	KindUIChange      Kind = "ui_change"
	KindNotification  Kind = "notification"
	KindModeSwitch    Kind = "mode_switch"
	KindContentUpdate Kind = "content_update"
)

// Valid reports whether the kind is one of the enumerated variants
func (k Kind) Valid() bool {
	switch k {
	case KindUIChange, KindNotification, KindModeSwitch, KindContentUpdate:
		return true
	}
	return false
}

// UIChangePayload asks the dashboard to restyle itself
type UIChangePayload struct {
	Theme   string `json:"theme"`
	Message string `json:"message"`
}

// NotificationPayload carries a user-facing message
type NotificationPayload struct {
	Message string `json:"message"`
}

// ModeSwitchPayload asks the dashboard to change its presentation mode
type ModeSwitchPayload struct {
	Mode                user.ExpertiseTier `json:"mode"`
	ShowTooltips        bool               `json:"showTooltips,omitempty"`
	ShowAdvancedMetrics bool               `json:"showAdvancedMetrics,omitempty"`
}

// ContentUpdatePayload refreshes the dashboard analysis panel
type ContentUpdatePayload struct {
	MarketAnalysis string    `json:"marketAnalysis"`
	UserAnalysis   string    `json:"userAnalysis"`
	Timestamp      time.Time `json:"timestamp"`
}

// Action is one instruction from the agent to the dashboard. Exactly
// one payload field matching Kind is set.
type Action struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Target    string    `json:"target"`
	Priority  int       `json:"priority"`
	Timestamp time.Time `json:"timestamp"`

	UIChange      *UIChangePayload      `json:"uiChange,omitempty"`
	Notification  *NotificationPayload  `json:"notification,omitempty"`
	ModeSwitch    *ModeSwitchPayload    `json:"modeSwitch,omitempty"`
	ContentUpdate *ContentUpdatePayload `json:"contentUpdate,omitempty"`
}

// Validate checks that the action carries exactly the payload its kind
// declares
func (a Action) Validate() error {
	if !a.Kind.Valid() {
		return errors.NewValidationError("kind", "unknown action kind", string(a.Kind))
	}

	set := 0
	var match bool
	if a.UIChange != nil {
		set++
		match = match || a.Kind == KindUIChange
	}
	if a.Notification != nil {
		set++
		match = match || a.Kind == KindNotification
	}
	if a.ModeSwitch != nil {
		set++
		match = match || a.Kind == KindModeSwitch
	}
	if a.ContentUpdate != nil {
		set++
		match = match || a.Kind == KindContentUpdate
	}

	if set != 1 || !match {
		return errors.NewValidationError("payload", "payload must match action kind", string(a.Kind))
	}
	return nil
}
