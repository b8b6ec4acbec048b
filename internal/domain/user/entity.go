package user

import (
	"time"
)

// Bounded log capacities. Oldest entries are evicted first.
const (
	MaxSearchHistory    = 50
	MaxClickEvents      = 100
	MaxPreferredSectors = 5
)

// ExpertiseTier drives how much detail the dashboard surfaces
type ExpertiseTier string

const (
	TierBeginner     ExpertiseTier = "beginner"
	TierIntermediate ExpertiseTier = "intermediate"
	TierAdvanced     ExpertiseTier = "advanced"
)

// Valid reports whether the tier is one of the enumerated variants
func (t ExpertiseTier) Valid() bool {
	switch t {
	case TierBeginner, TierIntermediate, TierAdvanced:
		return true
	}
	return false
}

// ClickEvent records one tracked interaction
type ClickEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Element   string    `json:"element"`
	Section   string    `json:"section"`
}

// Profile is the tracked behavioral profile of a dashboard user.
// All mutation goes through the tracking service, which persists the
// profile after every change.
type Profile struct {
	ID               string                   `json:"id"`
	ExpertiseTier    ExpertiseTier            `json:"expertiseTier"`
	SearchHistory    []string                 `json:"searchHistory"`
	ClickEvents      []ClickEvent             `json:"clickEvents"`
	TimeSpent        map[string]time.Duration `json:"timeSpent"` // per section
	PreferredSectors []string                 `json:"preferredSectors"`
	LastActive       time.Time                `json:"lastActive"`
}

// NewProfile creates a fresh beginner profile
func NewProfile(id string) *Profile {
	return &Profile{
		ID:            id,
		ExpertiseTier: TierBeginner,
		TimeSpent:     make(map[string]time.Duration),
		LastActive:    time.Now(),
	}
}

// AppendSearch appends a search term, evicting the oldest past the cap
func (p *Profile) AppendSearch(term string) {
	p.SearchHistory = appendBounded(p.SearchHistory, term, MaxSearchHistory)
}

// AppendClick appends a click event, evicting the oldest past the cap
func (p *Profile) AppendClick(ev ClickEvent) {
	p.ClickEvents = appendBounded(p.ClickEvents, ev, MaxClickEvents)
}

// AddPreferredSector records a sector preference if not already present,
// evicting the oldest past the cap
func (p *Profile) AddPreferredSector(sector string) {
	for _, s := range p.PreferredSectors {
		if s == sector {
			return
		}
	}
	p.PreferredSectors = appendBounded(p.PreferredSectors, sector, MaxPreferredSectors)
}

// AddTimeSpent accumulates time spent on a dashboard section
func (p *Profile) AddTimeSpent(section string, d time.Duration) {
	if p.TimeSpent == nil {
		p.TimeSpent = make(map[string]time.Duration)
	}
	p.TimeSpent[section] += d
}

// Clone returns a deep copy safe to hand to other goroutines
func (p *Profile) Clone() *Profile {
	out := *p
	out.SearchHistory = append([]string(nil), p.SearchHistory...)
	out.ClickEvents = append([]ClickEvent(nil), p.ClickEvents...)
	out.PreferredSectors = append([]string(nil), p.PreferredSectors...)
	out.TimeSpent = make(map[string]time.Duration, len(p.TimeSpent))
	for k, v := range p.TimeSpent {
		out.TimeSpent[k] = v
	}
	return &out
}

func appendBounded[T any](log []T, item T, max int) []T {
	log = append(log, item)
	if len(log) > max {
		log = log[len(log)-max:]
	}
	return log
}
