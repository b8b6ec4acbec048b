package layout

import (
	"context"

	"stocksense/pkg/errors"
)

// Category places a section in the dashboard shell
type Category string

const (
	CategoryHeader  Category = "header"
	CategoryMain    Category = "main"
	CategorySidebar Category = "sidebar"
	CategoryFooter  Category = "footer"
)

// Section is one toggleable dashboard region
type Section struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Visible     bool     `json:"visible"`
	Required    bool     `json:"required,omitempty"`
	Category    Category `json:"category"`
	Position    int      `json:"position"`
}

// Preset is a named visibility configuration
type Preset struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	TargetUser  string          `json:"targetUser"`
	Sections    map[string]bool `json:"sections"`
}

// Config is the persisted layout state
type Config struct {
	Sections []Section `json:"sections"`
	PresetID string    `json:"presetId,omitempty"`
}

// Repository persists the layout configuration blob
type Repository interface {
	Get(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}

// DefaultSections returns the built-in section set
func DefaultSections() []Section {
	return []Section{
		{ID: "search-bar", Name: "Search Bar", Description: "Search for stocks and financial terms", Visible: true, Required: true, Category: CategoryHeader, Position: 1},
		{ID: "user-level-indicator", Name: "Experience Level", Description: "Shows current user expertise level", Visible: true, Category: CategoryHeader, Position: 2},
		{ID: "theme-selector", Name: "Theme Selector", Description: "Switch between different visual themes", Visible: true, Category: CategoryHeader, Position: 3},
		{ID: "focus-tools", Name: "Focus Tools", Description: "Focus timer, break reminders, and attention tracking", Visible: true, Category: CategoryHeader, Position: 4},
		{ID: "ai-insights", Name: "AI Knowledge Insights", Description: "Analysis of your search patterns and recommendations", Visible: true, Category: CategoryMain, Position: 1},
		{ID: "stock-cards", Name: "Stock Information Cards", Description: "Main stock data and sentiment analysis", Visible: true, Required: true, Category: CategoryMain, Position: 2},
		{ID: "quick-controls", Name: "Quick Action Controls", Description: "Randomize stocks and other quick actions", Visible: true, Category: CategoryMain, Position: 3},
		{ID: "ai-agent-status", Name: "AI Assistant Status", Description: "Current agent activity and thoughts", Visible: true, Category: CategorySidebar, Position: 1},
		{ID: "user-profile", Name: "User Profile", Description: "Your expertise level and preferences", Visible: true, Category: CategorySidebar, Position: 2},
		{ID: "market-simulator", Name: "Market Simulator", Description: "Simulate different market conditions", Visible: true, Category: CategorySidebar, Position: 3},
		{ID: "advanced-controls", Name: "Advanced Settings", Description: "Additional configuration options", Visible: false, Category: CategorySidebar, Position: 4},
		{ID: "agent-activity-log", Name: "Agent Activity Log", Description: "Detailed log of agent actions", Visible: false, Category: CategorySidebar, Position: 5},
	}
}

// Presets returns the built-in layout presets
func Presets() []Preset {
	return []Preset{
		{
			ID: "full", Name: "Full Experience", Description: "All features and information visible", TargetUser: "advanced",
			Sections: allVisible(true),
		},
		{
			ID: "minimal", Name: "Minimal", Description: "Only essential elements for reduced clutter", TargetUser: "adhd",
			Sections: visibility("search-bar", "theme-selector", "focus-tools", "stock-cards", "ai-agent-status"),
		},
		{
			ID: "beginner", Name: "Beginner Friendly", Description: "Simplified layout with helpful guidance", TargetUser: "beginner",
			Sections: visibility("search-bar", "user-level-indicator", "ai-insights", "stock-cards", "quick-controls", "ai-agent-status", "user-profile"),
		},
		{
			ID: "focus", Name: "Focus Mode", Description: "Distraction-free stock analysis", TargetUser: "adhd",
			Sections: visibility("search-bar", "focus-tools", "stock-cards"),
		},
		{
			ID: "professional", Name: "Professional", Description: "Clean layout for serious analysis", TargetUser: "intermediate",
			Sections: visibility("search-bar", "user-level-indicator", "theme-selector", "focus-tools", "ai-insights", "stock-cards", "quick-controls", "ai-agent-status", "user-profile", "market-simulator"),
		},
	}
}

func allVisible(v bool) map[string]bool {
	out := make(map[string]bool)
	for _, s := range DefaultSections() {
		out[s.ID] = v
	}
	return out
}

func visibility(visibleIDs ...string) map[string]bool {
	out := allVisible(false)
	for _, id := range visibleIDs {
		out[id] = true
	}
	return out
}

// DefaultConfig returns the default layout configuration
func DefaultConfig() *Config {
	return &Config{Sections: DefaultSections()}
}

// Validate checks an imported configuration. Required sections must stay
// visible and section IDs must be known. This is the one place a
// user-supplied blob surfaces a structured error instead of a default.
func (c *Config) Validate() error {
	known := make(map[string]Section)
	for _, s := range DefaultSections() {
		known[s.ID] = s
	}
	if len(c.Sections) == 0 {
		return errors.NewValidationError("sections", "must not be empty", len(c.Sections))
	}
	for _, s := range c.Sections {
		def, ok := known[s.ID]
		if !ok {
			return errors.NewValidationError("sections", "unknown section id", s.ID)
		}
		if def.Required && !s.Visible {
			return errors.NewValidationError("sections", "required section cannot be hidden", s.ID)
		}
	}
	return nil
}

// ApplyPreset returns a config with visibility taken from the preset
func ApplyPreset(p Preset) *Config {
	cfg := DefaultConfig()
	for i := range cfg.Sections {
		if visible, ok := p.Sections[cfg.Sections[i].ID]; ok {
			// Required sections ignore preset hiding
			cfg.Sections[i].Visible = visible || cfg.Sections[i].Required
		}
	}
	cfg.PresetID = p.ID
	return cfg
}
