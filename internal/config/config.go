package config

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	// Flip scan parameters.
	MaxOutlay      float64 `json:"max_outlay"`       // coins available for buy orders
	MaxOffers      int     `json:"max_offers"`       // standing orders the user will manage
	MaxBacklogDays float64 `json:"max_backlog_days"` // reject items queued longer than this
	SortMode       string  `json:"sort_mode"`        // name | backlog | profit_per_item | total_profit

	// Minion revenue parameters.
	ActionTimeSeconds float64 `json:"action_time_seconds"`
	ItemsPerAction    int     `json:"items_per_action"`
	MinionSortMode    string  `json:"minion_sort_mode"` // unit_price | name
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		MaxOutlay:         1_000_000,
		MaxOffers:         1,
		MaxBacklogDays:    7,
		SortMode:          "total_profit",
		ActionTimeSeconds: 10,
		ItemsPerAction:    1,
		MinionSortMode:    "unit_price",
	}
}

// Normalize clamps out-of-range values back to usable settings.
func (c *Config) Normalize() {
	if c.MaxOutlay < 0 {
		c.MaxOutlay = 0
	}
	if c.MaxOffers < 1 {
		c.MaxOffers = 1
	}
	if c.MaxBacklogDays < 0 {
		c.MaxBacklogDays = 0
	}
	if c.ActionTimeSeconds <= 0 {
		c.ActionTimeSeconds = Default().ActionTimeSeconds
	}
	if c.ItemsPerAction < 1 {
		c.ItemsPerAction = 1
	}
}
