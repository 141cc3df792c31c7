package db

import (
	"fmt"
	"strconv"

	"bazaar-flipper/internal/config"
)

// LoadConfig reads config from SQLite. If empty, returns defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if len(m) == 0 {
		return cfg
	}

	if v, ok := m["max_outlay"]; ok {
		cfg.MaxOutlay, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["max_offers"]; ok {
		cfg.MaxOffers, _ = strconv.Atoi(v)
	}
	if v, ok := m["max_backlog_days"]; ok {
		cfg.MaxBacklogDays, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["sort_mode"]; ok {
		cfg.SortMode = v
	}
	if v, ok := m["action_time_seconds"]; ok {
		cfg.ActionTimeSeconds, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["items_per_action"]; ok {
		cfg.ItemsPerAction, _ = strconv.Atoi(v)
	}
	if v, ok := m["minion_sort_mode"]; ok {
		cfg.MinionSortMode = v
	}

	cfg.Normalize()
	return cfg
}

// SaveConfig writes config to SQLite (upsert all fields).
func (d *DB) SaveConfig(cfg *config.Config) error {
	pairs := map[string]string{
		"max_outlay":          fmt.Sprintf("%g", cfg.MaxOutlay),
		"max_offers":          strconv.Itoa(cfg.MaxOffers),
		"max_backlog_days":    fmt.Sprintf("%g", cfg.MaxBacklogDays),
		"sort_mode":           cfg.SortMode,
		"action_time_seconds": fmt.Sprintf("%g", cfg.ActionTimeSeconds),
		"items_per_action":    strconv.Itoa(cfg.ItemsPerAction),
		"minion_sort_mode":    cfg.MinionSortMode,
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for k, v := range pairs {
		if _, err := stmt.Exec(k, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}
	return tx.Commit()
}
