package db

import (
	"fmt"
	"time"
)

const priceRefreshKey = "prices_last_refresh"

// SavePrices replaces the cached price map and records the refresh time, so
// the minion view can be rendered at cold start without a network round trip.
func (d *DB) SavePrices(prices map[string]float64, refreshedAt time.Time) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM prices"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear prices: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO prices (product_id, buy_price) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for id, price := range prices {
		if _, err := stmt.Exec(id, price); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		priceRefreshKey, refreshedAt.UTC().Format(time.RFC3339),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("store refresh time: %w", err)
	}
	return tx.Commit()
}

// LoadPrices returns the cached price map and when it was last refreshed.
// An empty map and zero time mean no cache exists yet.
func (d *DB) LoadPrices() (map[string]float64, time.Time) {
	prices := make(map[string]float64)

	rows, err := d.sql.Query("SELECT product_id, buy_price FROM prices")
	if err != nil {
		return prices, time.Time{}
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var price float64
		rows.Scan(&id, &price)
		prices[id] = price
	}

	var refreshStr string
	d.sql.QueryRow("SELECT value FROM meta WHERE key = ?", priceRefreshKey).Scan(&refreshStr)
	refreshedAt, _ := time.Parse(time.RFC3339, refreshStr)
	return prices, refreshedAt
}
