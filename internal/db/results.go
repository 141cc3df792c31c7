package db

import (
	"log"
	"time"

	"bazaar-flipper/internal/engine"
)

// ScanRecord represents a flip scan history entry.
type ScanRecord struct {
	ID        int64   `json:"id"`
	Timestamp string  `json:"timestamp"`
	SortMode  string  `json:"sort_mode"`
	Count     int     `json:"count"`
	TopProfit float64 `json:"top_profit"`
}

// InsertScan inserts a scan history record and returns its ID.
func (d *DB) InsertScan(sortMode string, count int, topProfit float64) int64 {
	result, err := d.sql.Exec(
		"INSERT INTO scan_history (timestamp, sort_mode, count, top_profit) VALUES (?, ?, ?, ?)",
		time.Now().Format(time.RFC3339), sortMode, count, topProfit,
	)
	if err != nil {
		return 0
	}
	id, _ := result.LastInsertId()
	return id
}

// GetScans returns the last N scan history records (newest first).
func (d *DB) GetScans(limit int) []ScanRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		"SELECT id, timestamp, sort_mode, count, top_profit FROM scan_history ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return []ScanRecord{}
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		rows.Scan(&r.ID, &r.Timestamp, &r.SortMode, &r.Count, &r.TopProfit)
		records = append(records, r)
	}
	return records
}

// InsertFlipResults bulk-inserts the included flips linked to a scan record.
func (d *DB) InsertFlipResults(scanID int64, results []engine.FlipOpportunity) {
	if scanID == 0 || len(results) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertFlipResults begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO flip_results (
		scan_id, product_id, display_name,
		buy_price, sell_price, profit_per_item, sales_backlog_days,
		max_quantity, num_offers_required, total_profit
	) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertFlipResults prepare: %v", err)
		return
	}
	defer stmt.Close()

	for _, r := range results {
		stmt.Exec(
			scanID, r.ID, r.DisplayName,
			r.BuyPrice, r.SellPrice, r.ProfitPerItem, r.SalesBacklogDays,
			r.MaxQuantity, r.NumOffersRequired, r.TotalProfit,
		)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertFlipResults commit: %v", err)
	}
}

// GetFlipResults retrieves the stored flips for a scan.
func (d *DB) GetFlipResults(scanID int64) []engine.FlipOpportunity {
	rows, err := d.sql.Query(`
		SELECT product_id, display_name,
			buy_price, sell_price, profit_per_item, sales_backlog_days,
			max_quantity, num_offers_required, total_profit
		FROM flip_results WHERE scan_id = ?
	`, scanID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var results []engine.FlipOpportunity
	for rows.Next() {
		var r engine.FlipOpportunity
		rows.Scan(
			&r.ID, &r.DisplayName,
			&r.BuyPrice, &r.SellPrice, &r.ProfitPerItem, &r.SalesBacklogDays,
			&r.MaxQuantity, &r.NumOffersRequired, &r.TotalProfit,
		)
		results = append(results, r)
	}
	return results
}
