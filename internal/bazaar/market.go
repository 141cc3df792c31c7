package bazaar

import (
	"fmt"
	"log"
	"time"

	"bazaar-flipper/internal/engine"
)

// OrderSummary is one aggregated price level in a product's order book.
type OrderSummary struct {
	Amount       int64   `json:"amount"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Orders       int     `json:"orders"`
}

// QuickStatus carries a product's rolling market statistics.
type QuickStatus struct {
	BuyPrice       float64 `json:"buyPrice"`
	SellPrice      float64 `json:"sellPrice"`
	BuyVolume      int64   `json:"buyVolume"`
	SellVolume     int64   `json:"sellVolume"`
	BuyMovingWeek  int64   `json:"buyMovingWeek"`
	SellMovingWeek int64   `json:"sellMovingWeek"`
}

// Product mirrors one entry of the bazaar API response. The field naming is
// back-to-front from the trader's perspective: "buy_summary" lists standing
// sell offers (what you buy against) and "sell_summary" lists standing buy
// orders (what you sell against).
type Product struct {
	ProductID   string         `json:"product_id"`
	BuySummary  []OrderSummary `json:"buy_summary"`
	SellSummary []OrderSummary `json:"sell_summary"`
	QuickStatus QuickStatus    `json:"quick_status"`
}

// OrderBook converts the raw API product into the engine's trader-perspective
// order book.
func (p Product) OrderBook() engine.OrderBook {
	book := engine.OrderBook{
		SellVolume:     p.QuickStatus.SellVolume,
		SellMovingWeek: p.QuickStatus.SellMovingWeek,
	}
	for _, s := range p.BuySummary {
		book.SellOffers = append(book.SellOffers, engine.Offer{PricePerUnit: s.PricePerUnit, Quantity: s.Amount})
	}
	for _, s := range p.SellSummary {
		book.BuyOrders = append(book.BuyOrders, engine.Offer{PricePerUnit: s.PricePerUnit, Quantity: s.Amount})
	}
	return book
}

// Snapshot is one full fetch of the bazaar market.
type Snapshot struct {
	Products  map[string]Product
	FetchedAt time.Time
}

// OrderBooks converts all products into engine order books keyed by item id.
func (s *Snapshot) OrderBooks() map[string]engine.OrderBook {
	books := make(map[string]engine.OrderBook, len(s.Products))
	for id, p := range s.Products {
		books[id] = p.OrderBook()
	}
	return books
}

// UnitPrices extracts the per-item instant buy price, the field the minion
// report values output against.
func (s *Snapshot) UnitPrices() map[string]float64 {
	prices := make(map[string]float64, len(s.Products))
	for id, p := range s.Products {
		prices[id] = p.QuickStatus.BuyPrice
	}
	return prices
}

type bazaarResponse struct {
	Success     bool               `json:"success"`
	LastUpdated int64              `json:"lastUpdated"`
	Products    map[string]Product `json:"products"`
}

// FetchSnapshot fetches the full market snapshot. Failed attempts (network
// error or success=false) retry after a fixed delay up to maxFetchAttempts.
func (c *Client) FetchSnapshot() (*Snapshot, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(snapshotRetryDelay)
		}
		var resp bazaarResponse
		if err := c.GetJSON("/skyblock/bazaar", nil, &resp); err != nil {
			lastErr = err
			log.Printf("[DEBUG] FetchSnapshot attempt %d: %v", attempt, err)
			continue
		}
		if !resp.Success {
			lastErr = fmt.Errorf("bazaar: success=false")
			continue
		}
		return &Snapshot{Products: resp.Products, FetchedAt: time.Now()}, nil
	}
	return nil, fmt.Errorf("fetch snapshot: %w", lastErr)
}

// FetchSnapshotCached returns the cached snapshot when fresh, otherwise
// fetches a new one. Concurrent refreshes for an expired snapshot are
// coalesced into a single API call.
func (c *Client) FetchSnapshotCached() (*Snapshot, error) {
	return c.snapshots.Fetch(c.FetchSnapshot)
}
