package bazaar

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"bazaar-flipper/internal/engine"
)

// FetchProductIDs fetches the list of tradeable product ids.
func (c *Client) FetchProductIDs() ([]string, error) {
	var resp struct {
		Success    bool     `json:"success"`
		ProductIDs []string `json:"productIds"`
	}
	if err := c.GetJSON("/skyblock/bazaar/products", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch product ids: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("fetch product ids: success=false")
	}
	return resp.ProductIDs, nil
}

// FetchProductPrice fetches the current instant buy price for a single product.
// Failed attempts retry after a fixed short delay.
func (c *Client) FetchProductPrice(id string) (float64, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(productRetryDelay)
		}
		var resp struct {
			Success     bool `json:"success"`
			ProductInfo struct {
				ProductID   string      `json:"product_id"`
				QuickStatus QuickStatus `json:"quick_status"`
			} `json:"product_info"`
		}
		params := url.Values{"productId": {id}}
		if err := c.GetJSON("/skyblock/bazaar/product", params, &resp); err != nil {
			lastErr = err
			continue
		}
		if !resp.Success {
			lastErr = fmt.Errorf("bazaar: success=false for %s", id)
			continue
		}
		return resp.ProductInfo.QuickStatus.BuyPrice, nil
	}
	return 0, fmt.Errorf("fetch price %s: %w", id, lastErr)
}

// FetchUnitPrices fetches unit prices for every minion-eligible product,
// spacing requests through the client's rate limiter. Products that keep
// failing are skipped rather than failing the whole refresh.
func (c *Client) FetchUnitPrices(ids []string, progress func(string)) map[string]float64 {
	prices := make(map[string]float64, len(ids))
	fetched := 0
	for _, id := range ids {
		if !engine.MinionEligible(id) {
			continue
		}
		if err := c.limiter.Wait(context.Background()); err != nil {
			break
		}
		price, err := c.FetchProductPrice(id)
		if err != nil {
			log.Printf("[DEBUG] FetchUnitPrices: skip %s: %v", id, err)
			continue
		}
		prices[id] = price
		fetched++
		if progress != nil && fetched%25 == 0 {
			progress(fmt.Sprintf("Fetched %d prices...", fetched))
		}
	}
	return prices
}
