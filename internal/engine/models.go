package engine

// Platform constants for the bazaar. The price tick is the smallest increment
// an order can be improved by; the per-order cap is the largest quantity a
// single standing order may hold.
const (
	PriceTick           = 0.1
	MaxQuantityPerOrder = 71680
)

// Offer is a single price level in an order book summary.
type Offer struct {
	PricePerUnit float64 `json:"pricePerUnit"`
	Quantity     int64   `json:"amount"`
}

// OrderBook is the per-item market snapshot the flip calculation runs on:
// standing offers and orders plus rolling weekly volume statistics.
type OrderBook struct {
	SellOffers     []Offer `json:"sell_offers"` // what others are selling at (we buy against these)
	BuyOrders      []Offer `json:"buy_orders"`  // what others want to buy at (we sell against these)
	SellVolume     int64   `json:"sell_volume"`
	SellMovingWeek int64   `json:"sell_moving_week"`
}

// FlipOpportunity represents a single buy-order/sell-offer round trip on one item.
type FlipOpportunity struct {
	ID                string  `json:"ID"`
	DisplayName       string  `json:"DisplayName"`
	SellPrice         float64 `json:"SellPrice"` // cheapest competing offer minus one tick
	BuyPrice          float64 `json:"BuyPrice"`  // highest competing order plus one tick
	ProfitPerItem     float64 `json:"ProfitPerItem"`
	SalesBacklogDays  float64 `json:"SalesBacklogDays"` // days of listed supply already queued ahead of us
	MaxQuantity       int64   `json:"MaxQuantity"`
	NumOffersRequired int     `json:"NumOffersRequired"`
	TotalProfit       float64 `json:"TotalProfit"`
}

// FlipParams holds the user-tunable inputs for a flip computation.
type FlipParams struct {
	MaxOutlay      float64  // coins available to spend on buy orders
	MaxOffers      int      // standing orders the user is willing to manage
	MaxBacklogDays float64  // reject items with more queued supply than this
	SortMode       SortMode // ordering of the included list
}

// Bucket labels the outcome of classifying a flip opportunity.
type Bucket int

const (
	BucketIncluded Bucket = iota
	BucketNotProfitable
	BucketNotAffordable
	BucketNotSellable
)

func (b Bucket) String() string {
	switch b {
	case BucketIncluded:
		return "included"
	case BucketNotProfitable:
		return "not_profitable"
	case BucketNotAffordable:
		return "not_affordable"
	case BucketNotSellable:
		return "not_sellable"
	}
	return "unknown"
}

// FlipReport is the full result of one flip computation: the included list
// ordered by the requested sort mode, plus the three exclusion lists with
// their fixed explanatory orderings.
type FlipReport struct {
	Included      []FlipOpportunity `json:"included"`
	NotProfitable []FlipOpportunity `json:"not_profitable"`
	NotAffordable []FlipOpportunity `json:"not_affordable"`
	NotSellable   []FlipOpportunity `json:"not_sellable"`
}

// SortMode selects the comparator for the included list.
type SortMode string

const (
	SortByName          SortMode = "name"
	SortByBacklog       SortMode = "backlog"
	SortByProfitPerItem SortMode = "profit_per_item"
	SortByTotalProfit   SortMode = "total_profit"
)

// ParseSortMode maps a config string to a SortMode, defaulting to total profit.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortByName, SortByBacklog, SortByProfitPerItem:
		return SortMode(s)
	}
	return SortByTotalProfit
}
