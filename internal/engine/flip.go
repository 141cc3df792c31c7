package engine

import (
	"math"
	"sort"
)

// Evaluate computes the flip opportunity for a single item. Items with an
// empty side of the book are untradeable and return ok=false; everything else
// produces a fully populated opportunity, classification happens separately.
func Evaluate(id string, book OrderBook, params FlipParams) (FlipOpportunity, bool) {
	if len(book.SellOffers) == 0 || len(book.BuyOrders) == 0 {
		return FlipOpportunity{}, false
	}

	lowestSellOffer := book.SellOffers[0].PricePerUnit
	for _, o := range book.SellOffers[1:] {
		if o.PricePerUnit < lowestSellOffer {
			lowestSellOffer = o.PricePerUnit
		}
	}
	highestBuyOrder := book.BuyOrders[0].PricePerUnit
	for _, o := range book.BuyOrders[1:] {
		if o.PricePerUnit > highestBuyOrder {
			highestBuyOrder = o.PricePerUnit
		}
	}

	// Undercut the competition on both sides by one tick: sell just below the
	// cheapest offer, buy just above the highest order.
	op := FlipOpportunity{
		ID:          id,
		DisplayName: DisplayName(id),
		SellPrice:   lowestSellOffer - PriceTick,
		BuyPrice:    highestBuyOrder + PriceTick,
	}
	op.ProfitPerItem = op.SellPrice - op.BuyPrice

	// Days of already-listed supply queued ahead of a new offer. A dead market
	// (no weekly throughput) means the queue never drains.
	if book.SellMovingWeek == 0 {
		op.SalesBacklogDays = math.Inf(1)
	} else {
		op.SalesBacklogDays = float64(book.SellVolume) / (float64(book.SellMovingWeek) / 7.0)
	}

	affordable := int64(math.Floor(params.MaxOutlay / op.BuyPrice))
	orderCap := int64(params.MaxOffers) * MaxQuantityPerOrder
	op.MaxQuantity = affordable
	if orderCap < op.MaxQuantity {
		op.MaxQuantity = orderCap
	}
	op.NumOffersRequired = int(math.Ceil(float64(op.MaxQuantity) / MaxQuantityPerOrder))
	op.TotalProfit = op.ProfitPerItem * float64(op.MaxQuantity)

	return op, true
}

// Classify buckets an opportunity. The rule order is fixed and first match
// wins: profitability, then affordability, then backlog.
func Classify(op FlipOpportunity, params FlipParams) Bucket {
	switch {
	case op.ProfitPerItem < PriceTick:
		return BucketNotProfitable
	case op.MaxQuantity <= 0:
		return BucketNotAffordable
	case op.SalesBacklogDays > params.MaxBacklogDays:
		return BucketNotSellable
	default:
		return BucketIncluded
	}
}

// ComputeFlips runs the whole flip pipeline over a market snapshot: evaluate
// every item, classify, then order each bucket. Output is fully determined by
// the snapshot and params — item ids are walked in sorted order so repeated
// runs on the same input produce identical reports.
func ComputeFlips(snapshot map[string]OrderBook, params FlipParams) FlipReport {
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var report FlipReport
	for _, id := range ids {
		op, ok := Evaluate(id, snapshot[id], params)
		if !ok {
			continue
		}
		switch Classify(op, params) {
		case BucketNotProfitable:
			report.NotProfitable = append(report.NotProfitable, op)
		case BucketNotAffordable:
			report.NotAffordable = append(report.NotAffordable, op)
		case BucketNotSellable:
			report.NotSellable = append(report.NotSellable, op)
		default:
			report.Included = append(report.Included, op)
		}
	}

	SortIncluded(report.Included, params.SortMode)
	SortNotProfitable(report.NotProfitable)
	SortNotAffordable(report.NotAffordable)
	SortNotSellable(report.NotSellable)

	// A dead market can land in any exclusion bucket: the classification
	// rules check profitability and affordability before liquidity.
	sanitizeBacklogs(report.Included)
	sanitizeBacklogs(report.NotProfitable)
	sanitizeBacklogs(report.NotAffordable)
	sanitizeBacklogs(report.NotSellable)
	return report
}

// SortIncluded orders the included list under the selected mode. Sorting is
// stable so items tied on the comparator keep their input order.
func SortIncluded(ops []FlipOpportunity, mode SortMode) {
	switch mode {
	case SortByName:
		sort.SliceStable(ops, func(i, j int) bool {
			return ops[i].DisplayName < ops[j].DisplayName
		})
	case SortByBacklog:
		sort.SliceStable(ops, func(i, j int) bool {
			return ops[i].SalesBacklogDays < ops[j].SalesBacklogDays
		})
	case SortByProfitPerItem:
		sort.SliceStable(ops, func(i, j int) bool {
			return ops[i].ProfitPerItem > ops[j].ProfitPerItem
		})
	default:
		sort.SliceStable(ops, func(i, j int) bool {
			return ops[i].TotalProfit > ops[j].TotalProfit
		})
	}
}

// SortNotProfitable orders the losing items least-bad first.
func SortNotProfitable(ops []FlipOpportunity) {
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].ProfitPerItem > ops[j].ProfitPerItem
	})
}

// SortNotAffordable orders by descending buy price, the closest-to-affordable
// items appearing first for a fixed budget.
func SortNotAffordable(ops []FlipOpportunity) {
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].BuyPrice > ops[j].BuyPrice
	})
}

// SortNotSellable orders by descending backlog, worst first.
func SortNotSellable(ops []FlipOpportunity) {
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].SalesBacklogDays > ops[j].SalesBacklogDays
	})
}

// sanitizeBacklogs replaces non-finite backlog values with -1 so reports can
// be JSON-encoded. -1 marks a dead market with no weekly throughput. Runs
// after sorting so the infinite values still sort as worst.
func sanitizeBacklogs(ops []FlipOpportunity) {
	for i := range ops {
		if math.IsInf(ops[i].SalesBacklogDays, 0) || math.IsNaN(ops[i].SalesBacklogDays) {
			ops[i].SalesBacklogDays = -1
		}
	}
}
