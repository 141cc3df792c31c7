package engine

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

const eps = 1e-9

// book builds an OrderBook from offer/order price levels with fixed quantities.
func book(sellOfferPrices, buyOrderPrices []float64, sellVolume, sellMovingWeek int64) OrderBook {
	b := OrderBook{SellVolume: sellVolume, SellMovingWeek: sellMovingWeek}
	for _, p := range sellOfferPrices {
		b.SellOffers = append(b.SellOffers, Offer{PricePerUnit: p, Quantity: 100})
	}
	for _, p := range buyOrderPrices {
		b.BuyOrders = append(b.BuyOrders, Offer{PricePerUnit: p, Quantity: 100})
	}
	return b
}

func defaultParams() FlipParams {
	return FlipParams{MaxOutlay: 1_000_000, MaxOffers: 1, MaxBacklogDays: 7, SortMode: SortByTotalProfit}
}

func TestEvaluate_UntradeableSides(t *testing.T) {
	params := defaultParams()
	if _, ok := Evaluate("X", book(nil, []float64{10}, 700, 700), params); ok {
		t.Error("empty sell offers should be untradeable")
	}
	if _, ok := Evaluate("X", book([]float64{20}, nil, 700, 700), params); ok {
		t.Error("empty buy orders should be untradeable")
	}
}

func TestEvaluate_UndercutsByOneTick(t *testing.T) {
	b := book([]float64{25.5, 30, 26}, []float64{10, 12.3, 11}, 700, 700)
	op, ok := Evaluate("X", b, defaultParams())
	if !ok {
		t.Fatal("expected tradeable item")
	}
	if math.Abs(op.SellPrice-(25.5-0.1)) > eps {
		t.Errorf("SellPrice = %v, want 25.4", op.SellPrice)
	}
	if math.Abs(op.BuyPrice-(12.3+0.1)) > eps {
		t.Errorf("BuyPrice = %v, want 12.4", op.BuyPrice)
	}
	if math.Abs(op.ProfitPerItem-(op.SellPrice-op.BuyPrice)) > eps {
		t.Errorf("ProfitPerItem = %v, want SellPrice-BuyPrice = %v", op.ProfitPerItem, op.SellPrice-op.BuyPrice)
	}
}

func TestEvaluate_QuantityAndOfferCount(t *testing.T) {
	// floor(1,000,000 / 10.1) = 99009, capped at one full order of 71680.
	b := book([]float64{20}, []float64{10}, 700, 700)
	op, ok := Evaluate("X", b, defaultParams())
	if !ok {
		t.Fatal("expected tradeable item")
	}
	if op.MaxQuantity != 71680 {
		t.Errorf("MaxQuantity = %d, want 71680", op.MaxQuantity)
	}
	if op.NumOffersRequired != 1 {
		t.Errorf("NumOffersRequired = %d, want 1", op.NumOffersRequired)
	}
	if math.Abs(op.TotalProfit-op.ProfitPerItem*71680) > 1e-6 {
		t.Errorf("TotalProfit = %v, want %v", op.TotalProfit, op.ProfitPerItem*71680)
	}

	// With two orders allowed the budget becomes the binding constraint.
	params := defaultParams()
	params.MaxOffers = 2
	op, _ = Evaluate("X", b, params)
	if op.MaxQuantity != 99009 {
		t.Errorf("MaxQuantity = %d, want 99009", op.MaxQuantity)
	}
	if op.NumOffersRequired != 2 {
		t.Errorf("NumOffersRequired = %d, want 2", op.NumOffersRequired)
	}
}

func TestEvaluate_SalesBacklog(t *testing.T) {
	b := book([]float64{20}, []float64{10}, 700, 700)
	op, _ := Evaluate("X", b, defaultParams())
	if math.Abs(op.SalesBacklogDays-7.0) > eps {
		t.Errorf("SalesBacklogDays = %v, want 7.0", op.SalesBacklogDays)
	}
}

func TestEvaluate_ZeroMovingWeek_InfiniteBacklog(t *testing.T) {
	b := book([]float64{20}, []float64{10}, 500, 0)
	op, ok := Evaluate("X", b, defaultParams())
	if !ok {
		t.Fatal("expected tradeable item")
	}
	if !math.IsInf(op.SalesBacklogDays, 1) {
		t.Errorf("SalesBacklogDays = %v, want +Inf", op.SalesBacklogDays)
	}
	if got := Classify(op, defaultParams()); got != BucketNotSellable {
		t.Errorf("Classify = %v, want not_sellable", got)
	}
}

func TestClassify_OrderOfRules(t *testing.T) {
	params := defaultParams()

	// Losing items are not-profitable even when also unaffordable.
	op := FlipOpportunity{ProfitPerItem: -5, MaxQuantity: 0, SalesBacklogDays: 100}
	if got := Classify(op, params); got != BucketNotProfitable {
		t.Errorf("Classify = %v, want not_profitable", got)
	}

	// A sub-tick edge is treated as noise, not profit.
	op = FlipOpportunity{ProfitPerItem: 0.09, MaxQuantity: 10, SalesBacklogDays: 1}
	if got := Classify(op, params); got != BucketNotProfitable {
		t.Errorf("Classify = %v, want not_profitable for sub-tick edge", got)
	}

	op = FlipOpportunity{ProfitPerItem: 5, MaxQuantity: 0, SalesBacklogDays: 100}
	if got := Classify(op, params); got != BucketNotAffordable {
		t.Errorf("Classify = %v, want not_affordable", got)
	}

	op = FlipOpportunity{ProfitPerItem: 5, MaxQuantity: 10, SalesBacklogDays: 8}
	if got := Classify(op, params); got != BucketNotSellable {
		t.Errorf("Classify = %v, want not_sellable", got)
	}

	op = FlipOpportunity{ProfitPerItem: 5, MaxQuantity: 10, SalesBacklogDays: 7}
	if got := Classify(op, params); got != BucketIncluded {
		t.Errorf("Classify = %v, want included", got)
	}
}

func TestComputeFlips_BucketsDisjointAndExhaustive(t *testing.T) {
	snapshot := map[string]OrderBook{
		"GOOD":       book([]float64{20}, []float64{10}, 700, 700),
		"LOSS":       book([]float64{10}, []float64{20}, 700, 700),
		"EXPENSIVE":  book([]float64{3_000_000}, []float64{2_000_000}, 700, 700),
		"SLOW":       book([]float64{20}, []float64{10}, 7000, 700),
		"DEAD":       book([]float64{20}, []float64{10}, 500, 0),
		"UNTRADEABLE": {BuyOrders: []Offer{{PricePerUnit: 5, Quantity: 1}}},
	}
	report := ComputeFlips(snapshot, defaultParams())

	total := len(report.Included) + len(report.NotProfitable) + len(report.NotAffordable) + len(report.NotSellable)
	if total != 5 {
		t.Fatalf("bucketed items = %d, want 5 (untradeable excluded)", total)
	}

	seen := make(map[string]int)
	for _, l := range [][]FlipOpportunity{report.Included, report.NotProfitable, report.NotAffordable, report.NotSellable} {
		for _, op := range l {
			seen[op.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("item %s appears %d times across buckets", id, n)
		}
	}
	if _, ok := seen["UNTRADEABLE"]; ok {
		t.Error("untradeable item must not reach any bucket")
	}

	if len(report.Included) != 1 || report.Included[0].ID != "GOOD" {
		t.Errorf("Included = %+v, want [GOOD]", report.Included)
	}
	if len(report.NotProfitable) != 1 || report.NotProfitable[0].ID != "LOSS" {
		t.Errorf("NotProfitable = %+v, want [LOSS]", report.NotProfitable)
	}
	if len(report.NotAffordable) != 1 || report.NotAffordable[0].ID != "EXPENSIVE" {
		t.Errorf("NotAffordable = %+v, want [EXPENSIVE]", report.NotAffordable)
	}
	if len(report.NotSellable) != 2 {
		t.Errorf("NotSellable = %+v, want [DEAD SLOW]", report.NotSellable)
	}
}

func TestComputeFlips_DeadMarketSortsWorstAndSanitizes(t *testing.T) {
	snapshot := map[string]OrderBook{
		"SLOW": book([]float64{20}, []float64{10}, 7000, 700), // 70 days
		"DEAD": book([]float64{20}, []float64{10}, 500, 0),    // infinite
	}
	report := ComputeFlips(snapshot, defaultParams())
	if len(report.NotSellable) != 2 {
		t.Fatalf("NotSellable len = %d, want 2", len(report.NotSellable))
	}
	// Worst backlog first; the dead market serializes as -1 after ordering.
	if report.NotSellable[0].ID != "DEAD" {
		t.Errorf("NotSellable[0] = %s, want DEAD", report.NotSellable[0].ID)
	}
	if report.NotSellable[0].SalesBacklogDays != -1 {
		t.Errorf("dead market backlog = %v, want -1 sentinel", report.NotSellable[0].SalesBacklogDays)
	}
	if math.Abs(report.NotSellable[1].SalesBacklogDays-70) > eps {
		t.Errorf("SLOW backlog = %v, want 70", report.NotSellable[1].SalesBacklogDays)
	}
}

func TestComputeFlips_DeadMarketSanitizedInEveryBucket(t *testing.T) {
	// Dead markets are caught by the profitability and affordability rules
	// before the liquidity rule, so the -1 sentinel must apply everywhere.
	snapshot := map[string]OrderBook{
		"DEAD_LOSS":      book([]float64{10}, []float64{20}, 500, 0),   // loses money
		"DEAD_EXPENSIVE": book([]float64{30}, []float64{20}, 500, 0),   // buy 20.1 > outlay 15
		"DEAD_SLOW":      book([]float64{20}, []float64{10}, 500, 0),   // affordable, profitable
		"LIVE":           book([]float64{20}, []float64{10}, 700, 700), // backlog 7
	}
	params := defaultParams()
	params.MaxOutlay = 15
	report := ComputeFlips(snapshot, params)

	for _, tc := range []struct {
		bucket []FlipOpportunity
		name   string
		id     string
	}{
		{report.NotProfitable, "NotProfitable", "DEAD_LOSS"},
		{report.NotAffordable, "NotAffordable", "DEAD_EXPENSIVE"},
		{report.NotSellable, "NotSellable", "DEAD_SLOW"},
	} {
		if len(tc.bucket) != 1 || tc.bucket[0].ID != tc.id {
			t.Fatalf("%s = %+v, want [%s]", tc.name, tc.bucket, tc.id)
		}
		if tc.bucket[0].SalesBacklogDays != -1 {
			t.Errorf("%s backlog = %v, want -1 sentinel", tc.name, tc.bucket[0].SalesBacklogDays)
		}
	}

	if _, err := json.Marshal(report); err != nil {
		t.Errorf("report must be JSON-encodable: %v", err)
	}
}

func TestSortIncluded_Modes(t *testing.T) {
	ops := func() []FlipOpportunity {
		return []FlipOpportunity{
			{ID: "A", DisplayName: "Zeta", SalesBacklogDays: 3, ProfitPerItem: 1, TotalProfit: 100},
			{ID: "B", DisplayName: "Alpha", SalesBacklogDays: 1, ProfitPerItem: 3, TotalProfit: 50},
			{ID: "C", DisplayName: "Mid", SalesBacklogDays: 2, ProfitPerItem: 2, TotalProfit: 200},
		}
	}

	cases := []struct {
		mode SortMode
		want []string
	}{
		{SortByName, []string{"B", "C", "A"}},
		{SortByBacklog, []string{"B", "C", "A"}},
		{SortByProfitPerItem, []string{"B", "C", "A"}},
		{SortByTotalProfit, []string{"C", "A", "B"}},
	}
	for _, c := range cases {
		got := ops()
		SortIncluded(got, c.mode)
		for i, id := range c.want {
			if got[i].ID != id {
				t.Errorf("mode %s: order[%d] = %s, want %s", c.mode, i, got[i].ID, id)
			}
		}
	}
}

func TestSortIncluded_StableOnTies(t *testing.T) {
	ops := []FlipOpportunity{
		{ID: "FIRST", TotalProfit: 100},
		{ID: "SECOND", TotalProfit: 100},
		{ID: "THIRD", TotalProfit: 100},
	}
	SortIncluded(ops, SortByTotalProfit)
	for i, want := range []string{"FIRST", "SECOND", "THIRD"} {
		if ops[i].ID != want {
			t.Errorf("tied order[%d] = %s, want %s", i, ops[i].ID, want)
		}
	}
}

func TestSortExclusionBuckets_FixedOrder(t *testing.T) {
	losses := []FlipOpportunity{
		{ID: "BIG_LOSS", ProfitPerItem: -9},
		{ID: "SMALL_LOSS", ProfitPerItem: -0.5},
	}
	SortNotProfitable(losses)
	if losses[0].ID != "SMALL_LOSS" {
		t.Errorf("NotProfitable[0] = %s, want SMALL_LOSS (least-bad first)", losses[0].ID)
	}

	pricey := []FlipOpportunity{
		{ID: "CHEAP", BuyPrice: 100},
		{ID: "DEAR", BuyPrice: 10_000},
	}
	SortNotAffordable(pricey)
	if pricey[0].ID != "DEAR" {
		t.Errorf("NotAffordable[0] = %s, want DEAR", pricey[0].ID)
	}

	slow := []FlipOpportunity{
		{ID: "WEEK", SalesBacklogDays: 8},
		{ID: "MONTH", SalesBacklogDays: 30},
	}
	SortNotSellable(slow)
	if slow[0].ID != "MONTH" {
		t.Errorf("NotSellable[0] = %s, want MONTH", slow[0].ID)
	}
}

func TestComputeFlips_Idempotent(t *testing.T) {
	snapshot := map[string]OrderBook{
		"AAA": book([]float64{20, 21}, []float64{10, 9}, 700, 700),
		"BBB": book([]float64{20, 21}, []float64{10, 9}, 700, 700), // identical book, ties with AAA
		"CCC": book([]float64{50}, []float64{30}, 350, 700),
		"DDD": book([]float64{10}, []float64{20}, 700, 700),
	}
	params := defaultParams()

	first := ComputeFlips(snapshot, params)
	second := ComputeFlips(snapshot, params)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated runs on the same snapshot must produce identical reports")
	}

	// Ties keep id order: AAA and BBB have equal TotalProfit.
	var tied []string
	for _, op := range first.Included {
		if op.ID == "AAA" || op.ID == "BBB" {
			tied = append(tied, op.ID)
		}
	}
	if len(tied) != 2 || tied[0] != "AAA" || tied[1] != "BBB" {
		t.Errorf("tied items = %v, want [AAA BBB]", tied)
	}
}
