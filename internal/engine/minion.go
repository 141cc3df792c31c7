package engine

import (
	"sort"
	"strings"
)

const (
	secondsPerDay       = 86400
	enchantedBundleSize = 160    // enchanted variants compress 160 base units
	baselineYieldPerDay = 138240 // coins/day of byproduct, independent of item price
)

// minionBlacklist lists id substrings for item families minions cannot produce.
var minionBlacklist = []string{"BLOCK", "COMPACTOR", "SILK", "TOOTH", "REVENANT", "FRAGMENT"}

// MinionEligible reports whether an item id can be produced by a minion.
func MinionEligible(id string) bool {
	for _, s := range minionBlacklist {
		if strings.Contains(id, s) {
			return false
		}
	}
	return true
}

// RevenuePerDay values a minion's daily output at the given unit price.
// Enchanted variants are produced as 160-unit bundles, so the per-item rate is
// divided down; the baseline byproduct yield is added regardless of price.
func RevenuePerDay(unitPrice float64, enchanted bool, actionTimeSeconds float64, itemsPerAction int) float64 {
	if actionTimeSeconds <= 0 {
		return 0
	}
	rev := secondsPerDay / actionTimeSeconds * float64(itemsPerAction) * unitPrice
	if enchanted {
		rev /= enchantedBundleSize
	}
	return rev + baselineYieldPerDay/actionTimeSeconds
}

// MinionSortMode selects the ordering of a minion report.
type MinionSortMode string

const (
	MinionSortByUnitPrice MinionSortMode = "unit_price"
	MinionSortByName      MinionSortMode = "name"
)

// ParseMinionSortMode maps a config string to a MinionSortMode, defaulting to
// unit price.
func ParseMinionSortMode(s string) MinionSortMode {
	if MinionSortMode(s) == MinionSortByName {
		return MinionSortByName
	}
	return MinionSortByUnitPrice
}

// MinionParams holds the production parameters for a minion report.
type MinionParams struct {
	ActionTimeSeconds float64
	ItemsPerAction    int
	SortMode          MinionSortMode
}

// MinionRow is one line of the minion revenue report.
type MinionRow struct {
	ID            string  `json:"ID"`
	DisplayName   string  `json:"DisplayName"`
	UnitPrice     float64 `json:"UnitPrice"`
	RevenuePerDay float64 `json:"RevenuePerDay"`
}

// ComputeMinionReport builds the ordered revenue report from a unit price map.
// Blacklisted ids are dropped silently; enchanted variants are detected by id.
func ComputeMinionReport(prices map[string]float64, params MinionParams) []MinionRow {
	ids := make([]string, 0, len(prices))
	for id := range prices {
		if MinionEligible(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	rows := make([]MinionRow, 0, len(ids))
	for _, id := range ids {
		price := prices[id]
		enchanted := strings.Contains(id, "ENCHANTED")
		rows = append(rows, MinionRow{
			ID:            id,
			DisplayName:   DisplayName(id),
			UnitPrice:     price,
			RevenuePerDay: RevenuePerDay(price, enchanted, params.ActionTimeSeconds, params.ItemsPerAction),
		})
	}

	if params.SortMode == MinionSortByName {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].DisplayName < rows[j].DisplayName
		})
	} else {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].UnitPrice > rows[j].UnitPrice
		})
	}
	return rows
}
