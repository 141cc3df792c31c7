package engine

import "strings"

// displayNames overrides item ids whose generic transform produces a wrong or
// misleading name (legacy ids, numeric sub-variants).
var displayNames = map[string]string{
	"ENCHANTED_CARROT_STICK":     "Enchanted Carrot on a Stick",
	"HUGE_MUSHROOM_1":            "Brown Mushroom Block",
	"HUGE_MUSHROOM_2":            "Red Mushroom Block",
	"ENCHANTED_HUGE_MUSHROOM_1":  "Enchanted Brown Mushroom Block",
	"ENCHANTED_HUGE_MUSHROOM_2":  "Enchanted Red Mushroom Block",
	"SULPHUR":                    "Gunpowder",
	"RABBIT":                     "Raw Rabbit",
	"ENCHANTED_RABBIT":           "Enchanted Raw Rabbit",
	"RAW_FISH:1":                 "Raw Salmon",
	"RAW_FISH:2":                 "Clownfish",
	"RAW_FISH:3":                 "Pufferfish",
	"INK_SACK:3":                 "Cocoa Beans",
	"INK_SACK:4":                 "Lapis Lazuli",
	"LOG":                        "Oak Log",
	"LOG:1":                      "Spruce Log",
	"LOG:2":                      "Birch Log",
	"LOG_2:1":                    "Dark Oak Log",
	"LOG_2":                      "Acacia Log",
	"LOG:3":                      "Jungle Log",
}

// DisplayName maps a raw item id to a human-readable name. Ids in the override
// table are returned verbatim; everything else is title-cased on underscore
// boundaries, with ":" sub-variant qualifiers spaced out and a trailing
// " Item" suffix removed.
func DisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	tokens := strings.Split(strings.ToLower(id), "_")
	for i, tok := range tokens {
		tokens[i] = titleToken(tok)
	}
	name := strings.Join(tokens, " ")
	name = strings.Replace(name, ":", " : ", 1)
	name = strings.Replace(name, " Item", "", 1)
	return name
}

func titleToken(tok string) string {
	if tok == "" {
		return tok
	}
	return strings.ToUpper(tok[:1]) + tok[1:]
}
