package item

// Rarity is the closed set of scarcity tiers an item can be assigned.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

// ItemRecord is the structured result of an analysis. The three fields are the
// frozen output shape; any extra narrative field a model produces is merged
// into Description before a record leaves the resolver.
type ItemRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Effect      string `json:"effect"`
}

// ParseRarity normalizes an unconstrained string from the request body into a
// known tier. Unrecognized values collapse to common; ok reports whether the
// input named a real tier.
func ParseRarity(s string) (Rarity, bool) {
	switch Rarity(s) {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic:
		return Rarity(s), true
	default:
		return RarityCommon, false
	}
}

// Tiers returns all rarity tiers in ascending order of scarcity.
func Tiers() []Rarity {
	return []Rarity{
		RarityCommon,
		RarityUncommon,
		RarityRare,
		RarityEpic,
		RarityLegendary,
		RarityMythic,
	}
}
