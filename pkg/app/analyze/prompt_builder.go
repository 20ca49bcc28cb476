package analyze

import (
	"fmt"
	"math/rand"

	"github.com/relicworks/itemgate/pkg/domain/item"
)

// Prompt carries the instruction text sent to the model along with the lore
// style hint that was interpolated into it. The instruction only shapes model
// behavior; nothing downstream ever parses it back.
type Prompt struct {
	Instruction string
	StyleHint   string
}

type PromptBuilderOpts struct {
	PickProvider func(n int) int
}

// PromptBuilder produces the per-request instruction text. Deterministic in
// everything except one uniform pick of a lore style hint.
type PromptBuilder struct {
	pickProvider func(n int) int
}

func NewPromptBuilder(opts *PromptBuilderOpts) *PromptBuilder {
	pickProvider := rand.Intn
	if opts != nil && opts.PickProvider != nil {
		pickProvider = opts.PickProvider
	}
	return &PromptBuilder{pickProvider: pickProvider}
}

var loreStyles = []string{
	"born of modern technological innovation",
	"brought into being by the hands of master artisans",
	"playing an essential role in daily life",
	"cherished by countless people over the years",
	"in beloved use across generations",
	"sprung from a flash of inventive thinking",
	"combining practicality with beauty",
	"a crystallization of human ingenuity and craft",
	"holding the power to enrich everyday living",
	"filling the hearts of those who use it",
	"made by methods handed down since long ago",
	"grown indispensable to modern life",
}

// StyleHints returns the fixed set of lore style hints a prompt can carry.
func StyleHints() []string {
	hints := make([]string, len(loreStyles))
	copy(hints, loreStyles)
	return hints
}

// Build assembles the instruction for one analysis request.
func (b *PromptBuilder) Build(rarity item.Rarity) Prompt {
	hint := loreStyles[b.pickProvider(len(loreStyles))]
	return Prompt{
		Instruction: fmt.Sprintf(promptTemplate, rarityFragment(rarity), rarity, hint, rarity),
		StyleHint:   hint,
	}
}

func rarityFragment(r item.Rarity) string {
	switch r {
	case item.RarityUncommon:
		return "an item with somewhat unusual properties or uses"
	case item.RarityRare:
		return "a prized item holding special value and function"
	case item.RarityEpic:
		return "an item concealing exceptional power and hidden abilities"
	case item.RarityLegendary:
		return "an ultimate item of legendary performance and history"
	case item.RarityMythic:
		return "a supreme item harboring myth-grade power"
	case item.RarityCommon:
		fallthrough
	default:
		return "a familiar item used in everyday life"
	}
}

const promptTemplate = `Analyze the item in this image as %s, framed in a mystical and fantastical register.

Respond in exactly this JSON format:
{
  "name": "item name (mystical and intriguing)",
  "description": "detailed description of the item (150-200 characters, written with a mystical, otherworldly atmosphere)",
  "effect": "special effect or ability (50-100 characters, fitting for %s rarity)",
  "lore": "background and story of the item (100-150 characters, mystical and poetic phrasing)"
}

Important instructions:
- The lore section must work in the phrase "%s" and bring in a modern perspective as well
- The item does not need to be an ancient relic
- Even for a modern item, express its particular meaning and value mystically
- Do not lean on ancient framings such as "ages past" or "the era of chaos"; vary the backdrop

Make the content worthy of the "%s" rarity tier:
- common: familiar, approachable effects
- uncommon: somewhat unusual effects
- rare: special abilities worth noting
- epic: powerful, striking effects
- legendary: overwhelming, legend-grade power
- mythic: ultimate, myth-grade abilities

Respond with the JSON only and include no additional commentary.`
