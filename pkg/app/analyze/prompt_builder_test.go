package analyze_test

import (
	"testing"

	"github.com/relicworks/itemgate/pkg/app/analyze"
	"github.com/relicworks/itemgate/pkg/domain/item"
	"github.com/stretchr/testify/assert"
)

func TestPromptBuilder_HintAlwaysFromFixedSet(t *testing.T) {
	builder := analyze.NewPromptBuilder(nil)
	hints := analyze.StyleHints()

	for i := 0; i < 100; i++ {
		prompt := builder.Build(item.RarityMythic)
		assert.Contains(t, hints, prompt.StyleHint)
		assert.Contains(t, prompt.Instruction, prompt.StyleHint)
	}
}

func TestPromptBuilder_HintVariesAcrossBuilds(t *testing.T) {
	builder := analyze.NewPromptBuilder(nil)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[builder.Build(item.RarityMythic).StyleHint] = true
	}

	assert.Greater(t, len(seen), 1)
}

func TestPromptBuilder_PickProviderIsDeterministic(t *testing.T) {
	builder := analyze.NewPromptBuilder(&analyze.PromptBuilderOpts{
		PickProvider: func(n int) int { return 3 },
	})

	hint := analyze.StyleHints()[3]
	for i := 0; i < 5; i++ {
		assert.Equal(t, hint, builder.Build(item.RarityRare).StyleHint)
	}
}

func TestPromptBuilder_EveryTierBuildsAnInstruction(t *testing.T) {
	builder := analyze.NewPromptBuilder(&analyze.PromptBuilderOpts{
		PickProvider: func(n int) int { return 0 },
	})

	seen := make(map[string]bool)
	for _, tier := range item.Tiers() {
		prompt := builder.Build(tier)
		assert.NotEmpty(t, prompt.Instruction)
		assert.Contains(t, prompt.Instruction, string(tier))
		seen[prompt.Instruction] = true
	}

	// Each tier contributes its own fragment.
	assert.Len(t, seen, len(item.Tiers()))
}

func TestPromptBuilder_UnknownTierUsesCommonFragment(t *testing.T) {
	builder := analyze.NewPromptBuilder(&analyze.PromptBuilderOpts{
		PickProvider: func(n int) int { return 0 },
	})

	unknown := builder.Build(item.Rarity("divine"))
	assert.Contains(t, unknown.Instruction, "a familiar item used in everyday life")
}

func TestPromptBuilder_InstructionEncodesSchema(t *testing.T) {
	builder := analyze.NewPromptBuilder(nil)
	prompt := builder.Build(item.RarityEpic)

	assert.Contains(t, prompt.Instruction, `"name"`)
	assert.Contains(t, prompt.Instruction, `"description"`)
	assert.Contains(t, prompt.Instruction, `"effect"`)
	assert.Contains(t, prompt.Instruction, `"lore"`)
	assert.Contains(t, prompt.Instruction, "150-200")
}
