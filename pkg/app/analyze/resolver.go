package analyze

import (
	"strings"

	"github.com/relicworks/itemgate/pkg/domain/item"
	"github.com/valyala/fastjson"
)

// Resolve extracts a structured record from the model's free-text reply. It
// never fails outward: when no brace-delimited object can be found or parsed,
// the returned record is the deterministic fallback for the rarity and
// degraded is true. A legacy "lore" field in the parsed object is folded into
// the description so the output shape stays at three fields.
func Resolve(raw string, rarity item.Rarity) (record item.ItemRecord, degraded bool) {
	span, ok := extractObjectSpan(raw)
	if !ok {
		return fallbackRecord(rarity), true
	}

	parsed, err := fastjson.Parse(span)
	if err != nil || parsed.Type() != fastjson.TypeObject {
		return fallbackRecord(rarity), true
	}

	record = item.ItemRecord{
		Name:        string(parsed.GetStringBytes("name")),
		Description: string(parsed.GetStringBytes("description")),
		Effect:      string(parsed.GetStringBytes("effect")),
	}

	if lore := parsed.GetStringBytes("lore"); len(lore) > 0 {
		record.Description = strings.TrimSpace(record.Description + " " + string(lore))
	}

	return record, false
}

// extractObjectSpan returns the greedy substring from the first '{' to the
// last '}' of raw.
func extractObjectSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func fallbackRecord(r item.Rarity) item.ItemRecord {
	description := "Ordinary at first glance, yet an immeasurable power rests within. " +
		"A strange, magnetic item whose true worth reveals itself according to the heart of its bearer."
	return item.ItemRecord{
		Name:        "Mysterious Item",
		Description: description + " " + fallbackLore(r),
		Effect:      fallbackEffect(r),
	}
}

func fallbackEffect(r item.Rarity) string {
	switch r {
	case item.RarityMythic:
		return "The ultimate power to bend reality to its bearer's will"
	case item.RarityLegendary:
		return "An overwhelming, legend-grade special ability"
	case item.RarityEpic:
		return "Unleashes a powerful magical effect"
	case item.RarityRare:
		return "Harbors a special hidden ability"
	case item.RarityUncommon:
		return "Carries a minor but curious effect"
	case item.RarityCommon:
		fallthrough
	default:
		return "A modest effect that brightens daily life"
	}
}

func fallbackLore(r item.Rarity) string {
	switch r {
	case item.RarityMythic:
		return "A miraculous item governed by the laws of the cosmos, reshaping the reality around it by its mere presence."
	case item.RarityLegendary:
		return "A masterpiece acknowledged by experts the world over, granting its owner absolute trust and dignity."
	case item.RarityEpic:
		return "A timeless work born where innovative technology met traditional craft."
	case item.RarityRare:
		return "A precious piece shaped with devotion by practiced hands, holding value beyond the ordinary."
	case item.RarityUncommon:
		return "A hidden gem known to the discerning few, made from select materials by an unusual method."
	case item.RarityCommon:
		fallthrough
	default:
		return "A dependable companion loved in daily life, quietly supporting those who keep it near."
	}
}
