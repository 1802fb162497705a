package formatter

import (
	"strconv"
	"strings"

	"github.com/calebreed/promptmill/internal/enhancer"
)

const promptPreviewLen = 48

// FormatHistory renders one engine's enhancement records as a table.
func FormatHistory(engineKey string, records []enhancer.Record) string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render(engineKey))
	b.WriteString("\n")

	if len(records) == 0 {
		b.WriteString(StyleDim.Render("  no records"))
		b.WriteString("\n\n")
		return b.String()
	}

	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(i),
			rec.Timestamp.Format("2006-01-02 15:04"),
			truncate(rec.OriginalPrompt, promptPreviewLen),
			truncate(rec.EnhancedPrompt, promptPreviewLen),
			RatingIndicator(rec.EffectivenessRating),
		})
	}
	b.WriteString(RenderTable(
		[]string{"#", "WHEN", "ORIGINAL", "ENHANCED", "RATING"},
		rows,
	))
	b.WriteString("\n")
	return b.String()
}

// FormatRules renders the effective rule set, one block per category.
func FormatRules(rules *enhancer.RuleSet) string {
	var b strings.Builder
	for _, category := range rules.Categories() {
		rule := rules.Lookup(category)
		b.WriteString(StyleHeader.Render(string(category)))
		b.WriteString("\n  ")
		b.WriteString(StyleFg.Render(rule.SystemPrompt))
		b.WriteString("\n  ")
		b.WriteString(StyleDim.Render(truncate(oneLine(rule.Template), 100)))
		b.WriteString("\n\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	s = oneLine(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
