package enhancer

import "strings"

// Category is the coarse classification of a prompt's intent, used to
// select an enhancement rule.
type Category string

const (
	CategoryCoding     Category = "coding"
	CategoryCreative   Category = "creative"
	CategoryAnalytical Category = "analytical"
	CategoryDefault    Category = "default"
)

// Detection order matters: a prompt matching both a coding and a
// creative keyword resolves to coding.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryCoding, []string{"code", "function", "program", "script", "develop", "bug", "debug", "coding"}},
	{CategoryCreative, []string{"write", "story", "creative", "design", "article", "blog"}},
	{CategoryAnalytical, []string{"analyze", "analysis", "research", "evaluate", "compare", "explain", "reason"}},
}

// DetectCategory classifies a prompt by keyword membership. It is total:
// any prompt that matches nothing is CategoryDefault.
func DetectCategory(prompt string) Category {
	lower := strings.ToLower(prompt)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return CategoryDefault
}
