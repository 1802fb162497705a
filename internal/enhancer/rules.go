package enhancer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// promptPlaceholder is the substitution point every rule template must
// contain exactly once.
const promptPlaceholder = "{prompt}"

// Rule pairs the system prompt for the meta-call with the template the
// raw prompt is substituted into.
type Rule struct {
	SystemPrompt string `json:"system_prompt"`
	Template     string `json:"template"`
}

// Instantiate builds the meta-prompt by substituting the raw prompt into
// the template exactly once.
func (r Rule) Instantiate(prompt string) string {
	return strings.Replace(r.Template, promptPlaceholder, prompt, 1)
}

// Validate checks the single-substitution-point invariant.
func (r Rule) Validate() error {
	if n := strings.Count(r.Template, promptPlaceholder); n != 1 {
		return fmt.Errorf("template must contain exactly one %q placeholder, found %d", promptPlaceholder, n)
	}
	return nil
}

// RuleSet maps category names to enhancement rules. It always contains
// the reserved "default" entry and is immutable after construction.
type RuleSet struct {
	rules map[Category]Rule
}

// Lookup returns the rule for a category, falling back to the default
// rule for any category it does not know. It never fails.
func (rs *RuleSet) Lookup(category Category) Rule {
	if r, ok := rs.rules[category]; ok {
		return r
	}
	return rs.rules[CategoryDefault]
}

// Categories returns all category names in the set, sorted for stable output.
func (rs *RuleSet) Categories() []Category {
	cats := make([]Category, 0, len(rs.rules))
	for c := range rs.rules {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// NewRuleSet builds the built-in rule set and, when path is non-empty,
// overlays it with custom rules from a JSON file. Each overlay entry
// overwrites its whole category. A missing or malformed overlay never
// fails construction; both conditions are reported through the logger
// so they stay distinguishable in diagnostics.
func NewRuleSet(path string, logger *slog.Logger) *RuleSet {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rs := &RuleSet{rules: builtinRules()}
	if path == "" {
		return rs
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no custom enhancement rules file", "path", path)
		} else {
			logger.Warn("custom enhancement rules unreadable", "path", path, "error", err)
		}
		return rs
	}

	var custom map[Category]Rule
	if err := json.Unmarshal(data, &custom); err != nil {
		logger.Warn("custom enhancement rules malformed", "path", path, "error", err)
		return rs
	}

	for category, rule := range custom {
		if err := rule.Validate(); err != nil {
			logger.Warn("skipping invalid custom rule", "category", category, "error", err)
			continue
		}
		rs.rules[category] = rule
		logger.Info("loaded custom enhancement rule", "category", category)
	}

	return rs
}

func builtinRules() map[Category]Rule {
	return map[Category]Rule{
		CategoryCoding: {
			SystemPrompt: "You are a professional software developer with expertise in clean code and best practices.",
			Template: `Consider this coding request: "{prompt}"

Enhance this request by:
1. Clarifying the programming language if not specified
2. Adding requirements for error handling and edge cases
3. Specifying if documentation is needed
4. Asking for proper formatting and modular design
5. Requesting appropriate comments and variable naming

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
		CategoryCreative: {
			SystemPrompt: "You are a creative writing and content creation expert.",
			Template: `Consider this creative request: "{prompt}"

Enhance this request by:
1. Clarifying the style, tone, and format
2. Specifying target audience if relevant
3. Adding structure guidance
4. Including any relevant constraints
5. Specifying length or detail level

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
		CategoryAnalytical: {
			SystemPrompt: "You are an analytical expert specializing in structured thinking and clear analysis.",
			Template: `Consider this analytical request: "{prompt}"

Enhance this request by:
1. Adding structure for step-by-step reasoning
2. Specifying the depth of analysis needed
3. Clarifying what metrics or frameworks to use
4. Adding requirements for evidence or citations
5. Requesting specific output format if helpful

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
		CategoryDefault: {
			SystemPrompt: "You are an expert prompt engineer who improves user prompts for better results.",
			Template: `Consider this prompt: "{prompt}"

Enhance this prompt to be more effective by:
1. Adding relevant context or specificity
2. Clarifying any ambiguous aspects
3. Structuring multi-part requests logically
4. Adding appropriate constraints or guidance
5. Preserving the original intent while improving clarity

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
	}
}
