// Package feedback classifies free-text user feedback about generated
// directory names into coarse categories for A/B analysis.
package feedback

import "strings"

// Category is a coarse classification tag applied to user feedback.
type Category string

const (
	CategorySpecificity   Category = "specificity"
	CategoryLength        Category = "length"
	CategoryLocation      Category = "location"
	CategoryContentFocus  Category = "content_focus"
	CategoryAbbreviations Category = "abbreviations"
	CategoryMissingInfo   Category = "missing_info"
	CategoryContext       Category = "context"
	// CategoryOther is assigned when non-empty feedback matches no rule.
	CategoryOther Category = "other"
)

// Rule maps a set of case-insensitive keywords to a category.
// Rules are evaluated in order; the order of the rule list determines
// the order of categories in classification results.
type Rule struct {
	Category Category
	Keywords []string
}

// DefaultRules returns the built-in classification rules.
// Keywords are matched as case-insensitive substrings. A keyword may
// appear under more than one category ("short" concerns both length
// and abbreviation expansion).
func DefaultRules() []Rule {
	return []Rule{
		{Category: CategorySpecificity, Keywords: []string{"generic", "specific", "vague", "unclear"}},
		{Category: CategoryLength, Keywords: []string{"long", "short", "length", "brief", "verbose"}},
		{Category: CategoryLocation, Keywords: []string{"location", "directory", "path", "folder", "place"}},
		{Category: CategoryContentFocus, Keywords: []string{"topic", "subject", "focus", "about", "theme", "mention"}},
		{Category: CategoryAbbreviations, Keywords: []string{"abbreviation", "abbrev", "short", "expand"}},
		{Category: CategoryMissingInfo, Keywords: []string{"missing", "include", "add"}},
		{Category: CategoryContext, Keywords: []string{"context", "background", "situation"}},
	}
}

// Classifier maps free-text feedback to an ordered, de-duplicated set
// of categories. Classification is a pure function of the input text.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the given rules.
// Nil or empty rules fall back to DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the categories matching the given feedback text.
// Empty (or all-whitespace) text yields nil, not CategoryOther.
// Non-empty text matching no rule yields exactly [CategoryOther].
// Categories appear in rule order and each appears at most once.
func (c *Classifier) Classify(text string) []Category {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	lower := strings.ToLower(trimmed)
	var cats []Category
	seen := make(map[Category]bool)

	for _, rule := range c.rules {
		if seen[rule.Category] {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				cats = append(cats, rule.Category)
				seen[rule.Category] = true
				break
			}
		}
	}

	if len(cats) == 0 {
		return []Category{CategoryOther}
	}
	return cats
}

// Join serializes categories in the pipe-joined log format.
func Join(cats []Category) string {
	if len(cats) == 0 {
		return ""
	}
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, "|")
}

// Split parses the pipe-joined log format back into categories.
func Split(s string) []Category {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	cats := make([]Category, len(parts))
	for i, p := range parts {
		cats[i] = Category(p)
	}
	return cats
}
