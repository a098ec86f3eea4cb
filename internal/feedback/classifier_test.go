package feedback

import (
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		text     string
		expected []Category
	}{
		{
			name:     "empty text yields no categories",
			text:     "",
			expected: nil,
		},
		{
			name:     "whitespace only yields no categories",
			text:     "   \t ",
			expected: nil,
		},
		{
			name:     "unmatched text yields other",
			text:     "just not feeling it",
			expected: []Category{CategoryOther},
		},
		{
			name:     "generic maps to specificity",
			text:     "way too generic",
			expected: []Category{CategorySpecificity},
		},
		{
			name:     "specificity plus content focus in rule order",
			text:     "Too generic - should mention India-Pakistan",
			expected: []Category{CategorySpecificity, CategoryContentFocus},
		},
		{
			name:     "case insensitive",
			text:     "TOO LONG",
			expected: []Category{CategoryLength},
		},
		{
			name:     "short matches both length and abbreviations",
			text:     "too short",
			expected: []Category{CategoryLength, CategoryAbbreviations},
		},
		{
			name:     "location keywords",
			text:     "wrong folder, should be elsewhere",
			expected: []Category{CategoryLocation},
		},
		{
			name:     "missing info",
			text:     "please include the year",
			expected: []Category{CategoryMissingInfo},
		},
		{
			name:     "context",
			text:     "needs more background",
			expected: []Category{CategoryContext},
		},
		{
			name:     "deduplicates repeated keywords",
			text:     "generic and vague and unclear",
			expected: []Category{CategorySpecificity},
		},
		{
			name: "many categories preserve rule order",
			text: "too long, wrong path, missing the topic",
			expected: []Category{
				CategoryLength,
				CategoryLocation,
				CategoryContentFocus,
				CategoryMissingInfo,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			if len(got) != len(tt.expected) {
				t.Fatalf("Classify(%q) = %v, want %v", tt.text, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Classify(%q)[%d] = %v, want %v", tt.text, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	c := NewClassifier(nil)
	for i := 0; i < 5; i++ {
		got := c.Classify("too generic and too long")
		if len(got) != 2 || got[0] != CategorySpecificity || got[1] != CategoryLength {
			t.Fatalf("iteration %d: got %v", i, got)
		}
	}
}

func TestCustomRules(t *testing.T) {
	rules := []Rule{
		{Category: CategoryLength, Keywords: []string{"tiny"}},
		{Category: CategorySpecificity, Keywords: []string{"fuzzy"}},
	}
	c := NewClassifier(rules)

	got := c.Classify("fuzzy and tiny")
	if len(got) != 2 || got[0] != CategoryLength || got[1] != CategorySpecificity {
		t.Fatalf("custom rule order not respected: %v", got)
	}

	// Default keyword no longer present in custom rules.
	got = c.Classify("too generic")
	if len(got) != 1 || got[0] != CategoryOther {
		t.Fatalf("expected other for unmatched custom rules, got %v", got)
	}
}

func TestJoinSplit(t *testing.T) {
	tests := []struct {
		cats []Category
		s    string
	}{
		{nil, ""},
		{[]Category{CategoryOther}, "other"},
		{[]Category{CategorySpecificity, CategoryContentFocus}, "specificity|content_focus"},
	}

	for _, tt := range tests {
		if got := Join(tt.cats); got != tt.s {
			t.Errorf("Join(%v) = %q, want %q", tt.cats, got, tt.s)
		}
		back := Split(tt.s)
		if len(back) != len(tt.cats) {
			t.Errorf("Split(%q) = %v, want %v", tt.s, back, tt.cats)
			continue
		}
		for i := range back {
			if back[i] != tt.cats[i] {
				t.Errorf("Split(%q)[%d] = %v, want %v", tt.s, i, back[i], tt.cats[i])
			}
		}
	}
}
