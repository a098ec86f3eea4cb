package naming

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/runger/dorg/internal/analyzer"
)

// PromptBuilder renders naming prompts from an analysis payload and the
// abbreviation taxonomy.
type PromptBuilder struct {
	taxonomy Taxonomy
}

// NewPromptBuilder creates a builder over the given taxonomy.
func NewPromptBuilder(tax Taxonomy) *PromptBuilder {
	return &PromptBuilder{taxonomy: tax}
}

// Build renders the full naming prompt. Feedback from earlier rejected
// attempts, oldest first, is appended so the model avoids repeating the
// same mistakes.
func (b *PromptBuilder) Build(p *analyzer.Payload, feedback []string) string {
	var sb strings.Builder

	sb.WriteString("Analyze this directory and generate a single descriptive camelCase name for it.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- camelCase, starting with a lowercase letter\n")
	sb.WriteString("- letters and digits only, no spaces or punctuation\n")
	fmt.Fprintf(&sb, "- at most %d characters\n", MaxNameLength)
	sb.WriteString("- start with a content-type abbreviation, then context abbreviations, then distinguishing detail\n")
	sb.WriteString("- respond with the name only, nothing else\n\n")

	sb.WriteString("Abbreviation vocabulary:\n")
	writeVocab(&sb, "content types", b.taxonomy.ContentTypes)
	writeVocab(&sb, "context", b.taxonomy.ContextIndicators)
	writeVocab(&sb, "temporal", b.taxonomy.TemporalMarkers)
	writeVocab(&sb, "quality", b.taxonomy.QualityIndicators)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Directory: %s\n\n", p.DirectoryPath)

	if tree, err := json.MarshalIndent(p.FileTree, "", "  "); err == nil {
		sb.WriteString("File tree:\n")
		sb.Write(tree)
		sb.WriteString("\n\n")
	}

	if len(p.TextSnippets) > 0 {
		sb.WriteString("Content samples")
		if p.Metadata.ExtractionType == analyzer.ExtractEnd {
			sb.WriteString(" (taken from the end of files)")
		}
		sb.WriteString(":\n")
		for _, name := range sortedKeys(p.TextSnippets) {
			fmt.Fprintf(&sb, "--- %s ---\n%s\n", name, p.TextSnippets[name])
		}
		sb.WriteString("\n")
	}

	if len(feedback) > 0 {
		sb.WriteString("Previous names were rejected with this feedback:\n")
		for i, f := range feedback {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, f)
		}
		sb.WriteString("Address every point above in the new name.\n")
	}

	return sb.String()
}

func writeVocab(sb *strings.Builder, label string, m map[string]string) {
	fmt.Fprintf(sb, "  %s: ", label)
	pairs := make([]string, 0, len(m))
	for word, abbrev := range m {
		pairs = append(pairs, fmt.Sprintf("%s=%s", word, abbrev))
	}
	sort.Strings(pairs)
	sb.WriteString(strings.Join(pairs, ", "))
	sb.WriteString("\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
