// Package analyzer produces the content summary a naming generator works
// from: a depth-capped file tree snapshot and short text snippets pulled
// from readable files.
package analyzer

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extraction strategies for text snippets. Retries switch to the end of
// files to surface different context than the first attempt saw.
const (
	ExtractBeginning = "beginning_of_files"
	ExtractEnd       = "end_of_files"
)

// Defaults for analysis limits.
const (
	DefaultMaxDepth       = 3
	DefaultMaxFiles       = 25
	DefaultMaxSnippetLen  = 500
	DefaultLinesToExtract = 10
)

// defaultReadableExts lists extensions whose content is worth sampling.
var defaultReadableExts = []string{
	".txt", ".md", ".py", ".js", ".html", ".css", ".json", ".xml",
	".yaml", ".yml", ".cfg", ".ini", ".log", ".csv", ".tsv",
}

// Metadata summarizes one analysis pass.
type Metadata struct {
	TotalFilesAnalyzed int    `json:"total_files_analyzed"`
	MaxDepth           int    `json:"max_depth"`
	SnippetMaxLength   int    `json:"snippet_max_length"`
	LinesExtracted     int    `json:"lines_extracted"`
	ExtractionType     string `json:"extraction_type"`
}

// Payload is the complete analysis handed to a name generator.
// FileTree nests directories as maps and annotates files with a
// human-readable size and extension.
type Payload struct {
	DirectoryPath string            `json:"directory_path"`
	FileTree      map[string]any    `json:"file_tree"`
	TextSnippets  map[string]string `json:"text_snippets"`
	Metadata      Metadata          `json:"analysis_metadata"`
}

// Analyzer scans a directory within configured limits.
type Analyzer struct {
	MaxDepth       int
	MaxFiles       int
	MaxSnippetLen  int
	LinesToExtract int

	readable map[string]bool
}

// New creates an analyzer with the default limits.
func New() *Analyzer {
	return NewWithLimits(DefaultMaxDepth, DefaultMaxFiles, DefaultMaxSnippetLen, DefaultLinesToExtract)
}

// NewWithLimits creates an analyzer with explicit limits; non-positive
// values fall back to the defaults.
func NewWithLimits(maxDepth, maxFiles, maxSnippetLen, lines int) *Analyzer {
	a := &Analyzer{
		MaxDepth:       maxDepth,
		MaxFiles:       maxFiles,
		MaxSnippetLen:  maxSnippetLen,
		LinesToExtract: lines,
		readable:       make(map[string]bool, len(defaultReadableExts)),
	}
	if a.MaxDepth <= 0 {
		a.MaxDepth = DefaultMaxDepth
	}
	if a.MaxFiles <= 0 {
		a.MaxFiles = DefaultMaxFiles
	}
	if a.MaxSnippetLen <= 0 {
		a.MaxSnippetLen = DefaultMaxSnippetLen
	}
	if a.LinesToExtract <= 0 {
		a.LinesToExtract = DefaultLinesToExtract
	}
	for _, ext := range defaultReadableExts {
		a.readable[ext] = true
	}
	return a
}

// Analyze builds the payload for the first naming attempt, sampling the
// beginning of each readable file.
func (a *Analyzer) Analyze(dir string) (*Payload, error) {
	return a.analyze(dir, false)
}

// AnalyzeRetry builds the payload for a retry attempt, sampling the end
// of each readable file for fresh context.
func (a *Analyzer) AnalyzeRetry(dir string) (*Payload, error) {
	return a.analyze(dir, true)
}

func (a *Analyzer) analyze(dir string, fromEnd bool) (*Payload, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	snippets, err := a.extractSnippets(dir, fromEnd)
	if err != nil {
		return nil, err
	}

	extraction := ExtractBeginning
	if fromEnd {
		extraction = ExtractEnd
	}

	return &Payload{
		DirectoryPath: dir,
		FileTree:      a.buildTree(dir, 0),
		TextSnippets:  snippets,
		Metadata: Metadata{
			TotalFilesAnalyzed: len(snippets),
			MaxDepth:           a.MaxDepth,
			SnippetMaxLength:   a.MaxSnippetLen,
			LinesExtracted:     a.LinesToExtract,
			ExtractionType:     extraction,
		},
	}, nil
}

// buildTree creates the nested snapshot. Directories sort before files,
// both case-insensitively by name.
func (a *Analyzer) buildTree(dir string, depth int) map[string]any {
	if depth > a.MaxDepth {
		return map[string]any{"...": "max_depth_reached"}
	}

	tree := make(map[string]any)
	entries, err := os.ReadDir(dir)
	if err != nil {
		tree["[ACCESS_DENIED]"] = "permission_error"
		return tree
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	for _, e := range entries {
		if e.IsDir() {
			tree[e.Name()+"/"] = a.buildTree(filepath.Join(dir, e.Name()), depth+1)
			continue
		}
		info, err := e.Info()
		if err != nil {
			tree[e.Name()] = "unknown_size"
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == "" {
			ext = "no_ext"
		}
		tree[e.Name()] = fmt.Sprintf("%s | %s", formatSize(info.Size()), ext)
	}
	return tree
}

// extractSnippets walks the tree and samples up to MaxFiles readable
// files. Unreadable files are skipped, never fatal.
func (a *Analyzer) extractSnippets(root string, fromEnd bool) (map[string]string, error) {
	snippets := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if len(snippets) >= a.MaxFiles {
			return filepath.SkipAll
		}
		if d.IsDir() || !a.readable[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		snippet, err := a.readSnippet(path, fromEnd)
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		kind := "beginning"
		if fromEnd {
			kind = "end"
		}
		snippets[rel] = fmt.Sprintf("[%s] %s", kind, snippet)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return snippets, nil
}

func (a *Analyzer) readSnippet(path string, fromEnd bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if !fromEnd && len(lines) >= a.LinesToExtract {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if fromEnd && len(lines) > a.LinesToExtract {
		lines = lines[len(lines)-a.LinesToExtract:]
	}
	snippet := strings.Join(lines, "\n")
	if len(snippet) > a.MaxSnippetLen {
		if fromEnd {
			snippet = snippet[len(snippet)-a.MaxSnippetLen:]
		} else {
			snippet = snippet[:a.MaxSnippetLen]
		}
	}
	return snippet, nil
}

// formatSize renders a byte count in human-readable form.
func formatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f%s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1fTB", size)
}
