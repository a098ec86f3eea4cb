package naming

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/runger/dorg/internal/analyzer"
	"github.com/runger/dorg/internal/orchestrator"
)

// DefaultTimeout bounds a single naming request to the Claude CLI.
const DefaultTimeout = 60 * time.Second

// ClaudeGenerator produces directory names by analyzing the source
// directory and querying the Claude CLI. It implements
// orchestrator.Generator.
type ClaudeGenerator struct {
	analyzer *analyzer.Analyzer
	builder  *PromptBuilder
	dataHome string
	model    string
	timeout  time.Duration
	now      func() time.Time

	// runner is swappable for tests; defaults to the claude CLI.
	runner func(ctx context.Context, prompt string) (string, error)
}

// GeneratorOption configures a ClaudeGenerator.
type GeneratorOption func(*ClaudeGenerator)

// WithModel selects a specific Claude model.
func WithModel(model string) GeneratorOption {
	return func(g *ClaudeGenerator) { g.model = model }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *ClaudeGenerator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithAnalyzer replaces the default analyzer.
func WithAnalyzer(a *analyzer.Analyzer) GeneratorOption {
	return func(g *ClaudeGenerator) { g.analyzer = a }
}

// WithRunner replaces the CLI invocation, used by tests.
func WithRunner(fn func(ctx context.Context, prompt string) (string, error)) GeneratorOption {
	return func(g *ClaudeGenerator) { g.runner = fn }
}

// WithClock overrides the time source for fallback names.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *ClaudeGenerator) { g.now = now }
}

// NewClaudeGenerator creates a generator placing names under dataHome.
func NewClaudeGenerator(dataHome string, opts ...GeneratorOption) *ClaudeGenerator {
	g := &ClaudeGenerator{
		analyzer: analyzer.New(),
		builder:  NewPromptBuilder(DefaultTaxonomy()),
		dataHome: dataHome,
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.runner == nil {
		g.runner = g.queryCLI
	}
	return g
}

// Available reports whether the claude CLI is on PATH.
func (g *ClaudeGenerator) Available() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

// Generate analyzes the source directory and asks the model for a name.
// Retry attempts re-analyze from the end of files so the model sees
// content the first attempt missed. An invalid model answer falls back
// to a deterministic date-stamped name rather than failing the attempt.
func (g *ClaudeGenerator) Generate(ctx context.Context, req *orchestrator.GenerateRequest) (*orchestrator.GenerateResult, error) {
	var payload *analyzer.Payload
	var err error
	if req.AttemptNumber > 1 {
		payload, err = g.analyzer.AnalyzeRetry(req.SourcePath)
	} else {
		payload, err = g.analyzer.Analyze(req.SourcePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", req.SourcePath, err)
	}

	prompt := g.builder.Build(payload, req.Feedback)
	raw, err := g.runner(ctx, prompt)
	if err != nil {
		return nil, err
	}

	name := CleanResponse(raw)
	if !ValidateName(name) {
		name = FallbackName(g.now())
	}

	return &orchestrator.GenerateResult{
		Name:           name,
		OptimalParent:  OptimalParent(name, g.dataHome, req.SourcePath),
		FilesAnalyzed:  payload.Metadata.TotalFilesAnalyzed,
		HasAudioFiles:  req.HasAudioFiles,
		NewsTranscript: IsNewsTranscriptSource(req.SourcePath),
	}, nil
}

// queryCLI sends the prompt to the claude CLI over stdin.
func (g *ClaudeGenerator) queryCLI(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	args := []string{"--print"}
	if g.model != "" {
		args = append(args, "--model", g.model)
	}

	cmd := exec.CommandContext(ctx, "claude", args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("timeout: naming request took longer than %v", g.timeout)
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("claude error: %s", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to get response from claude: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// CleanResponse extracts the candidate name from a raw model answer:
// last non-empty line, stripped of quotes, backticks, and trailing
// punctuation.
func CleanResponse(raw string) string {
	var name string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			name = line
		}
	}
	name = strings.Trim(name, "`\"'")
	name = strings.TrimRight(name, ".!,")
	return name
}
