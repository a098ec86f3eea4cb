package naming

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/runger/dorg/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("climate policy interview\nrecorded 2025"), 0o644))
	return dir
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)
	}
}

func TestGenerateValidName(t *testing.T) {
	dir := seedDir(t)
	var gotPrompt string
	g := NewClaudeGenerator("/data", WithRunner(func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "audIntvClimatePolicy", nil
	}))

	res, err := g.Generate(context.Background(), &orchestrator.GenerateRequest{
		SourcePath:    dir,
		AttemptNumber: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "audIntvClimatePolicy", res.Name)
	assert.Equal(t, filepath.Join("/data", "filetree", "roots", "audio"), res.OptimalParent)
	assert.Equal(t, 1, res.FilesAnalyzed)
	assert.False(t, res.NewsTranscript)

	assert.Contains(t, gotPrompt, dir)
	assert.Contains(t, gotPrompt, "climate policy interview")
	assert.Contains(t, gotPrompt, "audio=aud")
}

func TestGenerateFeedbackInPrompt(t *testing.T) {
	dir := seedDir(t)
	var gotPrompt string
	g := NewClaudeGenerator("/data", WithRunner(func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "audIntvClimatePolicyIndia", nil
	}))

	_, err := g.Generate(context.Background(), &orchestrator.GenerateRequest{
		SourcePath:    dir,
		AttemptNumber: 2,
		Feedback:      []string{"too generic", "mention the country"},
	})
	require.NoError(t, err)

	assert.Contains(t, gotPrompt, "1. too generic")
	assert.Contains(t, gotPrompt, "2. mention the country")
	// Retry attempts sample file ends.
	assert.Contains(t, gotPrompt, "taken from the end of files")
}

func TestGenerateInvalidNameFallsBack(t *testing.T) {
	dir := seedDir(t)
	g := NewClaudeGenerator("/data",
		WithRunner(func(_ context.Context, _ string) (string, error) {
			return "Not A Valid Name!", nil
		}),
		WithClock(fixedClock()))

	res, err := g.Generate(context.Background(), &orchestrator.GenerateRequest{
		SourcePath:    dir,
		AttemptNumber: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "processedAudio20250714", res.Name)
}

func TestGenerateRunnerError(t *testing.T) {
	dir := seedDir(t)
	g := NewClaudeGenerator("/data", WithRunner(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("model unavailable")
	}))

	_, err := g.Generate(context.Background(), &orchestrator.GenerateRequest{
		SourcePath:    dir,
		AttemptNumber: 1,
	})
	assert.Error(t, err)
}

func TestGenerateMissingDirectory(t *testing.T) {
	g := NewClaudeGenerator("/data", WithRunner(func(_ context.Context, _ string) (string, error) {
		t.Fatal("runner must not be called when analysis fails")
		return "", nil
	}))

	_, err := g.Generate(context.Background(), &orchestrator.GenerateRequest{
		SourcePath:    filepath.Join(t.TempDir(), "missing"),
		AttemptNumber: 1,
	})
	assert.Error(t, err)
}

func TestGenerateNewsTranscriptSource(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "News", "transcripts", "july")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "story.txt"), []byte("headline"), 0o644))

	g := NewClaudeGenerator("/data", WithRunner(func(_ context.Context, _ string) (string, error) {
		return "audPodShow", nil
	}))

	res, err := g.Generate(context.Background(), &orchestrator.GenerateRequest{
		SourcePath:    dir,
		AttemptNumber: 1,
	})
	require.NoError(t, err)

	assert.True(t, res.NewsTranscript)
	assert.Equal(t,
		filepath.Join("/data", "filetree", "roots", "documents", "Text Documents"),
		res.OptimalParent)
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"audPodClimatePolicy", "audPodClimatePolicy"},
		{"  audPodClimatePolicy  ", "audPodClimatePolicy"},
		{"`audPodClimatePolicy`", "audPodClimatePolicy"},
		{"\"audPodClimatePolicy\"", "audPodClimatePolicy"},
		{"Here is the name:\naudPodClimatePolicy", "audPodClimatePolicy"},
		{"audPodClimatePolicy.", "audPodClimatePolicy"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanResponse(tt.raw); got != tt.want {
			t.Errorf("CleanResponse(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPromptIncludesRules(t *testing.T) {
	b := NewPromptBuilder(DefaultTaxonomy())
	dir := seedDir(t)

	g := NewClaudeGenerator("/data")
	payload, err := g.analyzer.Analyze(dir)
	require.NoError(t, err)

	prompt := b.Build(payload, nil)
	assert.Contains(t, prompt, "camelCase")
	assert.Contains(t, prompt, "75")
	assert.NotContains(t, prompt, "Previous names were rejected")
	assert.True(t, strings.Contains(prompt, "meeting=mtg"))
}
