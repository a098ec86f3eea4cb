package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/runger/dorg/internal/feedback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAttempt(sessionID string, n int) *Attempt {
	return &Attempt{
		Timestamp:          time.Date(2025, 6, 1, 14, 30, 5, 123456000, time.Local),
		SessionID:          sessionID,
		AttemptNumber:      n,
		SourcePath:         "/home/user/News/transcripts/raw",
		GeneratedName:      "transNewsIndPakEscalationAnalysis",
		OptimalParentPath:  "/data/filetree/roots/documents/Text Documents",
		UserAction:         ActionRetry,
		UserFeedback:       "Too generic - should mention India-Pakistan",
		FilesAnalyzed:      12,
		HasAudioFiles:      true,
		NewsTranscript:     true,
		FeedbackCategories: []feedback.Category{feedback.CategorySpecificity, feedback.CategoryContentFocus},
	}
}

func TestCSVRecorder_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultLogName)

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Append(sampleAttempt("s1", 1)))
	require.NoError(t, r.Close())

	// Re-opening an existing log must not duplicate the header.
	r, err = NewCSVRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Append(sampleAttempt("s1", 2)))
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records
	assert.Equal(t, Columns, rows[0])
}

func TestCSVRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultLogName)

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)

	want := make([]*Attempt, 0, 4)
	for i := 1; i <= 3; i++ {
		a := sampleAttempt("20250601_143005", i)
		a.Timestamp = a.Timestamp.Add(time.Duration(i) * time.Second)
		want = append(want, a)
	}
	terminal := sampleAttempt("20250601_143005", 3)
	terminal.UserAction = ActionMovedSuccessfully
	terminal.UserFeedback = ""
	terminal.FeedbackCategories = nil
	terminal.FinalDestination = "/data/filetree/roots/documents/Text Documents/transNewsIndPakEscalationAnalysis"
	want = append(want, terminal)

	for _, a := range want {
		require.NoError(t, r.Append(a))
	}
	require.NoError(t, r.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i, a := range want {
		assert.True(t, got[i].Timestamp.Equal(a.Timestamp), "row %d timestamp", i)
		assert.Equal(t, a.SessionID, got[i].SessionID)
		assert.Equal(t, a.AttemptNumber, got[i].AttemptNumber)
		assert.Equal(t, a.SourcePath, got[i].SourcePath)
		assert.Equal(t, a.GeneratedName, got[i].GeneratedName)
		assert.Equal(t, a.OptimalParentPath, got[i].OptimalParentPath)
		assert.Equal(t, a.UserAction, got[i].UserAction)
		assert.Equal(t, a.UserFeedback, got[i].UserFeedback)
		assert.Equal(t, a.FinalDestination, got[i].FinalDestination)
		assert.Equal(t, a.FilesAnalyzed, got[i].FilesAnalyzed)
		assert.Equal(t, a.HasAudioFiles, got[i].HasAudioFiles)
		assert.Equal(t, a.NewsTranscript, got[i].NewsTranscript)
		assert.Equal(t, a.FeedbackCategories, got[i].FeedbackCategories)
	}
}

func TestCSVRecorder_FeedbackWithCommasAndNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultLogName)

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)

	a := sampleAttempt("s2", 1)
	a.UserFeedback = "too long, and\nthe \"focus\" is wrong"
	a.FeedbackCategories = []feedback.Category{feedback.CategoryLength, feedback.CategoryContentFocus}
	require.NoError(t, r.Append(a))
	require.NoError(t, r.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.UserFeedback, got[0].UserFeedback)
}

func TestCSVRecorder_ConcurrentSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultLogName)

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)

	const sessions = 8
	const perSession = 10

	var wg sync.WaitGroup
	for s := 0; s < sessions; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for n := 1; n <= perSession; n++ {
				a := sampleAttempt(fmt.Sprintf("session-%d", s), n)
				assert.NoError(t, r.Append(a))
			}
		}(s)
	}
	wg.Wait()
	require.NoError(t, r.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, sessions*perSession)

	// Every row must have parsed cleanly with the full column set;
	// per-session attempt numbers must all be present.
	counts := make(map[string]int)
	for _, a := range got {
		counts[a.SessionID]++
	}
	for s := 0; s < sessions; s++ {
		assert.Equal(t, perSession, counts[fmt.Sprintf("session-%d", s)])
	}
}

func TestCSVRecorder_AppendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultLogName)

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	err = r.Append(sampleAttempt("s3", 1))
	assert.Error(t, err)
	assert.NoError(t, r.Close()) // idempotent
}

func TestReadAll_MissingFile(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
