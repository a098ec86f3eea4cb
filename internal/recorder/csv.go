package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/runger/dorg/internal/feedback"
)

// DefaultLogName is the file name of the CSV naming log.
const DefaultLogName = "naming_ab_testing_log.csv"

// CSVRecorder appends attempt records to a flat CSV file with a header
// row. A single mutex serializes writers so concurrent sessions never
// produce partial or merged rows.
type CSVRecorder struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *csv.Writer
}

// NewCSVRecorder opens (or creates) the log at path. The header row is
// written when the file is created or empty.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	r := &CSVRecorder{path: path, file: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log: %w", err)
	}
	if info.Size() == 0 {
		if err := r.w.Write(Columns); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write log header: %w", err)
		}
		r.w.Flush()
		if err := r.w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to flush log header: %w", err)
		}
	}

	return r, nil
}

// Path returns the log file path.
func (r *CSVRecorder) Path() string {
	return r.path
}

// Append writes one attempt as a single CSV row. The row is flushed
// before returning so a crash never leaves a partial record buffered.
func (r *CSVRecorder) Append(a *Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return fmt.Errorf("recorder is closed")
	}

	if err := r.w.Write(encodeRow(a)); err != nil {
		return fmt.Errorf("failed to append log row: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("failed to flush log row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
// It is safe to call Close multiple times.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	r.w.Flush()
	err := r.w.Error()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	r.file = nil
	return err
}

func encodeRow(a *Attempt) []string {
	return []string{
		a.Timestamp.Format(TimestampLayout),
		a.SessionID,
		strconv.Itoa(a.AttemptNumber),
		a.SourcePath,
		a.GeneratedName,
		strconv.Itoa(a.GeneratedNameLength()),
		a.OptimalParentPath,
		string(a.UserAction),
		a.UserFeedback,
		a.FinalDestination,
		strconv.Itoa(a.FilesAnalyzed),
		yesNo(a.HasAudioFiles),
		yesNo(a.NewsTranscript),
		a.ContentTypePrefix(),
		strconv.Itoa(a.FeedbackLength()),
		feedback.Join(a.FeedbackCategories),
	}
}

// ReadAll parses a CSV naming log back into attempt records.
// It returns an empty slice for a log containing only the header.
func ReadAll(path string) ([]Attempt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse log: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("log %s has no header row", path)
	}

	attempts := make([]Attempt, 0, len(rows)-1)
	for i, row := range rows[1:] {
		a, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("log row %d: %w", i+1, err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func decodeRow(row []string) (Attempt, error) {
	if len(row) != len(Columns) {
		return Attempt{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}

	ts, err := time.ParseInLocation(TimestampLayout, row[0], time.Local)
	if err != nil {
		return Attempt{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}
	attemptNumber, err := strconv.Atoi(row[2])
	if err != nil {
		return Attempt{}, fmt.Errorf("bad attempt_number %q: %w", row[2], err)
	}
	filesAnalyzed, err := strconv.Atoi(row[10])
	if err != nil {
		return Attempt{}, fmt.Errorf("bad files_analyzed %q: %w", row[10], err)
	}

	return Attempt{
		Timestamp:          ts,
		SessionID:          row[1],
		AttemptNumber:      attemptNumber,
		SourcePath:         row[3],
		GeneratedName:      row[4],
		OptimalParentPath:  row[6],
		UserAction:         Action(row[7]),
		UserFeedback:       row[8],
		FinalDestination:   row[9],
		FilesAnalyzed:      filesAnalyzed,
		HasAudioFiles:      row[11] == "yes",
		NewsTranscript:     row[12] == "yes",
		FeedbackCategories: feedback.Split(row[15]),
	}, nil
}
