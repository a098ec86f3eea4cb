// Package recorder owns the on-disk schema of the naming A/B-testing log
// and provides append-only backends for it. One record is written per
// naming attempt and per post-accept placement event; records are never
// rewritten or deleted.
package recorder

import (
	"time"
	"unicode/utf8"

	"github.com/runger/dorg/internal/feedback"
)

// TimestampLayout is the ISO-8601 local timestamp format with
// microsecond precision used in the log.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// SessionIDLayout formats a session start time into a session ID.
const SessionIDLayout = "20060102_150405"

// NewSessionID derives a session ID from the session start time.
func NewSessionID(start time.Time) string {
	return start.Format(SessionIDLayout)
}

// Action is the closed vocabulary of user_action values.
type Action string

const (
	ActionAccept            Action = "accept"
	ActionRetry             Action = "retry"
	ActionCancel            Action = "cancel"
	ActionGenerationFailed  Action = "generation_failed"
	ActionMaxRetriesReached Action = "max_retries_reached"
	ActionMovedSuccessfully Action = "moved_successfully"
	ActionMoveFailed        Action = "move_failed"
	ActionLocalRenameOK     Action = "local_rename_success"
	ActionRenameFailed      Action = "rename_failed"
	ActionTotalFailure      Action = "total_failure"
)

// contentTypePrefixLen is how many leading characters of a generated
// name are recorded as its content-type prefix.
const contentTypePrefixLen = 4

// Attempt is one row of the naming log: a single generated-name proposal
// and the decision (or placement outcome) attached to it.
type Attempt struct {
	Timestamp         time.Time
	SessionID         string
	AttemptNumber     int
	SourcePath        string
	GeneratedName     string
	OptimalParentPath string
	UserAction        Action
	UserFeedback      string
	FinalDestination  string
	FilesAnalyzed     int
	HasAudioFiles     bool
	NewsTranscript    bool
	// FeedbackCategories is re-derivable from UserFeedback; it is stored
	// so the log is analyzable without re-running classification.
	FeedbackCategories []feedback.Category
}

// GeneratedNameLength is the derived length column.
func (a *Attempt) GeneratedNameLength() int {
	return utf8.RuneCountInString(a.GeneratedName)
}

// FeedbackLength is the derived feedback length column.
func (a *Attempt) FeedbackLength() int {
	return utf8.RuneCountInString(a.UserFeedback)
}

// ContentTypePrefix returns the leading characters of the generated
// name, up to four, used to bucket attempts by content type.
func (a *Attempt) ContentTypePrefix() string {
	runes := []rune(a.GeneratedName)
	if len(runes) <= contentTypePrefixLen {
		return a.GeneratedName
	}
	return string(runes[:contentTypePrefixLen])
}

// Recorder appends attempt records to a durable log.
// Implementations must serialize writes so rows from concurrent
// sessions are never interleaved or truncated.
type Recorder interface {
	Append(a *Attempt) error
	Close() error
}

// Columns is the fixed column order of the log schema.
var Columns = []string{
	"timestamp",
	"session_id",
	"attempt_number",
	"source_path",
	"generated_name",
	"generated_name_length",
	"optimal_parent_path",
	"user_action",
	"user_feedback",
	"final_destination",
	"files_analyzed",
	"has_audio_files",
	"source_is_news_transcript",
	"content_type_prefix",
	"feedback_length",
	"feedback_categories",
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
