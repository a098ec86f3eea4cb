// Package session implements the naming-attempt state machine for one
// source directory. A session accumulates bounded naming attempts, feeds
// every decision and placement outcome to the recorder, and ends in
// exactly one terminal action.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/runger/dorg/internal/feedback"
	"github.com/runger/dorg/internal/recorder"
)

// State is a phase of a naming session.
type State string

const (
	StateAwaitingCandidate State = "awaiting_candidate"
	StateAwaitingDecision  State = "awaiting_decision"
	StateAwaitingPlacement State = "awaiting_placement"
	StateClosed            State = "closed"
)

// DefaultMaxAttempts bounds the retry loop when no explicit limit is set.
const DefaultMaxAttempts = 3

var (
	// ErrInvalidInput indicates malformed session start parameters.
	ErrInvalidInput = errors.New("invalid session input")
	// ErrRetryBudgetExceeded indicates a candidate was submitted past
	// the attempt limit.
	ErrRetryBudgetExceeded = errors.New("retry budget exceeded")
	// ErrInvalidTransition indicates a decision or placement call that
	// is not legal in the session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Metadata is analysis context passed through unchanged into every
// record of the session.
type Metadata struct {
	FilesAnalyzed  int
	HasAudioFiles  bool
	NewsTranscript bool
}

// Session tracks the naming attempts for one source directory.
// A session is driven by a single goroutine; sessions for different
// directories may run concurrently because the recorder serializes rows.
type Session struct {
	id          string
	sourcePath  string
	meta        Metadata
	maxAttempts int

	rec    recorder.Recorder
	clf    *feedback.Classifier
	logger *slog.Logger
	now    func() time.Time

	state         State
	attempt       int
	candidate     string
	optimalParent string
	placementMiss bool // a placement attempt already failed
	outcome       recorder.Action
	finalDest     string
}

// Option configures a session.
type Option func(*Session)

// WithMaxAttempts overrides the retry budget.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClassifier overrides the feedback classifier.
func WithClassifier(c *feedback.Classifier) Option {
	return func(s *Session) { s.clf = c }
}

// WithLogger sets the diagnostics logger used to report recorder
// failures without interrupting the naming workflow.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Start creates a session for sourcePath. The session ID is derived from
// the start time; the attempt counter starts at zero.
func Start(sourcePath string, meta Metadata, rec recorder.Recorder, opts ...Option) (*Session, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("%w: source path is empty", ErrInvalidInput)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: recorder is required", ErrInvalidInput)
	}

	s := &Session{
		sourcePath:  sourcePath,
		meta:        meta,
		maxAttempts: DefaultMaxAttempts,
		rec:         rec,
		clf:         feedback.NewClassifier(nil),
		logger:      slog.Default(),
		now:         time.Now,
		state:       StateAwaitingCandidate,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = recorder.NewSessionID(s.now())
	return s, nil
}

// ID returns the session identifier (start time, YYYYMMDD_HHMMSS).
func (s *Session) ID() string { return s.id }

// State returns the current phase.
func (s *Session) State() State { return s.state }

// AttemptNumber returns the number of candidates submitted so far.
func (s *Session) AttemptNumber() int { return s.attempt }

// MaxAttempts returns the retry budget.
func (s *Session) MaxAttempts() int { return s.maxAttempts }

// OptimalParent returns the parent path proposed with the current
// candidate, or "" when none was proposed.
func (s *Session) OptimalParent() string { return s.optimalParent }

// Terminal reports whether the session has reached a terminal action.
func (s *Session) Terminal() bool { return s.state == StateClosed }

// Outcome returns the terminal action, or "" while the session is open.
func (s *Session) Outcome() recorder.Action { return s.outcome }

// FinalDestination returns the directory's final path once a move or
// rename succeeded, otherwise "".
func (s *Session) FinalDestination() string { return s.finalDest }

// SubmitCandidate registers a generated name for the next attempt and
// moves the session to the decision phase.
func (s *Session) SubmitCandidate(name, optimalParent string) error {
	if s.attempt >= s.maxAttempts && s.state != StateAwaitingDecision {
		return fmt.Errorf("%w: %d of %d attempts already made", ErrRetryBudgetExceeded, s.attempt, s.maxAttempts)
	}
	if s.state != StateAwaitingCandidate {
		return fmt.Errorf("%w: candidate submitted in state %s", ErrInvalidTransition, s.state)
	}

	s.attempt++
	s.candidate = name
	s.optimalParent = optimalParent
	s.state = StateAwaitingDecision
	return nil
}

// RecordDecision applies the user's (or policy's) decision about the
// current candidate and writes one record. Legal actions are accept,
// retry, cancel and generation_failed. A retry at the attempt limit is
// recorded as max_retries_reached and closes the session; the returned
// action is the one actually recorded.
func (s *Session) RecordDecision(action recorder.Action, feedbackText string) (recorder.Action, error) {
	switch action {
	case recorder.ActionGenerationFailed:
		// Generation fails before a candidate exists, so it is legal
		// while awaiting one; the failed try still consumes an attempt.
		if s.state == StateAwaitingCandidate && s.attempt < s.maxAttempts {
			s.attempt++
			s.candidate = ""
			s.optimalParent = ""
		} else if s.state != StateAwaitingDecision {
			return "", fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, s.state)
		}
		s.close(recorder.ActionGenerationFailed)
		s.emit(recorder.ActionGenerationFailed, feedbackText, "")
		return recorder.ActionGenerationFailed, nil

	case recorder.ActionAccept:
		if s.state != StateAwaitingDecision {
			return "", fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, s.state)
		}
		s.state = StateAwaitingPlacement
		s.emit(recorder.ActionAccept, feedbackText, "")
		return recorder.ActionAccept, nil

	case recorder.ActionRetry:
		if s.state != StateAwaitingDecision {
			return "", fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, s.state)
		}
		if s.attempt >= s.maxAttempts {
			// The budget is spent: the decision is recorded as the
			// terminal max_retries_reached action, never as retry.
			s.close(recorder.ActionMaxRetriesReached)
			s.emit(recorder.ActionMaxRetriesReached, feedbackText, "")
			return recorder.ActionMaxRetriesReached, nil
		}
		s.state = StateAwaitingCandidate
		s.emit(recorder.ActionRetry, feedbackText, "")
		return recorder.ActionRetry, nil

	case recorder.ActionCancel:
		if s.state != StateAwaitingDecision {
			return "", fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, s.state)
		}
		s.close(recorder.ActionCancel)
		s.emit(recorder.ActionCancel, feedbackText, "")
		return recorder.ActionCancel, nil

	default:
		return "", fmt.Errorf("%w: %q is not a decision action", ErrInvalidTransition, action)
	}
}

// RecordPlacement applies the outcome of a move or rename after an
// accepted candidate and writes one record. A failed move keeps the
// session open for the local-rename fallback; a failure following a
// prior failure is coalesced into total_failure. The returned action is
// the one actually recorded.
func (s *Session) RecordPlacement(result recorder.Action, finalDestination string) (recorder.Action, error) {
	if s.state != StateAwaitingPlacement {
		return "", fmt.Errorf("%w: placement result in state %s", ErrInvalidTransition, s.state)
	}

	switch result {
	case recorder.ActionMovedSuccessfully, recorder.ActionLocalRenameOK:
		s.finalDest = finalDestination
		s.close(result)
		s.emit(result, "", finalDestination)
		return result, nil

	case recorder.ActionMoveFailed:
		// Not terminal: the caller falls back to a local rename.
		s.placementMiss = true
		s.emit(recorder.ActionMoveFailed, "", "")
		return recorder.ActionMoveFailed, nil

	case recorder.ActionRenameFailed:
		action := recorder.ActionRenameFailed
		if s.placementMiss {
			action = recorder.ActionTotalFailure
		}
		s.close(action)
		s.emit(action, "", finalDestination)
		return action, nil

	default:
		return "", fmt.Errorf("%w: %q is not a placement result", ErrInvalidTransition, result)
	}
}

func (s *Session) close(outcome recorder.Action) {
	s.state = StateClosed
	s.outcome = outcome
}

// emit writes one attempt record. A recorder failure must never block
// the naming workflow, so it is reported on the diagnostics logger and
// otherwise swallowed.
func (s *Session) emit(action recorder.Action, feedbackText, finalDestination string) {
	a := &recorder.Attempt{
		Timestamp:          s.now(),
		SessionID:          s.id,
		AttemptNumber:      s.attempt,
		SourcePath:         s.sourcePath,
		GeneratedName:      s.candidate,
		OptimalParentPath:  s.optimalParent,
		UserAction:         action,
		UserFeedback:       feedbackText,
		FinalDestination:   finalDestination,
		FilesAnalyzed:      s.meta.FilesAnalyzed,
		HasAudioFiles:      s.meta.HasAudioFiles,
		NewsTranscript:     s.meta.NewsTranscript,
		FeedbackCategories: s.clf.Classify(feedbackText),
	}
	if err := s.rec.Append(a); err != nil {
		s.logger.Error("failed to record naming attempt",
			"session_id", s.id,
			"attempt_number", s.attempt,
			"user_action", string(action),
			"error", err,
		)
	}
}
