// Package orchestrator drives one naming session per source directory:
// it asks the generator for candidates, forwards them to the decision
// source, and feeds decisions and placement outcomes into the session
// until a terminal action is reached.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/runger/dorg/internal/feedback"
	"github.com/runger/dorg/internal/recorder"
	"github.com/runger/dorg/internal/session"
)

// GenerateRequest carries everything a generator needs for one attempt.
type GenerateRequest struct {
	// SourcePath is the original directory the run was started on; it
	// drives source-based routing rules.
	SourcePath string
	// TargetDir is the directory to analyze and eventually move. It
	// differs from SourcePath when audio intake created a subdirectory.
	TargetDir string
	// AttemptNumber is 1-based; retries re-analyze with a different
	// extraction strategy.
	AttemptNumber int
	// Feedback is the accumulated user feedback from earlier attempts.
	Feedback []string
	// HasAudioFiles is intake metadata passed through into the result.
	HasAudioFiles bool
}

// GenerateResult is a name candidate plus the analysis metadata that is
// recorded unchanged with every attempt.
type GenerateResult struct {
	Name           string
	OptimalParent  string
	FilesAnalyzed  int
	HasAudioFiles  bool
	NewsTranscript bool
}

// Generator produces directory name candidates.
type Generator interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}

// Candidate is what a decision source is asked to judge.
type Candidate struct {
	Name          string
	OptimalParent string
	AttemptNumber int
	MaxAttempts   int
}

// Decision is the user's (or policy's) verdict on a candidate.
// Action is one of accept, retry or cancel; Feedback is free text and
// only meaningful on retry.
type Decision struct {
	Action   recorder.Action
	Feedback string
}

// DecisionSource collects a decision about a candidate.
type DecisionSource interface {
	Decide(ctx context.Context, c Candidate) (Decision, error)
}

// Placer executes the accepted candidate on the filesystem.
type Placer interface {
	// Move relocates dir under parent with the new name and returns
	// the final path.
	Move(ctx context.Context, dir, parent, name string) (string, error)
	// Rename renames dir in place and returns the final path.
	Rename(ctx context.Context, dir, name string) (string, error)
}

// Outcome is the terminal result of a run, reported back to the caller.
type Outcome struct {
	SessionID        string
	Action           recorder.Action
	GeneratedName    string
	FinalDestination string
	Attempts         int
}

// Orchestrator wires the collaborators around a naming session.
type Orchestrator struct {
	generator   Generator
	decisions   DecisionSource
	placer      Placer
	rec         recorder.Recorder
	clf         *feedback.Classifier
	logger      *slog.Logger
	maxAttempts int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxAttempts overrides the per-session retry budget.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithClassifier overrides the feedback classifier used for records.
func WithClassifier(c *feedback.Classifier) Option {
	return func(o *Orchestrator) { o.clf = c }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator over the given collaborators.
func New(gen Generator, dec DecisionSource, placer Placer, rec recorder.Recorder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator:   gen,
		decisions:   dec,
		placer:      placer,
		rec:         rec,
		clf:         feedback.NewClassifier(nil),
		logger:      slog.Default(),
		maxAttempts: session.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run drives one session for sourcePath to a terminal outcome.
// targetDir is the directory that will be renamed or moved (usually
// sourcePath itself). Collaborator failures become terminal actions,
// never errors; errors are reserved for invalid input and misuse of the
// state machine.
func (o *Orchestrator) Run(ctx context.Context, sourcePath, targetDir string, meta session.Metadata) (*Outcome, error) {
	if targetDir == "" {
		targetDir = sourcePath
	}
	runID := uuid.NewString()
	logger := o.logger.With("run_id", runID, "source_path", sourcePath)

	sess, err := session.Start(sourcePath, meta, o.rec,
		session.WithMaxAttempts(o.maxAttempts),
		session.WithClassifier(o.clf),
		session.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	logger = logger.With("session_id", sess.ID())
	logger.Info("naming session started", "max_attempts", sess.MaxAttempts())

	var history []string
	var lastName string

	for !sess.Terminal() && sess.State() != session.StateAwaitingPlacement {
		req := &GenerateRequest{
			SourcePath:    sourcePath,
			TargetDir:     targetDir,
			AttemptNumber: sess.AttemptNumber() + 1,
			Feedback:      history,
			HasAudioFiles: meta.HasAudioFiles,
		}
		result, genErr := o.generator.Generate(ctx, req)
		if genErr != nil || result == nil || result.Name == "" {
			logger.Warn("name generation failed", "error", genErr)
			if _, err := sess.RecordDecision(recorder.ActionGenerationFailed, ""); err != nil {
				return nil, err
			}
			break
		}
		lastName = result.Name

		if err := sess.SubmitCandidate(result.Name, result.OptimalParent); err != nil {
			return nil, err
		}
		logger.Info("candidate generated",
			"attempt_number", sess.AttemptNumber(),
			"generated_name", result.Name,
			"optimal_parent", result.OptimalParent,
		)

		decision, decErr := o.decisions.Decide(ctx, Candidate{
			Name:          result.Name,
			OptimalParent: result.OptimalParent,
			AttemptNumber: sess.AttemptNumber(),
			MaxAttempts:   sess.MaxAttempts(),
		})
		if decErr != nil {
			// A decision source that cannot answer cancels the session.
			logger.Warn("decision source failed", "error", decErr)
			decision = Decision{Action: recorder.ActionCancel}
		}

		recorded, err := sess.RecordDecision(decision.Action, decision.Feedback)
		if err != nil {
			return nil, err
		}
		logger.Info("decision recorded", "user_action", string(recorded))
		if recorded == recorder.ActionRetry {
			history = append(history, decision.Feedback)
		}
	}

	if sess.State() == session.StateAwaitingPlacement {
		if err := o.place(ctx, logger, sess, targetDir, lastName); err != nil {
			return nil, err
		}
	}

	out := &Outcome{
		SessionID:        sess.ID(),
		Action:           sess.Outcome(),
		GeneratedName:    lastName,
		FinalDestination: sess.FinalDestination(),
		Attempts:         sess.AttemptNumber(),
	}
	logger.Info("naming session finished",
		"user_action", string(out.Action),
		"attempts", out.Attempts,
		"final_destination", out.FinalDestination,
	)
	return out, nil
}

// place executes the accepted candidate: a move to the optimal parent
// with a local-rename fallback, or a plain in-place rename when no
// parent was proposed.
func (o *Orchestrator) place(ctx context.Context, logger *slog.Logger, sess *session.Session, targetDir, name string) error {
	parent := sess.OptimalParent()

	if parent != "" {
		dest, err := o.placer.Move(ctx, targetDir, parent, name)
		if err == nil {
			_, rerr := sess.RecordPlacement(recorder.ActionMovedSuccessfully, dest)
			return rerr
		}
		logger.Warn("move failed, falling back to local rename", "error", err)
		if _, rerr := sess.RecordPlacement(recorder.ActionMoveFailed, ""); rerr != nil {
			return rerr
		}
	}

	dest, err := o.placer.Rename(ctx, targetDir, name)
	if err != nil {
		logger.Warn("local rename failed", "error", err)
		_, rerr := sess.RecordPlacement(recorder.ActionRenameFailed, targetDir)
		return rerr
	}
	_, rerr := sess.RecordPlacement(recorder.ActionLocalRenameOK, dest)
	return rerr
}

// String implements fmt.Stringer for log-friendly outcomes.
func (out *Outcome) String() string {
	return fmt.Sprintf("%s after %d attempt(s)", out.Action, out.Attempts)
}
