package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/dorg/internal/analyzer"
	"github.com/runger/dorg/internal/audio"
	"github.com/runger/dorg/internal/config"
	"github.com/runger/dorg/internal/decision"
	"github.com/runger/dorg/internal/feedback"
	"github.com/runger/dorg/internal/logging"
	"github.com/runger/dorg/internal/naming"
	"github.com/runger/dorg/internal/orchestrator"
	"github.com/runger/dorg/internal/placer"
	"github.com/runger/dorg/internal/recorder"
	"github.com/runger/dorg/internal/session"
)

var (
	organizeYes         bool
	organizeNoAudio     bool
	organizeTranscribe  bool
	organizeMaxAttempts int
	organizeModel       string
	organizeLogPath     string
	organizeDataHome    string
)

var organizeCmd = &cobra.Command{
	Use:   "organize <directory>",
	Short: "Name a directory and file it into the data home tree",
	Long: `Analyze a directory, generate a descriptive camelCase name for it,
and move it to the best location under the data home tree.

Audio files found in the directory can be transcribed first so their
content informs the name. Every naming attempt is recorded in the
naming history log.

Examples:
  dorg organize ~/Downloads/recordings
  dorg organize --yes ~/Downloads/untitled     # accept first candidate
  dorg organize --transcribe ~/voice-memos     # transcribe without asking`,
	Args: cobra.ExactArgs(1),
	RunE: runOrganize,
}

func init() {
	organizeCmd.Flags().BoolVarP(&organizeYes, "yes", "y", false, "accept the first candidate without prompting")
	organizeCmd.Flags().BoolVar(&organizeNoAudio, "no-audio", false, "skip audio transcription")
	organizeCmd.Flags().BoolVar(&organizeTranscribe, "transcribe", false, "transcribe audio files without asking")
	organizeCmd.Flags().IntVar(&organizeMaxAttempts, "max-attempts", 0, "override the retry budget")
	organizeCmd.Flags().StringVar(&organizeModel, "model", "", "override the Claude model")
	organizeCmd.Flags().StringVar(&organizeLogPath, "log", "", "override the naming history path")
	organizeCmd.Flags().StringVar(&organizeDataHome, "data-home", "", "override the data home root")

	rootCmd.AddCommand(organizeCmd)
}

func runOrganize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOrganizeFlags(cfg)

	logger := logging.NewFromEnv()

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	// Audio intake before analysis so transcripts inform the name.
	hasAudio, err := audioIntake(cmd, cfg, logger, dir)
	if err != nil {
		return err
	}

	rec, err := openRecorder(cfg)
	if err != nil {
		return fmt.Errorf("failed to open naming history: %w", err)
	}
	defer rec.Close()

	gen := naming.NewClaudeGenerator(cfg.ResolvedDataHome(),
		naming.WithModel(cfg.Naming.Model),
		naming.WithTimeout(time.Duration(cfg.Naming.TimeoutSeconds)*time.Second),
		naming.WithAnalyzer(analyzer.NewWithLimits(
			cfg.Analyzer.MaxDepth,
			cfg.Analyzer.MaxFiles,
			cfg.Analyzer.MaxSnippetLen,
			cfg.Analyzer.LinesToExtract,
		)),
	)
	if !gen.Available() {
		return fmt.Errorf("claude CLI not found in PATH; install it or check your PATH")
	}

	var decisions orchestrator.DecisionSource = decision.NewTUI()
	if organizeYes {
		decisions = decision.Auto{}
	}

	o := orchestrator.New(gen, decisions, placer.New(), rec,
		orchestrator.WithMaxAttempts(cfg.Naming.MaxAttempts),
		orchestrator.WithClassifier(classifierFromConfig(cfg)),
		orchestrator.WithLogger(logger),
	)

	out, err := o.Run(cmd.Context(), dir, dir, session.Metadata{
		HasAudioFiles:  hasAudio,
		NewsTranscript: naming.IsNewsTranscriptSource(dir),
	})
	if err != nil {
		return err
	}

	printOutcome(cmd, out)
	return nil
}

func applyOrganizeFlags(cfg *config.Config) {
	if organizeMaxAttempts > 0 {
		cfg.Naming.MaxAttempts = organizeMaxAttempts
	}
	if organizeModel != "" {
		cfg.Naming.Model = organizeModel
	}
	if organizeLogPath != "" {
		cfg.Log.Path = organizeLogPath
	}
	if organizeDataHome != "" {
		cfg.DataHome = organizeDataHome
	}
}

// audioIntake transcribes audio files when present and permitted.
// Returns whether the directory contained audio at all.
func audioIntake(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, dir string) (bool, error) {
	if organizeNoAudio {
		files, err := audio.Detect(dir)
		return len(files) > 0, err
	}

	files, err := audio.Detect(dir)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, nil
	}

	proceed := organizeTranscribe || organizeYes
	if !proceed {
		question := fmt.Sprintf("Found %d audio file(s), transcribe before naming?", len(files))
		proceed, err = decision.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question)
		if err != nil {
			return true, err
		}
	}
	if !proceed {
		return true, nil
	}

	p := audio.NewProcessor(
		audio.WithCommand(cfg.Audio.Transcriber),
		audio.WithTimeout(time.Duration(cfg.Audio.TimeoutMinutes)*time.Minute),
		audio.WithLogger(logger),
	)
	res, err := p.Process(cmd.Context(), dir)
	if err != nil {
		return true, fmt.Errorf("audio processing failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Transcribed %d/%d audio file(s)\n", res.Transcribed, res.AudioFiles)
	if res.Failed > 0 {
		logger.Warn("some audio files failed to transcribe", "failed", res.Failed)
	}
	return true, nil
}

func openRecorder(cfg *config.Config) (recorder.Recorder, error) {
	path := cfg.ResolvedLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	if cfg.Log.Backend == "sqlite" {
		return recorder.NewSQLiteRecorder(path)
	}
	return recorder.NewCSVRecorder(path)
}

func classifierFromConfig(cfg *config.Config) *feedback.Classifier {
	if len(cfg.Feedback.Rules) == 0 {
		return feedback.NewClassifier(nil)
	}
	rules := make([]feedback.Rule, 0, len(cfg.Feedback.Rules))
	for _, r := range cfg.Feedback.Rules {
		rules = append(rules, feedback.Rule{
			Category: feedback.Category(r.Category),
			Keywords: r.Keywords,
		})
	}
	return feedback.NewClassifier(rules)
}

func printOutcome(cmd *cobra.Command, out *orchestrator.Outcome) {
	w := cmd.OutOrStdout()
	switch out.Action {
	case recorder.ActionMovedSuccessfully:
		fmt.Fprintf(w, "%sMoved%s to %s\n", colorGreen, colorReset, out.FinalDestination)
	case recorder.ActionLocalRenameOK:
		fmt.Fprintf(w, "%sRenamed%s in place: %s\n", colorGreen, colorReset, out.FinalDestination)
	case recorder.ActionCancel:
		fmt.Fprintf(w, "%sCancelled%s after %d attempt(s)\n", colorYellow, colorReset, out.Attempts)
	case recorder.ActionMaxRetriesReached:
		fmt.Fprintf(w, "%sNo name accepted%s within %d attempt(s); directory left untouched\n",
			colorYellow, colorReset, out.Attempts)
	case recorder.ActionGenerationFailed:
		fmt.Fprintf(w, "%sName generation failed%s; directory left untouched\n", colorRed, colorReset)
	case recorder.ActionRenameFailed, recorder.ActionTotalFailure:
		fmt.Fprintf(w, "%sPlacement failed%s; directory left at its original path\n", colorRed, colorReset)
	default:
		fmt.Fprintf(w, "Finished: %s\n", out)
	}
	fmt.Fprintf(w, "%ssession %s%s\n", colorDim, out.SessionID, colorReset)
}
