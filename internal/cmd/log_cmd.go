package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/dorg/internal/config"
	"github.com/runger/dorg/internal/feedback"
	"github.com/runger/dorg/internal/recorder"
)

var (
	logShowLast int
	logPath     string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the naming history",
}

var logShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recorded naming attempts",
	RunE:  runLogShow,
}

var logSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize outcomes and feedback categories",
	RunE:  runLogSummary,
}

func init() {
	logCmd.PersistentFlags().StringVar(&logPath, "log", "", "override the naming history path")
	logShowCmd.Flags().IntVarP(&logShowLast, "last", "n", 20, "number of attempts to show (0 = all)")

	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logSummaryCmd)
	rootCmd.AddCommand(logCmd)
}

func loadAttempts() ([]recorder.Attempt, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logPath != "" {
		cfg.Log.Path = logPath
	}

	path := cfg.ResolvedLogPath()
	if _, serr := os.Stat(path); os.IsNotExist(serr) {
		return nil, nil
	}
	var attempts []recorder.Attempt
	if cfg.Log.Backend == "sqlite" {
		r, oerr := recorder.NewSQLiteRecorder(path)
		if oerr != nil {
			return nil, fmt.Errorf("failed to open naming history at %s: %w", path, oerr)
		}
		defer r.Close()
		attempts, err = r.ReadAll()
	} else {
		attempts, err = recorder.ReadAll(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read naming history at %s: %w", path, err)
	}
	return attempts, nil
}

func runLogShow(cmd *cobra.Command, args []string) error {
	attempts, err := loadAttempts()
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no naming attempts recorded yet")
		return nil
	}

	if logShowLast > 0 && len(attempts) > logShowLast {
		attempts = attempts[len(attempts)-logShowLast:]
	}

	w := cmd.OutOrStdout()
	for _, a := range attempts {
		name := a.GeneratedName
		if name == "" {
			name = colorDim + "(none)" + colorReset
		}
		fmt.Fprintf(w, "%s  %s  #%d  %s%s%s  %s\n",
			a.Timestamp.Format("2006-01-02 15:04:05"),
			a.SessionID,
			a.AttemptNumber,
			colorCyan, name, colorReset,
			actionColor(a.UserAction)+string(a.UserAction)+colorReset,
		)
		if a.UserFeedback != "" {
			fmt.Fprintf(w, "    %sfeedback:%s %s (%s)\n",
				colorDim, colorReset, a.UserFeedback, feedback.Join(a.FeedbackCategories))
		}
		if a.FinalDestination != "" {
			fmt.Fprintf(w, "    %s-> %s%s\n", colorDim, a.FinalDestination, colorReset)
		}
	}
	return nil
}

func runLogSummary(cmd *cobra.Command, args []string) error {
	attempts, err := loadAttempts()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(attempts) == 0 {
		fmt.Fprintln(w, "no naming attempts recorded yet")
		return nil
	}

	s := summarize(attempts)

	fmt.Fprintf(w, "%sNaming history%s\n", colorBold, colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "attempts:  %d\n", s.Attempts)
	fmt.Fprintf(w, "sessions:  %d\n", s.Sessions)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%sActions%s\n", colorBold, colorReset)
	for _, kv := range sortedCounts(s.ByAction) {
		fmt.Fprintf(w, "  %-22s %d\n", kv.key, kv.n)
	}

	if len(s.ByCategory) > 0 {
		fmt.Fprintf(w, "\n%sFeedback categories%s\n", colorBold, colorReset)
		for _, kv := range sortedCounts(s.ByCategory) {
			fmt.Fprintf(w, "  %-22s %d\n", kv.key, kv.n)
		}
	}
	return nil
}

// summary aggregates the naming history.
type summary struct {
	Attempts   int
	Sessions   int
	ByAction   map[string]int
	ByCategory map[string]int
}

func summarize(attempts []recorder.Attempt) summary {
	s := summary{
		Attempts:   len(attempts),
		ByAction:   make(map[string]int),
		ByCategory: make(map[string]int),
	}
	sessions := make(map[string]bool)
	for _, a := range attempts {
		sessions[a.SessionID] = true
		s.ByAction[string(a.UserAction)]++
		for _, c := range a.FeedbackCategories {
			s.ByCategory[string(c)]++
		}
	}
	s.Sessions = len(sessions)
	return s
}

type countEntry struct {
	key string
	n   int
}

// sortedCounts orders by descending count, ties by key.
func sortedCounts(m map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for k, n := range m {
		entries = append(entries, countEntry{k, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n > entries[j].n
		}
		return entries[i].key < entries[j].key
	})
	return entries
}

func actionColor(a recorder.Action) string {
	switch a {
	case recorder.ActionMovedSuccessfully, recorder.ActionLocalRenameOK, recorder.ActionAccept:
		return colorGreen
	case recorder.ActionRetry:
		return colorYellow
	default:
		return colorRed
	}
}
