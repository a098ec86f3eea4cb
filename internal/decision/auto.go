// Package decision provides decision sources for naming sessions: an
// interactive terminal prompt and a non-interactive auto-accept policy.
package decision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/runger/dorg/internal/orchestrator"
	"github.com/runger/dorg/internal/recorder"
)

// Auto accepts every candidate without asking. Used for --yes runs and
// scripted environments.
type Auto struct{}

// Decide implements orchestrator.DecisionSource.
func (Auto) Decide(_ context.Context, _ orchestrator.Candidate) (orchestrator.Decision, error) {
	return orchestrator.Decision{Action: recorder.ActionAccept}, nil
}

// Confirm asks a yes/no question on w and reads the answer from r.
// Empty input means no.
func Confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
