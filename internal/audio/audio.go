// Package audio detects audio files in a source directory and runs an
// external transcriber over them so the naming analysis has text to
// work with.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
)

// DefaultTranscriber is the command run per audio file. The file path
// is appended as the final argument and the transcript is read from
// stdout.
const DefaultTranscriber = "whisper"

// TranscribedDirName holds processed originals after transcription.
const TranscribedDirName = "transcribed_audio"

// DefaultTimeout bounds one transcription run.
const DefaultTimeout = 10 * time.Minute

// audioExts are the recognized audio file extensions.
var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true,
	".aac": true, ".ogg": true, ".wma": true,
}

// IsAudioFile reports whether path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

// Detect lists audio files directly inside dir, sorted by name.
func Detect(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsAudioFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Result summarizes one processing pass over a directory.
type Result struct {
	AudioFiles  int
	Transcribed int
	Failed      int
	Transcripts []string
}

// Processor transcribes audio files with an external command.
type Processor struct {
	command string
	timeout time.Duration
	logger  *slog.Logger

	// run is swappable for tests; defaults to executing the command.
	run func(ctx context.Context, argv []string) (string, error)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithCommand overrides the transcriber command line.
func WithCommand(cmd string) ProcessorOption {
	return func(p *Processor) {
		if cmd != "" {
			p.command = cmd
		}
	}
}

// WithTimeout overrides the per-file timeout.
func WithTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// WithRunner replaces command execution, used by tests.
func WithRunner(fn func(ctx context.Context, argv []string) (string, error)) ProcessorOption {
	return func(p *Processor) { p.run = fn }
}

// NewProcessor creates a processor with the default transcriber.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		command: DefaultTranscriber,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.run == nil {
		p.run = p.execCommand
	}
	return p
}

// Process transcribes every audio file directly inside dir. Each
// transcript lands next to the audio as <stem>_transcript.txt and the
// processed originals move into transcribed_audio/. Individual file
// failures are logged and counted, never fatal; the error return is
// reserved for dir-level problems.
func (p *Processor) Process(ctx context.Context, dir string) (*Result, error) {
	files, err := Detect(dir)
	if err != nil {
		return nil, err
	}
	res := &Result{AudioFiles: len(files)}
	if len(files) == 0 {
		return res, nil
	}

	argv, err := shlex.Split(p.command)
	if err != nil {
		return nil, fmt.Errorf("invalid transcriber command %q: %w", p.command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty transcriber command")
	}

	doneDir := filepath.Join(dir, TranscribedDirName)
	for _, file := range files {
		transcript, err := p.transcribe(ctx, argv, file)
		if err != nil {
			p.logger.Warn("transcription failed", "file", file, "error", err)
			res.Failed++
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		outPath := filepath.Join(dir, stem+"_transcript.txt")
		if err := os.WriteFile(outPath, []byte(transcript), 0o644); err != nil {
			p.logger.Warn("failed to write transcript", "file", outPath, "error", err)
			res.Failed++
			continue
		}

		if err := os.MkdirAll(doneDir, 0o755); err != nil {
			return res, fmt.Errorf("failed to create %s: %w", doneDir, err)
		}
		if err := os.Rename(file, filepath.Join(doneDir, filepath.Base(file))); err != nil {
			p.logger.Warn("failed to move processed audio", "file", file, "error", err)
		}

		res.Transcribed++
		res.Transcripts = append(res.Transcripts, outPath)
	}
	return res, nil
}

func (p *Processor) transcribe(ctx context.Context, argv []string, file string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	full := make([]string, 0, len(argv)+1)
	full = append(full, argv...)
	full = append(full, file)

	out, err := p.run(ctx, full)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("empty transcript for %s", file)
	}
	return out, nil
}

func (p *Processor) execCommand(ctx context.Context, argv []string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("timeout after %v", p.timeout)
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %s", argv[0], strings.TrimSpace(stderr.String()))
		}
		return "", err
	}
	return stdout.String(), nil
}
