package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"chatdoc-be/pkg/apperror"
)

const (
	DefaultCommand = "python3"
	DefaultScript  = "scripts/extract_pdf.py"
	DefaultTimeout = 120 * time.Second
)

// Extractor turns a stored document into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// CommandRunner executes an external program. A non-nil error with
// captured output is still reported through stdout and stderr.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children that inherit the pipes must not outlive the deadline
	cmd.WaitDelay = time.Second
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

type Config struct {
	Command string
	Script  string
	Timeout time.Duration
}

// CommandExtractor runs `<Command> <Script> <path>` and reads a JSON object
// with either a "text" or an "error" field from stdout.
type CommandExtractor struct {
	cfg    Config
	runner CommandRunner
}

var _ Extractor = (*CommandExtractor)(nil)

func NewCommandExtractor(cfg Config) *CommandExtractor {
	return NewCommandExtractorWithRunner(cfg, execRunner{})
}

func NewCommandExtractorWithRunner(cfg Config, runner CommandRunner) *CommandExtractor {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Script == "" {
		cfg.Script = DefaultScript
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &CommandExtractor{cfg: cfg, runner: runner}
}

type extractOutput struct {
	Text  *string `json:"text"`
	Error string  `json:"error"`
}

func (e *CommandExtractor) Extract(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(ctx, e.cfg.Command, e.cfg.Script, path)
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", &apperror.ExtractionError{
			ExitCode:   exitCode,
			Diagnostic: diagnostic(stdout, stderr),
			Err:        err,
		}
	}

	var out extractOutput
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &out); err != nil {
		return "", &apperror.ExtractionError{Diagnostic: diagnostic(stdout, stderr), Err: err}
	}
	if out.Error != "" {
		return "", &apperror.ExtractionError{Diagnostic: out.Error}
	}
	if out.Text == nil {
		return "", &apperror.ExtractionError{Diagnostic: "extractor output has no text field"}
	}
	return *out.Text, nil
}

// diagnostic prefers stderr and falls back to stdout.
func diagnostic(stdout, stderr []byte) string {
	if s := strings.TrimSpace(string(stderr)); s != "" {
		return s
	}
	return strings.TrimSpace(string(stdout))
}
