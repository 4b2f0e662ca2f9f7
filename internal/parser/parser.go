// Package parser bridges to the external save-file parser.
//
// The parser is an out-of-process tool that reads a career save and writes
// its tables as JSON. Callers depend only on the Parser capability; the
// subprocess mechanism stays behind NodeParser.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/tables"
)

var (
	// ErrTimeout is returned when the parser exceeds its wall-clock budget.
	ErrTimeout = errors.New("parser timed out")
	// ErrMissingOutput is returned when the parser exits cleanly but its
	// output file does not exist.
	ErrMissingOutput = errors.New("parser output not found")
)

// ExitError reports a non-zero parser exit with the captured streams.
type ExitError struct {
	Code   int
	Stdout string
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("parser exited with code %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Parser turns a save file into a table dump.
type Parser interface {
	Parse(ctx context.Context, savePath string) (tables.Dump, error)
}

// NodeParser runs the external parser script as a subprocess.
type NodeParser struct {
	Command string        // interpreter, e.g. "node"
	Dir     string        // working directory of the parser
	Script  string        // script path relative to Dir
	Output  string        // output file relative to Dir
	Timeout time.Duration // wall-clock budget for one run
	Logger  *slog.Logger
}

// NewNodeParser builds a NodeParser from configuration.
func NewNodeParser(cfg *config.Config, logger *slog.Logger) *NodeParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &NodeParser{
		Command: cfg.ParserCommand,
		Dir:     cfg.ParserDir,
		Script:  cfg.ParserScript,
		Output:  cfg.ParserOutput,
		Timeout: cfg.ParserTimeout,
		Logger:  logger,
	}
}

func (p *NodeParser) outputPath() string {
	return filepath.Join(p.Dir, p.Output)
}

// Parse runs the parser against savePath (empty lets the script use its own
// default) and decodes the output file.
func (p *NodeParser) Parse(ctx context.Context, savePath string) (tables.Dump, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	script := filepath.Join(p.Dir, p.Script)
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("parser script: %w", err)
	}

	// A stale file from a previous run must never be mistaken for output.
	out := p.outputPath()
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale output: %w", err)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{p.Script}
	if savePath != "" {
		abs, err := filepath.Abs(savePath)
		if err != nil {
			return nil, fmt.Errorf("resolve save path: %w", err)
		}
		args = append(args, abs)
	}

	cmd := exec.CommandContext(runCtx, p.Command, args...)
	cmd.Dir = p.Dir
	cmd.WaitDelay = 2 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("Running save parser", "command", p.Command, "script", script, "save", savePath)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Code: exitErr.ExitCode(), Stdout: stdout.String(), Stderr: stderr.String()}
		}
		return nil, fmt.Errorf("run parser: %w", err)
	}
	logger.Debug("Parser output", "stdout", strings.TrimSpace(stdout.String()))
	logger.Info("Parser completed", "elapsed", elapsed.Round(time.Millisecond))

	dump, err := readDump(out, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded parser output", "file", out, "tables", len(dump))
	return dump, nil
}

// FileParser reads an existing JSON dump instead of running the parser.
type FileParser struct {
	Path   string
	Logger *slog.Logger
}

// Parse ignores savePath and decodes the configured dump file.
func (f FileParser) Parse(_ context.Context, _ string) (tables.Dump, error) {
	return readDump(f.Path, f.Logger)
}

func readDump(path string, logger *slog.Logger) (tables.Dump, error) {
	fh, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingOutput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open parser output: %w", err)
	}
	defer fh.Close()

	dump, err := tables.Decode(fh, logger)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return dump, nil
}
