package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrToolAbsent covers a missing binary and an invocation that ran out of time.
	ErrToolAbsent = errors.New("tool absent")
	// ErrToolFailed is a nonzero exit status.
	ErrToolFailed = errors.New("tool failed")
	// ErrParseFailed means the tool answered with output that could not be decoded.
	ErrParseFailed = errors.New("tool output unparsable")
)

type Result struct {
	Tool     string
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Err      error
	Duration time.Duration
}

// Combined returns stdout followed by stderr, the way a terminal would show them.
func (r Result) Combined() string {
	return string(r.Stdout) + "\n" + string(r.Stderr)
}

// Runner executes tool with args inside dir. It never panics and reports
// failures through Result.Err.
type Runner func(ctx context.Context, dir, tool string, args ...string) Result

// RunWithTimeout is the default Runner. The caller bounds it through ctx.
func RunWithTimeout(ctx context.Context, dir, tool string, args ...string) Result {
	start := time.Now()
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := Result{Tool: tool, Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Duration: time.Since(start)}
	res.Err = classify(ctx, tool, err)
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res
}

func classify(ctx context.Context, tool string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %v: %w", tool, ctx.Err(), ErrToolAbsent)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with status %d: %w", tool, exitErr.ExitCode(), ErrToolFailed)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%s: %w", tool, ErrToolAbsent)
	}
	// start failures (permissions, bad dir) are indistinguishable from absence to callers
	return fmt.Errorf("%s: %v: %w", tool, err, ErrToolAbsent)
}

// tail keeps the last n bytes of s for log messages.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
