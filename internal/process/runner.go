// Package process runs external commands with captured output, optional stdin
// and a hard wall-clock timeout.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// defaultWaitDelay bounds how long Wait blocks on output pipes after the
// process was killed, e.g. when a grandchild inherited them.
const defaultWaitDelay = 2 * time.Second

var (
	ErrTimeout = errors.New("process timed out")
	ErrStart   = errors.New("process failed to start")
)

type Command struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string // appended to the parent environment
	Stdin   string   // written to the child's stdin, which is then closed; empty means no stdin
	Timeout time.Duration
}

// Result holds everything observed about a finished process. A non-zero exit
// code is a Result, not an error; callers classify it.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	PID      int
	Duration time.Duration
}

func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}

// HasOutput reports whether the process wrote anything to either stream.
func (r *Result) HasOutput() bool {
	return strings.TrimSpace(r.Stdout) != "" || strings.TrimSpace(r.Stderr) != ""
}

type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

type ExecRunner struct {
	WaitDelay time.Duration
}

// Run starts the command, accumulates stdout and stderr concurrently and waits
// for exit or the timeout, whichever comes first. On timeout the process is
// killed and reaped before Run returns ErrTimeout.
func (r ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	command := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		command.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		command.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != "" {
		command.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	command.WaitDelay = r.WaitDelay
	if command.WaitDelay == 0 {
		command.WaitDelay = defaultWaitDelay
	}

	start := time.Now()
	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStart, cmd.Name, err)
	}

	waitErr := command.Wait()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: command.ProcessState.ExitCode(),
		PID:      command.Process.Pid,
		Duration: time.Since(start),
	}

	slog.DebugContext(ctx, "process finished",
		"command", cmd.Name,
		"pid", result.PID,
		"exit_code", result.ExitCode,
		"duration_ms", result.Duration.Milliseconds(),
		"stdout_bytes", len(result.Stdout),
		"stderr_bytes", len(result.Stderr))

	if ctxErr := runCtx.Err(); ctxErr != nil {
		if ctx.Err() == nil && errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("%w after %s: %s", ErrTimeout, cmd.Timeout, cmd.Name)
		}
		return result, fmt.Errorf("running %s: %w", cmd.Name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return result, fmt.Errorf("waiting for %s: %w", cmd.Name, waitErr)
	}

	return result, nil
}
