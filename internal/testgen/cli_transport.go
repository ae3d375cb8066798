package testgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/logger"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/process"
)

const maxLoggedStream = 2000

// noiseLines are benign notices some CLIs print to stdout before the answer.
var noiseLines = map[string]bool{
	"Loaded cached credentials.":   true,
	"Data collection is disabled.": true,
}

// errorPattern flags stderr that reports a failure behind a zero exit code.
var errorPattern = regexp.MustCompile(`(?i)\b(error|failed|failure|exception|unauthorized|forbidden|invalid api key|api key not valid|quota|permission denied)\b`)

// CLITransport runs an external AI command-line tool once per prompt.
type CLITransport struct {
	cfg    config.CLIConfig
	runner process.Runner
	redact redactor
}

func NewCLITransport(cfg config.CLIConfig, runner process.Runner) *CLITransport {
	if cfg.Model == "" {
		cfg.Model = config.DefaultCLIModel
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = config.DefaultProbe
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = config.DefaultCLITimeout
	}
	return &CLITransport{
		cfg:    cfg,
		runner: runner,
		redact: newRedactor(cfg.APIKey),
	}
}

func (t *CLITransport) Kind() model.ProviderKind {
	return model.ProviderCLI
}

// CheckAvailability requires a credential, then runs "<command> --version".
// Exit 0 passes; in lenient mode any output at all passes too.
func (t *CLITransport) CheckAvailability(ctx context.Context) error {
	if err := t.checkConfigured(); err != nil {
		return err
	}

	res, err := t.runner.Run(ctx, process.Command{
		Name:    t.cfg.Command,
		Args:    []string{"--version"},
		Dir:     t.cfg.WorkDir,
		Env:     t.credentialEnv(),
		Timeout: t.cfg.ProbeTimeout,
	})
	if err != nil {
		if errors.Is(err, process.ErrTimeout) {
			return fmt.Errorf("%w: %s --version did not finish within %s", ErrProviderUnavailable, t.cfg.Command, t.cfg.ProbeTimeout)
		}
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, t.redact.Error(err))
	}

	slog.DebugContext(ctx, "cli version probe finished",
		"command", t.cfg.Command,
		"exit_code", res.ExitCode,
		"stdout", logger.Truncate(t.redact.String(strings.TrimSpace(res.Stdout)), 200),
		"stderr", logger.Truncate(t.redact.String(strings.TrimSpace(res.Stderr)), 200))

	if res.Succeeded() {
		return nil
	}
	if t.cfg.LenientVersionCheck && res.HasOutput() {
		return nil
	}

	return fmt.Errorf("%w: %s --version exited with code %d", ErrProviderUnavailable, t.cfg.Command, res.ExitCode)
}

// Invoke runs the tool with the credential in the environment and the prompt
// as an argument or on stdin, then classifies the outcome.
func (t *CLITransport) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := t.checkConfigured(); err != nil {
		return "", err
	}

	cmd := process.Command{
		Name:    t.cfg.Command,
		Args:    t.args(prompt),
		Dir:     t.cfg.WorkDir,
		Env:     t.credentialEnv(),
		Timeout: t.cfg.Timeout,
	}
	if t.cfg.UsesStdin() {
		cmd.Stdin = prompt
	}

	res, err := t.runner.Run(ctx, cmd)
	if res != nil {
		slog.DebugContext(ctx, "cli provider finished",
			"command", t.cfg.Command,
			"model", t.cfg.Model,
			"prompt_mode", t.cfg.PromptMode,
			"pid", res.PID,
			"exit_code", res.ExitCode,
			"duration_ms", res.Duration.Milliseconds(),
			"stdout_bytes", len(res.Stdout),
			"stderr_bytes", len(res.Stderr),
			"stderr", logger.Truncate(t.redact.String(res.Stderr), maxLoggedStream))
	}

	switch {
	case errors.Is(err, process.ErrTimeout):
		return "", fmt.Errorf("%w: %s did not finish within %s and was terminated", ErrTimeout, t.cfg.Command, t.cfg.Timeout)
	case errors.Is(err, process.ErrStart):
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, t.redact.Error(err))
	case err != nil:
		return "", t.redact.Error(err)
	}

	stderr := strings.TrimSpace(t.redact.String(res.Stderr))
	if !res.Succeeded() {
		return "", fmt.Errorf("%w: %s exited with code %d: %s",
			ErrProcessFailed, t.cfg.Command, res.ExitCode, logger.Truncate(stderr, maxLoggedStream))
	}

	out := stripNoise(res.Stdout)
	if strings.TrimSpace(out) == "" && errorPattern.MatchString(stderr) {
		return "", fmt.Errorf("%w: %s produced no output: %s",
			ErrProcessFailed, t.cfg.Command, logger.Truncate(stderr, maxLoggedStream))
	}

	return out, nil
}

func (t *CLITransport) checkConfigured() error {
	if strings.TrimSpace(t.cfg.Command) == "" {
		return fmt.Errorf("%w: CLI_COMMAND is not set", ErrConfigurationMissing)
	}
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return fmt.Errorf("%w: CLI_API_KEY is not set", ErrConfigurationMissing)
	}
	if strings.TrimSpace(t.cfg.APIKeyEnv) == "" {
		return fmt.Errorf("%w: CLI_API_KEY_ENV is not set", ErrConfigurationMissing)
	}
	return nil
}

// credentialEnv passes the key through the environment so it never shows up
// in process listings.
func (t *CLITransport) credentialEnv() []string {
	return []string{t.cfg.APIKeyEnv + "=" + t.cfg.APIKey}
}

func (t *CLITransport) args(prompt string) []string {
	args := make([]string, 0, len(t.cfg.Args)+4)
	args = append(args, t.cfg.Args...)
	args = append(args, "-m", t.cfg.Model)
	if !t.cfg.UsesStdin() {
		args = append(args, "-p", prompt)
	}
	return args
}

func stripNoise(stdout string) string {
	lines := strings.Split(strings.ReplaceAll(stdout, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if noiseLines[strings.TrimSpace(line)] {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
