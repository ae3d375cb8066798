package testgen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a generation run failed.
type ErrorKind string

const (
	KindConfigurationMissing ErrorKind = "configuration_missing"
	KindProviderUnavailable  ErrorKind = "provider_unavailable"
	KindTimeout              ErrorKind = "timeout"
	KindProcessFailed        ErrorKind = "process_failed"
	KindUnexpected           ErrorKind = "unexpected"
)

// Stage names the pipeline step that was running when a run failed.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageConfiguration Stage = "configuration"
	StageAvailability  Stage = "availability check"
	StageInvocation    Stage = "invocation"
	StageParsing       Stage = "parsing"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrProviderUnavailable  = errors.New("provider unavailable")
	ErrTimeout              = errors.New("provider timed out")
	ErrProcessFailed        = errors.New("provider process failed")
	ErrUnexpected           = errors.New("unexpected failure")
	ErrUnknownProvider      = errors.New("unknown ai provider")
)

var kindSentinels = map[ErrorKind]error{
	KindConfigurationMissing: ErrConfigurationMissing,
	KindProviderUnavailable:  ErrProviderUnavailable,
	KindTimeout:              ErrTimeout,
	KindProcessFailed:        ErrProcessFailed,
	KindUnexpected:           ErrUnexpected,
}

// Error is the single failure type returned by Generator.Generate.
// It matches its kind's sentinel with errors.Is.
type Error struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("test case generation failed during %s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("test case generation failed during %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// KindOf reports the ErrorKind carried by err, or KindUnexpected.
func KindOf(err error) ErrorKind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnexpected
}

// StageOf reports the stage carried by err, or StageIdle when err did not come
// from the generator.
func StageOf(err error) Stage {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Stage
	}
	return StageIdle
}

// wrapStage wraps err once with the stage it happened in. Errors that are
// already *Error keep their original stage.
func wrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var genErr *Error
	if errors.As(err, &genErr) {
		return err
	}
	return &Error{Stage: stage, Kind: KindOf(err), Err: err}
}

// redactor removes configured secrets from text that leaves the package.
type redactor []string

const redacted = "[REDACTED]"

func newRedactor(secrets ...string) redactor {
	var r redactor
	for _, s := range secrets {
		if strings.TrimSpace(s) != "" {
			r = append(r, s)
		}
	}
	return r
}

func (r redactor) String(s string) string {
	for _, secret := range r {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}

func (r redactor) Error(err error) error {
	if err == nil || len(r) == 0 {
		return err
	}
	msg := err.Error()
	clean := r.String(msg)
	if clean == msg {
		return err
	}
	return &redactedError{msg: clean, err: err}
}

// redactedError keeps the chain for errors.Is but never prints the original.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
