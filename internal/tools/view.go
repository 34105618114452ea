// Package tools implements the credit-metered AI tool views: content
// generator, summarizer and grammar corrector. Each view composes a shared
// credits.Meter and a tool-specific Runner.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dashboard/internal/credits"
	"dashboard/internal/domain"
	"dashboard/internal/infra"
	"dashboard/internal/metrics"
)

// State is the submission state of a view.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Runner performs one tool-specific backend call.
type Runner[I any] interface {
	Name() string
	Validate(in I) (I, error)
	Run(ctx context.Context, in I) (string, error)
	// FailureMessage turns a backend error into the text shown to the user.
	FailureMessage(err error) string
}

// Snapshot is what a template or CLI needs to render a view.
type Snapshot[I any] struct {
	Tool        string
	State       State
	Input       I
	Output      string
	Error       string
	Credits     int
	CreditsUsed int
	// CanSubmit mirrors the submit button: disabled while loading or out of credits.
	CanSubmit bool
}

// View is one tool view's state machine.
type View[I any] struct {
	runner Runner[I]
	meter  *credits.Meter
	logger *infra.Logger

	mu     sync.Mutex
	state  State
	input  I
	output string
	errMsg string
}

// NewView builds a view over runner that spends credits from meter.
func NewView[I any](runner Runner[I], meter *credits.Meter, logger *infra.Logger) *View[I] {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &View[I]{runner: runner, meter: meter, logger: logger}
}

// Mount refreshes the credit balance for the view.
func (v *View[I]) Mount(ctx context.Context) {
	v.meter.Mount(ctx)
}

// Snapshot returns the view's current state.
func (v *View[I]) Snapshot() Snapshot[I] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot[I]{
		Tool:        v.runner.Name(),
		State:       v.state,
		Input:       v.input,
		Output:      v.output,
		Error:       v.errMsg,
		Credits:     v.meter.Balance(),
		CreditsUsed: v.meter.Used(),
		CanSubmit:   v.state != StateLoading && v.meter.CanSpend(),
	}
}

// Submit runs the tool once. It refuses with domain.ErrBusy while a call is
// in flight and with domain.ErrNoCredits when the known balance is zero; in
// both cases no backend call is made. The credit balance only moves on success.
func (v *View[I]) Submit(ctx context.Context, in I) error {
	name := v.runner.Name()

	v.mu.Lock()
	if v.state == StateLoading {
		v.mu.Unlock()
		metrics.RecordTool(name, "busy")
		return domain.ErrBusy
	}
	if !v.meter.CanSpend() {
		v.mu.Unlock()
		metrics.RecordTool(name, "no_credits")
		return domain.ErrNoCredits
	}
	in, err := v.runner.Validate(in)
	v.input = in
	if err != nil {
		v.state = StateError
		v.output = ""
		v.errMsg = validationMessage(err)
		v.mu.Unlock()
		metrics.RecordTool(name, "invalid")
		return err
	}
	v.state = StateLoading
	v.output = ""
	v.errMsg = ""
	v.mu.Unlock()

	out, runErr := v.runner.Run(ctx, in)

	v.mu.Lock()
	if runErr != nil {
		v.state = StateError
		v.errMsg = v.runner.FailureMessage(runErr)
		v.mu.Unlock()
		v.logger.Warn().Err(runErr).Str("tool", name).Msg("tool call failed")
		metrics.RecordTool(name, "error")
		return runErr
	}
	v.state = StateSuccess
	v.output = out
	v.mu.Unlock()

	v.meter.Debit(ctx)
	metrics.RecordTool(name, "success")
	return nil
}

func validationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// ValidationError describes input the view refuses to send.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match domain.ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }
