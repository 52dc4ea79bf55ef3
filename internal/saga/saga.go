// Package saga runs the order-creation persistence steps as a compensated
// sequence: a failing step triggers LIFO compensation of every step that
// already succeeded, so a half-created order never leaves orphaned rows
// behind. Every transition is appended to the durable saga log.
package saga

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gyroball/checkout/internal/saga/sagalog"
)

// Step represents a single unit of work in the saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	id      string
	payload string
	steps   []Step
	log     sagalog.Repository // nil-safe: transitions are not persisted if nil
}

// NewOrchestrator builds a saga identified by id (the order id). payload is
// the JSON-serialised input, stored on the STARTED log row.
func NewOrchestrator(id, payload string, steps []Step, log sagalog.Repository) *Orchestrator {
	return &Orchestrator{id: id, payload: payload, steps: steps, log: log}
}

// Start runs the saga steps sequentially. If a step fails, the compensation
// of all previously successful steps runs in reverse order and the step's
// error is returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, sagalog.StatusStarted, "", o.payload, nil)

	var successful []Step
	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing saga step", "saga_id", o.id, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "saga step failed, compensating", "saga_id", o.id, "step", step.Name(), "error", err)

			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(ctx, sagalog.StatusCompensating, step.Name(), "", errs)
			errs = append(errs, o.rollback(ctx, successful)...)
			o.record(ctx, sagalog.StatusFailed, step.Name(), "", errs)

			return fmt.Errorf("saga %s: step %s: %w", o.id, step.Name(), err)
		}
		o.record(ctx, sagalog.StatusStepDone, step.Name(), "", nil)
		successful = append(successful, step)
	}

	o.record(ctx, sagalog.StatusCompleted, "", "", nil)
	return nil
}

// rollback compensates the given steps in LIFO order. Compensation errors
// are collected, not propagated: the rest of the rollback still runs.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating saga step", "saga_id", o.id, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "saga compensation failed", "saga_id", o.id, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status sagalog.Status, step, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, o.id, status, step, payload, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to persist saga log entry", "saga_id", o.id, "status", status, "error", err)
	}
}
