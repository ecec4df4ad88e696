package svcmgr

import "context"

// ServiceRef pairs a service name with its descriptor for batch work.
type ServiceRef struct {
	Name       string
	Descriptor Descriptor
}

// BatchResult records the outcome for one service in a batch. Skipped
// results are never successes: the operation was not attempted at all.
type BatchResult struct {
	// Name is the bare service name
	Name string
	// Success is true when the operation ran and its effect was confirmed
	Success bool
	// Skipped is true when the skip predicate short-circuited the service
	Skipped bool
	// Err is the failure message, empty on success or skip
	Err string
}

// BatchSummary aggregates the results of one batch run. The counts always
// satisfy Succeeded+Failed+Skipped == Total, and Results preserves the
// input order.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Results   []BatchResult
}

// BatchOperation is the caller-supplied action run for each service.
type BatchOperation func(ctx context.Context, m ServiceManager, name string, d Descriptor) error

// SkipFunc decides whether a service should be skipped before the
// operation is attempted, e.g. "already stopped" for a stop batch.
type SkipFunc func(ctx context.Context, m ServiceManager, name string, d Descriptor) bool

// BatchOptions tunes the skip/verify policy of one batch run.
type BatchOptions struct {
	// ShouldSkip, when set, is consulted before each service's operation
	ShouldSkip SkipFunc
	// SuccessStates is the set of states that confirm the operation's
	// effect. Nil means the default {active, activating}; a stop batch
	// passes {inactive, deactivating}.
	SuccessStates []State
	// NoVerify disables the post-operation status check for operations
	// whose effect is not observable as a service state (e.g. remove).
	NoVerify bool
	// Progress, when set, is invoked with each result as it is recorded,
	// in input order.
	Progress func(BatchResult)
}

// defaultSuccessStates confirms a start-style operation.
var defaultSuccessStates = []State{StateActive, StateActivating}

// BatchExecutor drives N services through one ServiceManager operation.
// Mutating operations run strictly sequentially: progress is printed per
// service in order, and concurrent systemctl daemon-reloads are known to
// contend on the manager's lock. Only read-only status fan-out is
// parallelized, inside the backends themselves.
type BatchExecutor struct {
	Manager ServiceManager
}

// NewBatchExecutor creates an executor bound to one backend.
func NewBatchExecutor(m ServiceManager) *BatchExecutor {
	return &BatchExecutor{Manager: m}
}

// Execute runs op for each service with skip/verify/aggregate semantics:
//
//  1. If ShouldSkip returns true the service is recorded as skipped and
//     op is never invoked for it.
//  2. op runs; an error is captured into the result and does not abort
//     the batch. Failures are isolated per service.
//  3. On op success the service's state is fetched and must be a member
//     of SuccessStates to count as a success; "the command ran" is not
//     "the effect is confirmed".
func (e *BatchExecutor) Execute(ctx context.Context, services []ServiceRef, op BatchOperation, opts BatchOptions) BatchSummary {
	summary := BatchSummary{
		Total:   len(services),
		Results: make([]BatchResult, 0, len(services)),
	}

	successStates := opts.SuccessStates
	if successStates == nil {
		successStates = defaultSuccessStates
	}

	record := func(res BatchResult) {
		summary.Results = append(summary.Results, res)
		switch {
		case res.Skipped:
			summary.Skipped++
		case res.Success:
			summary.Succeeded++
		default:
			summary.Failed++
		}
		if opts.Progress != nil {
			opts.Progress(res)
		}
	}

	for _, svc := range services {
		if opts.ShouldSkip != nil && opts.ShouldSkip(ctx, e.Manager, svc.Name, svc.Descriptor) {
			record(BatchResult{Name: svc.Name, Skipped: true})
			continue
		}

		if err := op(ctx, e.Manager, svc.Name, svc.Descriptor); err != nil {
			record(BatchResult{Name: svc.Name, Err: err.Error()})
			continue
		}

		if opts.NoVerify {
			record(BatchResult{Name: svc.Name, Success: true})
			continue
		}

		state := e.Manager.Status(ctx, svc.Name).State
		if stateIn(state, successStates) {
			record(BatchResult{Name: svc.Name, Success: true})
		} else {
			record(BatchResult{Name: svc.Name,
				Err: "command completed but service is " + state.String()})
		}
	}

	return summary
}

func stateIn(s State, set []State) bool {
	for _, m := range set {
		if s == m {
			return true
		}
	}
	return false
}
