package svcmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func refs(names ...string) []ServiceRef {
	out := make([]ServiceRef, len(names))
	for i, name := range names {
		out[i] = ServiceRef{Name: name, Descriptor: Descriptor{Name: name}}
	}
	return out
}

func TestBatchAllSucceed(t *testing.T) {
	m := &mockManager{}
	exec := NewBatchExecutor(m)

	sum := exec.Execute(context.Background(), refs("web", "db"),
		func(ctx context.Context, m ServiceManager, name string, _ Descriptor) error {
			return m.Start(ctx, name)
		}, BatchOptions{})

	require.Equal(t, 2, sum.Total)
	require.Equal(t, 2, sum.Succeeded)
	require.Equal(t, 0, sum.Failed)
	require.Equal(t, 0, sum.Skipped)
	require.Len(t, sum.Results, 2)
	require.Equal(t, "web", sum.Results[0].Name)
	require.Equal(t, "db", sum.Results[1].Name)
}

func TestBatchOperationError(t *testing.T) {
	m := &mockManager{}
	exec := NewBatchExecutor(m)

	sum := exec.Execute(context.Background(), refs("web"),
		func(context.Context, ServiceManager, string, Descriptor) error {
			return errors.New("Connection failed")
		}, BatchOptions{})

	require.Equal(t, 1, sum.Failed)
	res := sum.Results[0]
	require.False(t, res.Success)
	require.False(t, res.Skipped)
	require.Equal(t, "Connection failed", res.Err)
}

func TestBatchSkipPrecedence(t *testing.T) {
	m := &mockManager{}
	exec := NewBatchExecutor(m)

	executed := 0
	sum := exec.Execute(context.Background(), refs("web", "db"),
		func(context.Context, ServiceManager, string, Descriptor) error {
			executed++
			return nil
		},
		BatchOptions{
			ShouldSkip: func(_ context.Context, _ ServiceManager, name string, _ Descriptor) bool {
				return name == "web"
			},
		})

	require.Equal(t, 1, executed, "skipped service must never reach execute")
	require.Equal(t, 1, sum.Skipped)
	require.Equal(t, 1, sum.Succeeded)
	require.True(t, sum.Results[0].Skipped)
	require.False(t, sum.Results[0].Success, "skipped implies not success")
}

func TestBatchFailureIsolation(t *testing.T) {
	m := &mockManager{}
	exec := NewBatchExecutor(m)

	sum := exec.Execute(context.Background(), refs("a", "b", "c"),
		func(_ context.Context, _ ServiceManager, name string, _ Descriptor) error {
			if name == "a" {
				return errors.New("boom")
			}
			return nil
		}, BatchOptions{})

	require.Equal(t, 3, sum.Total)
	require.Equal(t, 1, sum.Failed)
	require.Equal(t, 2, sum.Succeeded)
	require.Equal(t, []string{"a", "b", "c"},
		[]string{sum.Results[0].Name, sum.Results[1].Name, sum.Results[2].Name})
	require.True(t, sum.Results[1].Success)
	require.True(t, sum.Results[2].Success)
}

func TestBatchVerifyRejectsWrongState(t *testing.T) {
	m := &mockManager{
		statusFn: func(name string) ServiceStatus {
			return ServiceStatus{ID: name, State: StateInactive}
		},
	}
	exec := NewBatchExecutor(m)

	sum := exec.Execute(context.Background(), refs("web"),
		func(context.Context, ServiceManager, string, Descriptor) error {
			return nil // command ran fine, effect did not stick
		}, BatchOptions{})

	require.Equal(t, 1, sum.Failed)
	require.Contains(t, sum.Results[0].Err, "inactive")
}

func TestBatchSuccessStateOverride(t *testing.T) {
	m := &mockManager{
		statusFn: func(name string) ServiceStatus {
			return ServiceStatus{ID: name, State: StateInactive}
		},
	}
	exec := NewBatchExecutor(m)

	op := func(ctx context.Context, m ServiceManager, name string, _ Descriptor) error {
		return m.Stop(ctx, name)
	}

	// Default success set treats inactive as a failure...
	sum := exec.Execute(context.Background(), refs("web"), op, BatchOptions{})
	require.Equal(t, 1, sum.Failed)

	// ...a stop-shaped set accepts it, without changing what ran.
	sum = exec.Execute(context.Background(), refs("web"), op, BatchOptions{
		SuccessStates: []State{StateInactive, StateDeactivating},
	})
	require.Equal(t, 1, sum.Succeeded)
	require.Len(t, m.stopCalls, 2)
}

func TestBatchNoVerifySkipsStatus(t *testing.T) {
	m := &mockManager{}
	exec := NewBatchExecutor(m)

	sum := exec.Execute(context.Background(), refs("web"),
		func(context.Context, ServiceManager, string, Descriptor) error { return nil },
		BatchOptions{NoVerify: true})

	require.Equal(t, 1, sum.Succeeded)
	require.Empty(t, m.statusCalls)
}

func TestBatchEmptyInput(t *testing.T) {
	exec := NewBatchExecutor(&mockManager{})

	sum := exec.Execute(context.Background(), nil,
		func(context.Context, ServiceManager, string, Descriptor) error { return nil },
		BatchOptions{})

	require.Equal(t, 0, sum.Total)
	require.Equal(t, 0, sum.Succeeded+sum.Failed+sum.Skipped)
	require.Empty(t, sum.Results)
}

func TestBatchInvariantHolds(t *testing.T) {
	m := &mockManager{
		statusFn: func(name string) ServiceStatus {
			if name == "flaky" {
				return ServiceStatus{ID: name, State: StateFailed}
			}
			return ServiceStatus{ID: name, State: StateActive}
		},
	}
	exec := NewBatchExecutor(m)

	sum := exec.Execute(context.Background(), refs("a", "flaky", "skipme", "b"),
		func(_ context.Context, _ ServiceManager, name string, _ Descriptor) error {
			return nil
		},
		BatchOptions{
			ShouldSkip: func(_ context.Context, _ ServiceManager, name string, _ Descriptor) bool {
				return name == "skipme"
			},
		})

	require.Equal(t, sum.Total, sum.Succeeded+sum.Failed+sum.Skipped)
	require.Equal(t, 4, sum.Total)
	require.Equal(t, 2, sum.Succeeded)
	require.Equal(t, 1, sum.Failed)
	require.Equal(t, 1, sum.Skipped)
}

func TestBatchProgressOrder(t *testing.T) {
	m := &mockManager{}
	exec := NewBatchExecutor(m)

	var seen []string
	exec.Execute(context.Background(), refs("one", "two", "three"),
		func(context.Context, ServiceManager, string, Descriptor) error { return nil },
		BatchOptions{Progress: func(res BatchResult) {
			seen = append(seen, res.Name)
		}})

	require.Equal(t, []string{"one", "two", "three"}, seen)
}
