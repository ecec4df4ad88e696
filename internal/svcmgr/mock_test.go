package svcmgr

import (
	"context"
	"io"
	"sync"
)

// mockManager is a scriptable ServiceManager for executor and streamer
// tests. Function fields default to benign no-ops; call counters record
// how many times each verb ran. Counters are mutex-guarded so the mock
// can sit behind the concurrent status fan-out.
type mockManager struct {
	statusFn func(name string) ServiceStatus
	logsFn   func(ctx context.Context, name string, opts LogOptions, w io.Writer) error

	mu          sync.Mutex
	startCalls  []string
	stopCalls   []string
	statusCalls []string
}

func (m *mockManager) Name() string { return "mock" }

func (m *mockManager) ServiceID(name string) string { return "mock-" + name }

func (m *mockManager) Available(context.Context) bool { return true }

func (m *mockManager) Install(context.Context, string, Descriptor) error { return nil }

func (m *mockManager) Start(_ context.Context, name string) error {
	m.mu.Lock()
	m.startCalls = append(m.startCalls, name)
	m.mu.Unlock()
	return nil
}

func (m *mockManager) Stop(_ context.Context, name string) error {
	m.mu.Lock()
	m.stopCalls = append(m.stopCalls, name)
	m.mu.Unlock()
	return nil
}

func (m *mockManager) Restart(context.Context, string) error { return nil }
func (m *mockManager) Reload(context.Context, string) error  { return nil }
func (m *mockManager) Enable(context.Context, string) error  { return nil }
func (m *mockManager) Disable(context.Context, string) error { return nil }

func (m *mockManager) Status(_ context.Context, name string) ServiceStatus {
	m.mu.Lock()
	m.statusCalls = append(m.statusCalls, name)
	m.mu.Unlock()
	if m.statusFn != nil {
		return m.statusFn(name)
	}
	return ServiceStatus{ID: m.ServiceID(name), State: StateActive}
}

func (m *mockManager) AllStatuses(ctx context.Context, names []string) []ServiceStatus {
	out := make([]ServiceStatus, len(names))
	for i, name := range names {
		out[i] = m.Status(ctx, name)
	}
	return out
}

func (m *mockManager) IsActive(ctx context.Context, name string) bool {
	return m.Status(ctx, name).State == StateActive
}

func (m *mockManager) Remove(context.Context, string) error { return nil }

func (m *mockManager) Logs(ctx context.Context, name string, opts LogOptions, w io.Writer) error {
	if m.logsFn != nil {
		return m.logsFn(ctx, name, opts, w)
	}
	return nil
}

func (m *mockManager) GenerateConfig(name string, _ Descriptor) (string, error) {
	return "# config for " + name + "\n", nil
}
