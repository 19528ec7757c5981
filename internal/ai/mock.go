package ai

import (
	"context"
	"sync"

	"github.com/ortelius/pdvd-assess/model"
)

// MockProvider is a test double that returns a canned analysis.
type MockProvider struct {
	Result Analysis
	Err    error

	mu    sync.Mutex
	calls int
}

func (m *MockProvider) Name() string {
	if m.Result.Provider != "" {
		return m.Result.Provider
	}
	return "mock"
}

func (m *MockProvider) Analyze(_ context.Context, _ *model.Vulnerability, _ *model.Application) (Analysis, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return Analysis{}, m.Err
	}
	res := m.Result
	if res.Provider == "" {
		res.Provider = m.Name()
	}
	return res, nil
}

// Calls returns how many times Analyze ran.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
