package git

import (
	"context"
)

// MockService is a test double for git.Service.
type MockService struct {
	Staged   string
	Range    string
	Err      error
	LastBase string
}

// StagedDiff returns the configured staged diff.
func (m *MockService) StagedDiff(_ context.Context) (string, error) {
	return m.Staged, m.Err
}

// RangeDiff records base and returns the configured range diff.
func (m *MockService) RangeDiff(_ context.Context, base string) (string, error) {
	m.LastBase = base
	return m.Range, m.Err
}
