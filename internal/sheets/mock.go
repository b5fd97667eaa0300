package sheets

import (
	"context"
	"sync"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, report *Report) error
	LastReport *Report
	WriteCalls int
	mu         sync.Mutex
}

var _ ReportWriter = (*MockWriter)(nil)

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements the ReportWriter interface.
func (m *MockWriter) Write(ctx context.Context, report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls++
	m.LastReport = report

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}
