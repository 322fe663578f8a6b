package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/payee-flow/internal/report"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, doc report.Document) error
	WriteCalls     []WriteCall
	LastDocument   report.Document
	WriteCallCount int
	mu             sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error    error
	Document report.Document
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		WriteCalls: make([]WriteCall, 0),
	}
}

// Write implements the ReportWriter interface.
func (m *MockWriter) Write(ctx context.Context, doc report.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastDocument = doc

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, doc)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{
		Document: doc,
		Error:    err,
	})

	return err
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls = make([]WriteCall, 0)
	m.WriteCallCount = 0
	m.LastDocument = report.Document{}
}

var _ ReportWriter = (*MockWriter)(nil)
