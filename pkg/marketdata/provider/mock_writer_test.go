package provider

import (
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

type writtenBar struct {
	symbol string
	bar    types.Bar
}

// mockWriter records the bars it receives.
type mockWriter struct {
	initialized       bool
	initializeErr     error
	writeErr          error
	writeErrAfterN    int // fail after N successful writes, 0 fails immediately
	finalizeErr       error
	closeErr          error
	outputPath        string
	writtenData       []writtenBar
	writeCallCount    int
	finalizeCallCount int
	closeCallCount    int
}

func (m *mockWriter) Initialize() error {
	if m.initializeErr != nil {
		return m.initializeErr
	}

	m.initialized = true

	return nil
}

func (m *mockWriter) Write(symbol string, bar types.Bar) error {
	m.writeCallCount++
	if m.writeErr != nil && (m.writeErrAfterN == 0 || m.writeCallCount > m.writeErrAfterN) {
		return m.writeErr
	}

	m.writtenData = append(m.writtenData, writtenBar{symbol: symbol, bar: bar})

	return nil
}

func (m *mockWriter) Finalize() (string, error) {
	m.finalizeCallCount++
	if m.finalizeErr != nil {
		return "", m.finalizeErr
	}

	return m.outputPath, nil
}

func (m *mockWriter) Close() error {
	m.closeCallCount++

	return m.closeErr
}

func (m *mockWriter) OutputPath() string {
	return m.outputPath
}
