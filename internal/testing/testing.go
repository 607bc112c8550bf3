// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"sunwave/internal/models"
)

// MockProvider is a test double for [services.Provider].
//
// Submissions return fixed identifiers; FetchTask replays the Records slice
// (or Err) on every call.
type MockProvider struct {
	TaskID    string
	PersonaID string
	Records   []models.Song
	Err       error
}

func (m *MockProvider) SubmitGeneration(ctx context.Context, req models.GenerateRequest) (string, error) {
	return m.taskID(), m.Err
}

func (m *MockProvider) SubmitExtend(ctx context.Context, req models.ExtendRequest) (string, error) {
	return m.taskID(), m.Err
}

func (m *MockProvider) SubmitCover(ctx context.Context, req models.CoverRequest) (string, error) {
	return m.taskID(), m.Err
}

func (m *MockProvider) SubmitPersona(ctx context.Context, req models.PersonaRequest) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.PersonaID != "" {
		return m.PersonaID, nil
	}
	return "mock-persona", nil
}

func (m *MockProvider) FetchTask(ctx context.Context, taskID string) ([]models.Song, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Records == nil {
		return []models.Song{}, nil
	}
	return m.Records, nil
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) taskID() string {
	if m.TaskID != "" {
		return m.TaskID
	}
	return "mock-task"
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
