package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-gate/internal/identity"
)

// stubService is a configurable IdentityService for handler tests
type stubService struct {
	loginOutcome    identity.LoginOutcome
	registerOutcome identity.RegisterOutcome
	duplicates      identity.DuplicateReport
	cleanup         identity.CleanupReport
	identities      []string
	attendance      []identity.AttendanceEntry
	err             error

	// recorded inputs
	loginImage      []byte
	registerName    string
	registerImage   []byte
	cleanupExecuted *bool
}

func (s *stubService) Login(ctx context.Context, image []byte) (identity.LoginOutcome, error) {
	s.loginImage = image
	return s.loginOutcome, s.err
}

func (s *stubService) Register(ctx context.Context, name string, image []byte) (identity.RegisterOutcome, error) {
	s.registerName = name
	s.registerImage = image
	return s.registerOutcome, s.err
}

func (s *stubService) Duplicates(ctx context.Context) (identity.DuplicateReport, error) {
	return s.duplicates, s.err
}

func (s *stubService) Cleanup(ctx context.Context, execute bool) (identity.CleanupReport, error) {
	s.cleanupExecuted = &execute
	return s.cleanup, s.err
}

func (s *stubService) Identities(ctx context.Context) ([]string, error) {
	return s.identities, s.err
}

func (s *stubService) Attendance() ([]identity.AttendanceEntry, error) {
	return s.attendance, s.err
}

// jsonRequest creates a request with a JSON encoded body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
