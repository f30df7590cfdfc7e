package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-gate/internal/database"
	"github.com/kozaktomas/face-gate/internal/identity"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// errImageDecode is returned by decodeImage for payloads that are not base64
var errImageDecode = errors.New("image is not valid base64")

// IdentityService is the part of identity.Service used by the handlers
type IdentityService interface {
	Login(ctx context.Context, image []byte) (identity.LoginOutcome, error)
	Register(ctx context.Context, name string, image []byte) (identity.RegisterOutcome, error)
	Duplicates(ctx context.Context) (identity.DuplicateReport, error)
	Cleanup(ctx context.Context, execute bool) (identity.CleanupReport, error)
	Identities(ctx context.Context) ([]string, error)
	Attendance() ([]identity.AttendanceEntry, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a JSON body into target, bounded by maxBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	return json.NewDecoder(r.Body).Decode(target)
}

// decodeImage accepts a data URL (data:image/jpeg;base64,...) or bare base64.
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		_, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, errImageDecode
		}
		s = payload
	}
	if s == "" {
		return nil, errImageDecode
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errImageDecode
	}
	return data, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": database.BackendName(),
	})
}
