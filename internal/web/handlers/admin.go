package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-gate/internal/facematch"
	"github.com/kozaktomas/face-gate/internal/identity"
	"github.com/kozaktomas/face-gate/internal/metrics"
)

// Cleanup actions accepted by POST /admin/cleanup
const (
	ActionReport  = "report"
	ActionCleanup = "cleanup"
)

// AdminHandler handles duplicate reports, cleanup and listings
type AdminHandler struct {
	svc     IdentityService
	metrics *metrics.Metrics
}

// NewAdminHandler creates a new admin handler. m may be nil.
func NewAdminHandler(svc IdentityService, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{svc: svc, metrics: m}
}

// CleanupRequest represents a cleanup request
type CleanupRequest struct {
	Action string `json:"action"`
}

// CleanupResponse represents the result of a cleanup request
type CleanupResponse struct {
	Action  string                `json:"action"`
	Plan    facematch.CleanupPlan `json:"plan"`
	Removed []string              `json:"removed"`
	Errors  []string              `json:"errors"`
}

// Duplicates returns the duplicate groups under the duplicate tolerance.
func (h *AdminHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Duplicates(r.Context())
	if err != nil {
		log.Printf("duplicate report failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to compute duplicates")
		return
	}
	h.metrics.SetDuplicateGroups(report.Total)
	respondJSON(w, http.StatusOK, report)
}

// Cleanup reports the cleanup plan, or executes it when action is "cleanup".
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if err := decodeJSON(w, r, 1<<10, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Action == "" {
		req.Action = ActionReport
	}
	if req.Action != ActionReport && req.Action != ActionCleanup {
		respondError(w, http.StatusBadRequest, "action must be report or cleanup")
		return
	}

	report, err := h.svc.Cleanup(r.Context(), req.Action == ActionCleanup)
	if err != nil {
		log.Printf("cleanup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	if report.Executed {
		h.metrics.RecordCleanup(len(report.Removed))
		log.Printf("cleanup: removed %d identities, %d errors", len(report.Removed), len(report.Errors))
	}

	respondJSON(w, http.StatusOK, CleanupResponse{
		Action:  req.Action,
		Plan:    report.Plan,
		Removed: report.Removed,
		Errors:  report.Errors,
	})
}

// Identities lists the enrolled identity names.
func (h *AdminHandler) Identities(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Identities(r.Context())
	if err != nil {
		log.Printf("list identities failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"identities": names,
		"count":      len(names),
	})
}

// Attendance returns the login audit log.
func (h *AdminHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Attendance()
	if err != nil {
		log.Printf("read attendance failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance log")
		return
	}
	if entries == nil {
		entries = []identity.AttendanceEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
