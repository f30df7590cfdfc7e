package handlers

import (
	"encoding/base64"
	"log"
	"net/http"

	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/identity"
	"github.com/kozaktomas/face-gate/internal/metrics"
)

// IdentityHandler handles login and registration
type IdentityHandler struct {
	svc     IdentityService
	metrics *metrics.Metrics
}

// NewIdentityHandler creates a new identity handler. m may be nil.
func NewIdentityHandler(svc IdentityService, m *metrics.Metrics) *IdentityHandler {
	return &IdentityHandler{svc: svc, metrics: m}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Image string `json:"image"`
}

// LoginResponse represents a login response. Image is the stored photo, base64 encoded.
type LoginResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Image   string `json:"image,omitempty"`
	Message string `json:"message,omitempty"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// RegisterResponse represents a registration response
type RegisterResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// Login recognizes the face in the submitted image.
// Rejections are reported with success=false and a message, not an HTTP error.
func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, constants.MaxUploadSize, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		h.metrics.RecordLogin(string(identity.LoginInvalidImage))
		respondJSON(w, http.StatusOK, LoginResponse{Message: "Invalid image data."})
		return
	}

	outcome, err := h.svc.Login(r.Context(), image)
	if err != nil {
		log.Printf("login failed: %v", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.metrics.RecordLogin(string(outcome.Status))

	switch outcome.Status {
	case identity.LoginRecognized:
		log.Printf("login: recognized %s (distance %.3f)", sanitizeForLog(outcome.Name), outcome.Distance)
		respondJSON(w, http.StatusOK, LoginResponse{
			Success: true,
			Name:    outcome.Name,
			Image:   base64.StdEncoding.EncodeToString(outcome.Photo),
		})
	case identity.LoginStoredDataMissing:
		log.Printf("login: photo missing for recognized identity %s", sanitizeForLog(outcome.Name))
		respondJSON(w, http.StatusOK, LoginResponse{Name: outcome.Name, Message: outcome.Message()})
	default:
		respondJSON(w, http.StatusOK, LoginResponse{Message: outcome.Message()})
	}
}

// Register enrolls a new identity.
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, constants.MaxUploadSize, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		// the empty-name rejection takes precedence over a bad image
		image = nil
	}

	outcome, err := h.svc.Register(r.Context(), req.Name, image)
	if err != nil {
		log.Printf("register %s failed: %v", sanitizeForLog(req.Name), err)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	h.metrics.RecordRegistration(string(outcome.Status))

	if outcome.Status != identity.RegisterAdmitted {
		respondJSON(w, http.StatusOK, RegisterResponse{Message: outcome.Message()})
		return
	}

	log.Printf("register: enrolled %s", sanitizeForLog(outcome.Name))
	respondJSON(w, http.StatusOK, RegisterResponse{Success: true, Name: outcome.Name})
}
