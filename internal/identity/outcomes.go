package identity

import (
	"fmt"

	"github.com/kozaktomas/face-gate/internal/audit"
	"github.com/kozaktomas/face-gate/internal/facematch"
)

// LoginStatus tags the outcome of a login attempt
type LoginStatus string

const (
	LoginRecognized        LoginStatus = "recognized"
	LoginInvalidImage      LoginStatus = "invalid_image"
	LoginNoFace            LoginStatus = "no_face"
	LoginUnknown           LoginStatus = "unknown"
	LoginStoredDataMissing LoginStatus = "stored_data_missing"
)

// LoginOutcome is the result of Login. Name is set when the face was matched,
// Photo only on LoginRecognized.
type LoginOutcome struct {
	Status   LoginStatus
	Name     string
	Distance float64
	Photo    []byte
}

// Message returns the user-facing text for a failed login.
func (o LoginOutcome) Message() string {
	switch o.Status {
	case LoginRecognized:
		return ""
	case LoginInvalidImage:
		return "Invalid image data."
	case LoginStoredDataMissing:
		return "Stored image not found."
	default:
		return "Face not recognized."
	}
}

// RegisterStatus tags the outcome of a registration attempt
type RegisterStatus string

const (
	RegisterAdmitted         RegisterStatus = "admitted"
	RegisterEmptyName        RegisterStatus = "empty_name"
	RegisterInvalidImage     RegisterStatus = "invalid_image"
	RegisterNoFace           RegisterStatus = "no_face"
	RegisterNameTaken        RegisterStatus = "name_taken"
	RegisterFaceAlreadyKnown RegisterStatus = "face_already_known"
)

// RegisterOutcome is the result of Register. Existing names the identity that
// already owns the face on RegisterFaceAlreadyKnown.
type RegisterOutcome struct {
	Status   RegisterStatus
	Name     string
	Existing string
}

// Message returns the user-facing text for a failed registration.
func (o RegisterOutcome) Message() string {
	switch o.Status {
	case RegisterEmptyName:
		return "Name is required."
	case RegisterInvalidImage:
		return "Invalid image data."
	case RegisterNoFace:
		return "No face detected."
	case RegisterNameTaken:
		return "User already exists."
	case RegisterFaceAlreadyKnown:
		return fmt.Sprintf("This face is already registered as \"%s\". Cannot register the same person with multiple names.", o.Existing)
	default:
		return ""
	}
}

// DuplicateReport lists duplicate groups. Total is the number of groups and
// Members the number of identities they cover.
type DuplicateReport struct {
	Groups  []facematch.DuplicateGroup `json:"groups"`
	Total   int                        `json:"total"`
	Members int                        `json:"members"`
}

// CleanupReport is the result of Cleanup. Removed is empty unless executed;
// Errors holds one line per identity that could not be fully removed.
type CleanupReport struct {
	Executed bool                  `json:"executed"`
	Plan     facematch.CleanupPlan `json:"plan"`
	Removed  []string              `json:"removed"`
	Errors   []string              `json:"errors"`
}

// AttendanceEntry is one audit line, re-exported for callers of the service.
type AttendanceEntry = audit.Entry
