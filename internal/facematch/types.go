// Package facematch implements the encoding matching and duplicate clustering core.
// Everything in this package is pure: callers pass a snapshot of the stored
// identities and get typed outcomes back. Nothing here logs or touches storage.
package facematch

// Encoding is a fixed-length face feature vector produced by the extractor.
// Encodings are compared by distance only.
type Encoding []float32

// Entry is one stored identity as seen by the matcher and the clusterer.
type Entry struct {
	Name     string
	Encoding Encoding
}

// MatchStatus tags the outcome of a matching call
type MatchStatus string

const (
	NoFaceDetected MatchStatus = "no_face_detected" // Extractor found no face; produced by callers, never by Match
	NoMatch        MatchStatus = "no_match"         // No stored encoding within tolerance
	Matched        MatchStatus = "matched"          // Identity holds the first candidate in scan order
)

// MatchResult is the outcome of Match.
type MatchResult struct {
	Status   MatchStatus
	Identity string
	Distance float64
}

// AdmitStatus tags the outcome of an enrollment check
type AdmitStatus string

const (
	Admitted                 AdmitStatus = "admitted"
	RejectedEmptyName        AdmitStatus = "rejected_empty_name"
	RejectedNameTaken        AdmitStatus = "rejected_name_taken"
	RejectedFaceAlreadyKnown AdmitStatus = "rejected_face_already_known"
)

// AdmitResult is the outcome of Admit. Name is the canonical name that should
// be written on Admitted; Existing is set on RejectedFaceAlreadyKnown.
type AdmitResult struct {
	Status   AdmitStatus
	Name     string
	Existing string
	Distance float64
}

// DuplicateGroup is a primary identity plus the identities judged equivalent to it.
type DuplicateGroup struct {
	Primary    string   `json:"primary"`
	Duplicates []string `json:"duplicates"`
}

// CleanupPlan lists identities slated for removal, in group order.
type CleanupPlan []string
