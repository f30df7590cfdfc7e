// Package identity runs login, registration and duplicate cleanup on top of
// the matching core, the identity store, the photo store and the audit log.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/database"
	"github.com/kozaktomas/face-gate/internal/embedding"
	"github.com/kozaktomas/face-gate/internal/facematch"
	"github.com/kozaktomas/face-gate/internal/photos"
)

// PhotoStore keeps one photo per identity name
type PhotoStore interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	Delete(name string) error
}

// AuditLog records recognized logins
type AuditLog interface {
	Record(name, direction string) error
	Entries() ([]AttendanceEntry, error)
}

// Options holds the matching settings of a Service
type Options struct {
	EnrollTolerance    float64
	DuplicateTolerance float64
	Policy             facematch.ClusterPolicy
	MaxImageSize       int
}

// Service serializes all mutations of the identity store. Register and cleanup
// execution hold the write lock for their whole read-check-write sequence;
// login and duplicate reports hold the read lock while they take a snapshot.
// The lock only covers this process; the store's PutIfAbsent is the guard
// against writers in other processes.
type Service struct {
	mu        sync.RWMutex
	store     database.IdentityWriter
	extractor embedding.Extractor
	photos    PhotoStore
	audit     AuditLog
	opts      Options
}

// NewService creates an identity service. audit may be nil to skip attendance logging.
func NewService(store database.IdentityWriter, extractor embedding.Extractor, photoStore PhotoStore, auditLog AuditLog, opts Options) *Service {
	if opts.Policy == "" {
		opts.Policy = facematch.PolicyGreedy
	}
	if opts.MaxImageSize <= 0 {
		opts.MaxImageSize = constants.MaxImageSize
	}
	return &Service{
		store:     store,
		extractor: extractor,
		photos:    photoStore,
		audit:     auditLog,
		opts:      opts,
	}
}

// extract preprocesses the image and returns it with the encodings found in it.
func (s *Service) extract(ctx context.Context, image []byte) ([]byte, []facematch.Encoding, error) {
	prepared, err := embedding.Preprocess(image, s.opts.MaxImageSize)
	if err != nil {
		return nil, nil, err
	}
	encodings, err := s.extractor.ExtractFaces(ctx, prepared)
	if err != nil {
		return nil, nil, fmt.Errorf("extract faces: %w", err)
	}
	return prepared, encodings, nil
}

func (s *Service) snapshot(ctx context.Context) ([]facematch.Entry, error) {
	identities, err := s.store.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate identities: %w", err)
	}
	return database.Entries(identities), nil
}

// Login recognizes the first face in image against the enrolled identities.
// A recognized login is written to the audit log before the stored photo is
// loaded, so a missing photo still leaves an attendance record.
func (s *Service) Login(ctx context.Context, image []byte) (LoginOutcome, error) {
	_, encodings, err := s.extract(ctx, image)
	if errors.Is(err, embedding.ErrInvalidImage) {
		return LoginOutcome{Status: LoginInvalidImage}, nil
	}
	if err != nil {
		return LoginOutcome{}, err
	}

	s.mu.RLock()
	entries, err := s.snapshot(ctx)
	s.mu.RUnlock()
	if err != nil {
		return LoginOutcome{}, err
	}

	match := facematch.MatchFirst(encodings, entries, s.opts.EnrollTolerance)
	switch match.Status {
	case facematch.NoFaceDetected:
		return LoginOutcome{Status: LoginNoFace}, nil
	case facematch.NoMatch:
		return LoginOutcome{Status: LoginUnknown}, nil
	}

	outcome := LoginOutcome{Name: match.Identity, Distance: match.Distance}
	if s.audit != nil {
		if err := s.audit.Record(match.Identity, constants.DirectionIn); err != nil {
			return LoginOutcome{}, fmt.Errorf("record attendance: %w", err)
		}
	}

	photo, err := s.photos.Get(match.Identity)
	if errors.Is(err, photos.ErrPhotoNotFound) {
		outcome.Status = LoginStoredDataMissing
		return outcome, nil
	}
	if err != nil {
		return LoginOutcome{}, fmt.Errorf("load photo: %w", err)
	}

	outcome.Status = LoginRecognized
	outcome.Photo = photo
	return outcome, nil
}

// Candidate is a registration whose image has been decoded and run through
// the extractor but not yet admitted. Outcome is set when the candidate was
// already rejected before reaching the store.
type Candidate struct {
	Name     string
	Outcome  *RegisterOutcome
	prepared []byte
	encoding facematch.Encoding
}

// Prepare runs the checks of Register that do not need the store: the empty
// name check, image decoding and face extraction. It takes no lock, so
// several candidates can be prepared concurrently.
func (s *Service) Prepare(ctx context.Context, name string, image []byte) (Candidate, error) {
	name = facematch.CanonicalName(name)
	if name == "" {
		return Candidate{Outcome: &RegisterOutcome{Status: RegisterEmptyName}}, nil
	}

	prepared, encodings, err := s.extract(ctx, image)
	if errors.Is(err, embedding.ErrInvalidImage) {
		return Candidate{Name: name, Outcome: &RegisterOutcome{Status: RegisterInvalidImage, Name: name}}, nil
	}
	if err != nil {
		return Candidate{}, err
	}
	if len(encodings) == 0 {
		return Candidate{Name: name, Outcome: &RegisterOutcome{Status: RegisterNoFace, Name: name}}, nil
	}
	return Candidate{Name: name, prepared: prepared, encoding: encodings[0]}, nil
}

// Enroll admits a prepared candidate against the current store contents.
// Rejections leave the store untouched. On success the encoding is written
// first and the photo second; a failed photo write removes the encoding again.
func (s *Service) Enroll(ctx context.Context, c Candidate) (RegisterOutcome, error) {
	if c.Outcome != nil {
		return *c.Outcome, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.snapshot(ctx)
	if err != nil {
		return RegisterOutcome{}, err
	}

	admit := facematch.Admit(c.Name, c.encoding, entries, s.opts.EnrollTolerance)
	switch admit.Status {
	case facematch.RejectedEmptyName:
		return RegisterOutcome{Status: RegisterEmptyName}, nil
	case facematch.RejectedNameTaken:
		return RegisterOutcome{Status: RegisterNameTaken, Name: admit.Name}, nil
	case facematch.RejectedFaceAlreadyKnown:
		return RegisterOutcome{Status: RegisterFaceAlreadyKnown, Name: admit.Name, Existing: admit.Existing}, nil
	}

	err = s.store.PutIfAbsent(ctx, database.StoredIdentity{
		Name:      admit.Name,
		Encoding:  c.encoding,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, database.ErrIdentityExists) {
		return RegisterOutcome{Status: RegisterNameTaken, Name: admit.Name}, nil
	}
	if err != nil {
		return RegisterOutcome{}, fmt.Errorf("store identity: %w", err)
	}

	if err := s.photos.Put(admit.Name, c.prepared); err != nil {
		if delErr := s.store.Delete(ctx, admit.Name); delErr != nil {
			return RegisterOutcome{}, fmt.Errorf("store photo: %w (rollback failed: %v)", err, delErr)
		}
		return RegisterOutcome{}, fmt.Errorf("store photo: %w", err)
	}

	return RegisterOutcome{Status: RegisterAdmitted, Name: admit.Name}, nil
}

// Register enrolls name with the first face in image. It is Prepare followed
// by Enroll.
func (s *Service) Register(ctx context.Context, name string, image []byte) (RegisterOutcome, error) {
	c, err := s.Prepare(ctx, name, image)
	if err != nil {
		return RegisterOutcome{}, err
	}
	return s.Enroll(ctx, c)
}

// Duplicates clusters the enrolled identities under the duplicate tolerance.
func (s *Service) Duplicates(ctx context.Context) (DuplicateReport, error) {
	s.mu.RLock()
	entries, err := s.snapshot(ctx)
	s.mu.RUnlock()
	if err != nil {
		return DuplicateReport{}, err
	}
	return s.report(entries), nil
}

func (s *Service) report(entries []facematch.Entry) DuplicateReport {
	groups := facematch.Cluster(entries, s.opts.DuplicateTolerance, s.opts.Policy)
	if groups == nil {
		groups = []facematch.DuplicateGroup{}
	}
	return DuplicateReport{
		Groups:  groups,
		Total:   len(groups),
		Members: facematch.Members(groups),
	}
}

// Cleanup computes the removal plan and, when execute is set, deletes the
// encoding and photo of every planned identity. Clustering and deletion run
// under one write lock so the plan cannot go stale before it is applied.
func (s *Service) Cleanup(ctx context.Context, execute bool) (CleanupReport, error) {
	if !execute {
		dup, err := s.Duplicates(ctx)
		if err != nil {
			return CleanupReport{}, err
		}
		return CleanupReport{
			Plan:    facematch.Plan(dup.Groups),
			Removed: []string{},
			Errors:  []string{},
		}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.snapshot(ctx)
	if err != nil {
		return CleanupReport{}, err
	}

	report := CleanupReport{
		Executed: true,
		Plan:     facematch.Plan(s.report(entries).Groups),
		Removed:  []string{},
		Errors:   []string{},
	}
	for _, name := range report.Plan {
		if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, database.ErrIdentityNotFound) {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if err := s.photos.Delete(name); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		report.Removed = append(report.Removed, name)
	}
	return report, nil
}

// Identities returns the enrolled names in name order.
func (s *Service) Identities(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identities, err := s.store.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate identities: %w", err)
	}
	names := make([]string, len(identities))
	for i, id := range identities {
		names[i] = id.Name
	}
	return names, nil
}

// Attendance returns the audit log entries, oldest first.
func (s *Service) Attendance() ([]AttendanceEntry, error) {
	if s.audit == nil {
		return nil, nil
	}
	entries, err := s.audit.Entries()
	if err != nil {
		return nil, fmt.Errorf("read attendance: %w", err)
	}
	return entries, nil
}
