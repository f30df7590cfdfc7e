package database

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Backend names used when registering an identity store
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMariaDB  = "mariadb"
)

var (
	registryMu     sync.RWMutex
	identityWriter func() IdentityWriter
	identityCloser io.Closer
	backendName    string
)

// RegisterIdentityBackend registers the identity store constructor for the active backend.
// This is called from cmd after the backend has been opened, to avoid import cycles.
// closer may be nil for backends without resources to release.
func RegisterIdentityBackend(name string, writer func() IdentityWriter, closer io.Closer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backendName = name
	identityWriter = writer
	identityCloser = closer
}

// IsInitialized returns whether an identity backend has been registered.
func IsInitialized() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return identityWriter != nil
}

// BackendName returns the name of the registered backend, or "" if none.
func BackendName() string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return backendName
}

// GetIdentityReader returns an IdentityReader from the registered backend
func GetIdentityReader(ctx context.Context) (IdentityReader, error) {
	return GetIdentityWriter(ctx)
}

// GetIdentityWriter returns an IdentityWriter from the registered backend
func GetIdentityWriter(ctx context.Context) (IdentityWriter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if identityWriter == nil {
		return nil, errors.New("identity store not initialized: no backend registered")
	}
	return identityWriter(), nil
}

// CloseBackend releases the registered backend's resources and unregisters it.
func CloseBackend() error {
	registryMu.Lock()
	defer registryMu.Unlock()
	closer := identityCloser
	identityWriter = nil
	identityCloser = nil
	backendName = ""
	if closer == nil {
		return nil
	}
	return closer.Close()
}
