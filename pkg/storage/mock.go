package storage

import (
	"context"
	"fmt"
	"sync"
)

// MockUploader is an in-memory Uploader for tests and local development.
// It records issued keys and can be flipped into a failing state to
// exercise dependency-error paths.
type MockUploader struct {
	mu     sync.Mutex
	issued []string
	Fail   bool
}

// NewMockUploader creates a new MockUploader.
func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

// CreateSignedUploadURL returns a deterministic fake signed location, or an
// error when the uploader is in its failing state.
func (m *MockUploader) CreateSignedUploadURL(_ context.Context, key string) (*SignedUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return nil, fmt.Errorf("mock storage gateway unavailable")
	}
	m.issued = append(m.issued, key)
	return &SignedUpload{
		Token:     "mock-token-" + key,
		Path:      key,
		SignedURL: "https://storage.local/upload/sign/product-images/" + key,
		PublicURL: m.PublicURL(key),
	}, nil
}

// PublicURL returns the fake public URL for key.
func (m *MockUploader) PublicURL(key string) string {
	return "https://storage.local/object/public/product-images/" + key
}

// IssuedKeys returns the keys issued so far, in order.
func (m *MockUploader) IssuedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.issued...)
}
