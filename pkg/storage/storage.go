// Package storage defines the interface for object storage operations.
// The catalog service never proxies image bytes itself: it issues a signed,
// time-limited upload location and the client writes directly to the bucket.
package storage

import "context"

// SignedUpload is the capability handed to a client for one direct upload.
// SignedURL and Token are opaque to the caller beyond performing the upload;
// PublicURL is where the object will be readable once the upload completes.
type SignedUpload struct {
	Token     string `json:"token"`
	Path      string `json:"path"`
	SignedURL string `json:"signedUrl"`
	PublicURL string `json:"publicUrl"`
}

// Uploader issues signed upload locations against an object-storage bucket.
type Uploader interface {
	// CreateSignedUploadURL requests a time-limited upload location for key.
	CreateSignedUploadURL(ctx context.Context, key string) (*SignedUpload, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
