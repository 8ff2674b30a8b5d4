package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseUploader issues signed upload URLs against the Supabase Storage
// REST API. It works with any Supabase-hosted or self-hosted instance.
type SupabaseUploader struct {
	baseURL    string // e.g. https://xyz.supabase.co
	bucket     string
	serviceKey string
	client     *http.Client
}

// SupabaseConfig holds Supabase Storage connection details.
type SupabaseConfig struct {
	BaseURL    string
	Bucket     string
	ServiceKey string
}

// NewSupabaseUploader creates a new SupabaseUploader.
func NewSupabaseUploader(cfg SupabaseConfig) *SupabaseUploader {
	return &SupabaseUploader{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bucket:     cfg.Bucket,
		serviceKey: cfg.ServiceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// signURLResponse is the payload returned by the sign endpoint. The url field
// is relative to the storage API root and carries the token as a query param.
type signURLResponse struct {
	URL string `json:"url"`
}

// CreateSignedUploadURL requests a signed upload location for key from the
// bucket's sign endpoint. The returned token must accompany the client's
// direct upload; the location expires after a couple of hours server-side.
func (s *SupabaseUploader) CreateSignedUploadURL(ctx context.Context, key string) (*SignedUpload, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", s.baseURL, s.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("failed to build sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request signed upload URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("storage gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var signed signURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return nil, fmt.Errorf("failed to decode sign response: %w", err)
	}

	signedURL := s.baseURL + "/storage/v1" + signed.URL
	token := ""
	if parsed, err := url.Parse(signed.URL); err == nil {
		token = parsed.Query().Get("token")
	}

	return &SignedUpload{
		Token:     token,
		Path:      key,
		SignedURL: signedURL,
		PublicURL: s.PublicURL(key),
	}, nil
}

// PublicURL returns the public object URL for key. The bucket must be public
// for the URL to resolve; the service stores it without verification.
func (s *SupabaseUploader) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
