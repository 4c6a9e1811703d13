// Package storage issues upload authorizations for S3-compatible object storage.
// The MinIO implementation works with any S3-compatible provider (MinIO, AWS S3, R2).
package storage

import (
	"context"
	"time"
)

// Presigner creates one-time upload URLs for object keys.
type Presigner interface {
	// PresignPut returns a URL accepting a single PUT of the object body.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PresignPost returns a form POST URL and the policy fields the form must carry.
	// The policy pins the key and content type and caps the size at maxBytes.
	PresignPost(ctx context.Context, key, contentType string, maxBytes int64, expiry time.Duration) (string, map[string]string, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
