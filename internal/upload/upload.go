// Package upload sends images to object storage through a presigned-URL
// protocol.
//
// An upload first asks the configured authorization endpoint for a one-time
// upload URL, then sends the bytes either as a multipart form POST (when the
// authorization carries policy fields) or as a raw PUT. The caller receives
// the public URL the authorization named.
package upload

import (
	"errors"
	"fmt"
)

// Config is the process-wide upload configuration. It is built once at
// startup and never mutated.
type Config struct {
	// PresignedURLEndpoint is the authorization endpoint. Empty disables upload.
	PresignedURLEndpoint string
	// SupportsHashing adds a SHA-1 of the file to authorization requests.
	SupportsHashing bool
}

// IsConfigured reports whether an authorization endpoint is set.
func (c Config) IsConfigured() bool {
	return c.PresignedURLEndpoint != ""
}

// File is an image picked for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// PresignedURLRequest is the body sent to the authorization endpoint.
type PresignedURLRequest struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"contentType"`
	ContentLength *int64 `json:"contentLength,omitempty"`
	SHA1          string `json:"sha1,omitempty"`
}

// PresignedURLResponse is the authorization returned by the endpoint.
// A non-nil Fields selects the multipart strategy, even when empty.
type PresignedURLResponse struct {
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields,omitempty"`
	PublicURL string            `json:"publicUrl"`
}

// Strategy is the physical upload operation.
type Strategy int

const (
	// StrategyDirect PUTs the raw bytes.
	StrategyDirect Strategy = iota
	// StrategyMultipart POSTs a multipart form with policy fields.
	StrategyMultipart
)

func (s Strategy) String() string {
	if s == StrategyMultipart {
		return "multipart"
	}
	return "direct"
}

// StrategyFor picks the transport strategy for an authorization.
func StrategyFor(resp *PresignedURLResponse) Strategy {
	if resp.Fields != nil {
		return StrategyMultipart
	}
	return StrategyDirect
}

var (
	// ErrNotConfigured is returned when no authorization endpoint is set.
	ErrNotConfigured = errors.New("image upload not configured")
	// ErrUploadInProgress is returned when Upload is called while another
	// upload on the same pipeline is running.
	ErrUploadInProgress = errors.New("image upload already in progress")
)

// AuthorizationError reports a rejected or unreachable authorization request.
// Status is zero when no HTTP response was received.
type AuthorizationError struct {
	Status  int
	Message string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("failed to get presigned URL: %s", e.Message)
}

// TransportError reports a rejected or unreachable storage upload.
// Status is zero when no HTTP response was received.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to upload image: %s", e.Message)
}

// Message returns the text shown to a user for an upload failure.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "Image upload is not configured."
	case errors.Is(err, ErrUploadInProgress):
		return "An image is already being uploaded."
	default:
		return err.Error()
	}
}
