// Package presign serves upload authorizations: it validates the file
// metadata an editor sends and answers with a one-time storage URL.
package presign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emailbuilder/service/internal/config"
	"github.com/emailbuilder/service/internal/storage"
	"github.com/emailbuilder/service/internal/upload"
)

// KeyPrefix is prepended to every object key.
const KeyPrefix = "images/"

var (
	// ErrInvalidRequest is returned for malformed file metadata.
	ErrInvalidRequest = errors.New("invalid upload request")
	// ErrTooLarge is returned when the declared size exceeds the limit.
	ErrTooLarge = errors.New("file too large")
)

var (
	sha1Re = regexp.MustCompile(`^[0-9a-f]{40}$`)
	extRe  = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)
)

// Service issues upload authorizations.
type Service struct {
	store    storage.Presigner
	mode     string
	expiry   time.Duration
	maxBytes int64
	logger   *slog.Logger
}

// NewService creates a presign Service.
func NewService(store storage.Presigner, mode string, expiry time.Duration, maxBytes int64, logger *slog.Logger) *Service {
	return &Service{store: store, mode: mode, expiry: expiry, maxBytes: maxBytes, logger: logger}
}

// Authorize validates req and returns a one-time upload authorization.
func (s *Service) Authorize(ctx context.Context, req upload.PresignedURLRequest) (*upload.PresignedURLResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	key := ObjectKey(req)
	resp := &upload.PresignedURLResponse{PublicURL: s.store.PublicURL(key)}

	switch s.mode {
	case config.UploadModePut:
		u, err := s.store.PresignPut(ctx, key, s.expiry)
		if err != nil {
			return nil, fmt.Errorf("authorize upload: %w", err)
		}
		resp.URL = u
	default:
		u, fields, err := s.store.PresignPost(ctx, key, req.ContentType, s.maxBytes, s.expiry)
		if err != nil {
			return nil, fmt.Errorf("authorize upload: %w", err)
		}
		if fields == nil {
			fields = map[string]string{}
		}
		resp.URL, resp.Fields = u, fields
	}

	s.logger.Info("authorized upload",
		slog.String("key", key),
		slog.String("mode", s.mode),
		slog.String("content_type", req.ContentType))
	return resp, nil
}

func (s *Service) validate(req upload.PresignedURLRequest) error {
	if strings.TrimSpace(req.Filename) == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidRequest)
	}
	mediaType, _, err := mime.ParseMediaType(req.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: content type %q is not an image", ErrInvalidRequest, req.ContentType)
	}
	if req.ContentLength != nil {
		if *req.ContentLength <= 0 {
			return fmt.Errorf("%w: content length must be positive", ErrInvalidRequest)
		}
		if *req.ContentLength > s.maxBytes {
			return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, *req.ContentLength, s.maxBytes)
		}
	}
	if req.SHA1 != "" && !sha1Re.MatchString(req.SHA1) {
		return fmt.Errorf("%w: sha1 must be 40 lowercase hex characters", ErrInvalidRequest)
	}
	return nil
}

// ObjectKey names the stored object. Requests carrying a content hash map
// to the same key, so identical images are stored once.
func ObjectKey(req upload.PresignedURLRequest) string {
	id := req.SHA1
	if id == "" {
		id = uuid.NewString()
	}
	return KeyPrefix + id + extension(req.Filename, req.ContentType)
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); extRe.MatchString(ext) {
		return ext
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
