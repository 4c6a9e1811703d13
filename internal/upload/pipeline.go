package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/emailbuilder/service/internal/logger"
)

// Pipeline uploads one image at a time through the presigned-URL protocol.
type Pipeline struct {
	cfg        Config
	presign    *PresignClient
	transport  *Transport
	httpClient *http.Client
	logger     *slog.Logger
	inProgress atomic.Bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHTTPClient sets the client used for both the authorization request and
// the storage upload.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) {
		p.httpClient = c
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New creates a Pipeline for cfg.
func New(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Discard()
	}
	p.presign = NewPresignClient(cfg.PresignedURLEndpoint, p.httpClient)
	p.transport = NewTransport(p.httpClient)
	return p
}

// IsConfigured reports whether uploads can be offered at all.
func (p *Pipeline) IsConfigured() bool {
	return p.cfg.IsConfigured()
}

// InProgress reports whether an upload is running.
func (p *Pipeline) InProgress() bool {
	return p.inProgress.Load()
}

// Upload sends file to storage and returns its public URL.
func (p *Pipeline) Upload(ctx context.Context, file File) (string, error) {
	if !p.cfg.IsConfigured() {
		return "", ErrNotConfigured
	}
	if !p.inProgress.CompareAndSwap(false, true) {
		return "", ErrUploadInProgress
	}
	defer p.inProgress.Store(false)

	size := int64(len(file.Data))
	req := PresignedURLRequest{
		Filename:      file.Name,
		ContentType:   file.ContentType,
		ContentLength: &size,
	}
	if p.cfg.SupportsHashing {
		sum, err := SHA1Hex(ctx, file.Data)
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", file.Name, err)
		}
		req.SHA1 = sum
	}

	auth, err := p.presign.RequestAuthorization(ctx, req)
	if err != nil {
		p.logger.Warn("upload authorization failed", slog.String("file", file.Name), slog.Any("error", err))
		return "", err
	}

	strategy := StrategyFor(auth)
	p.logger.Debug("uploading image",
		slog.String("file", file.Name),
		slog.Int64("size", size),
		slog.String("strategy", strategy.String()))

	if err := p.transport.Send(ctx, strategy, auth.URL, auth.Fields, file); err != nil {
		p.logger.Warn("image upload failed", slog.String("file", file.Name), slog.Any("error", err))
		return "", err
	}

	p.logger.Info("uploaded image", slog.String("file", file.Name), slog.String("public_url", auth.PublicURL))
	return auth.PublicURL, nil
}

// UploadPicked asks picker for a file and uploads it. A cancelled pick
// returns an empty URL and no error.
func (p *Pipeline) UploadPicked(ctx context.Context, picker FilePicker) (string, error) {
	if !p.cfg.IsConfigured() {
		return "", ErrNotConfigured
	}
	file, ok, err := picker.PickFile(ctx)
	if err != nil {
		return "", fmt.Errorf("pick file: %w", err)
	}
	if !ok {
		return "", nil
	}
	return p.Upload(ctx, file)
}
