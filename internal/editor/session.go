// Package editor is the client runtime of an editing session: it resolves the
// starting document, uploads images into it and saves the result back to the
// host application.
package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/emailbuilder/service/internal/appconfig"
	"github.com/emailbuilder/service/internal/document"
	"github.com/emailbuilder/service/internal/logger"
	"github.com/emailbuilder/service/internal/page"
	"github.com/emailbuilder/service/internal/upload"
)

// Options configures Start.
type Options struct {
	// Page holds the embedded config and data. Nil means none.
	Page page.Source
	// PageURL is the editor URL. Its fragment selects a sample or inline
	// document and relative endpoints are resolved against it.
	PageURL string
	// Fragment overrides the fragment of PageURL when set.
	Fragment        string
	SupportsHashing bool
	HTTPClient      *http.Client
	Logger          *slog.Logger
}

// Session is a single editing session. It is not safe for concurrent use
// except for Uploading and CanUpload.
type Session struct {
	Config   appconfig.AppConfig
	Document document.Document
	Source   document.Source

	uploader *upload.Pipeline
	saveURL  string
	base     *url.URL
	http     *http.Client
	logger   *slog.Logger
	dirty    bool
}

// SaveError reports a rejected or unreachable save call.
type SaveError struct {
	Status  int
	Message string
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save document: %s", e.Message)
}

// Start loads the app config, resolves the starting document and prepares
// the upload pipeline. It fails only for an unparsable PageURL.
func Start(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	var base *url.URL
	fragment := opts.Fragment
	if opts.PageURL != "" {
		u, err := url.Parse(opts.PageURL)
		if err != nil {
			return nil, fmt.Errorf("parse page url: %w", err)
		}
		base = u
		if fragment == "" {
			fragment, _ = document.FragmentOf(opts.PageURL)
		}
	}

	cfg := appconfig.Load(opts.Page, opts.Logger)
	uploadCfg := cfg.UploadConfig(opts.SupportsHashing)
	uploadCfg.PresignedURLEndpoint = resolve(base, uploadCfg.PresignedURLEndpoint)

	doc, src := document.NewResolver(opts.Page, opts.Logger).ResolveSource(fragment)
	opts.Logger.Debug("resolved document", slog.String("source", src.Kind.String()), slog.String("name", src.Name))

	return &Session{
		Config:   cfg,
		Document: doc,
		Source:   src,
		uploader: upload.New(uploadCfg, upload.WithHTTPClient(opts.HTTPClient), upload.WithLogger(opts.Logger)),
		saveURL:  resolve(base, cfg.SaveURL),
		base:     base,
		http:     opts.HTTPClient,
		logger:   opts.Logger,
	}, nil
}

// CanUpload reports whether the image upload affordance should be offered.
func (s *Session) CanUpload() bool {
	return s.uploader.IsConfigured()
}

// Uploading reports whether an image upload is in flight.
func (s *Session) Uploading() bool {
	return s.uploader.InProgress()
}

// Dirty reports whether the document changed since start or the last save.
func (s *Session) Dirty() bool {
	return s.dirty
}

// UploadImage picks a file, uploads it and points the Image block blockID at
// the result. It returns the public URL, or "" if the pick was cancelled.
// blockID is checked before the picker is opened.
func (s *Session) UploadImage(ctx context.Context, blockID string, picker upload.FilePicker) (string, error) {
	if !s.CanUpload() {
		return "", upload.ErrNotConfigured
	}
	if err := s.Document.ImageBlock(blockID); err != nil {
		return "", err
	}
	publicURL, err := s.uploader.UploadPicked(ctx, picker)
	if err != nil || publicURL == "" {
		return "", err
	}
	if err := s.Document.SetImageURL(blockID, publicURL); err != nil {
		return "", err
	}
	s.dirty = true
	return publicURL, nil
}

// Save posts the document to the configured save URL and returns the
// redirect URL the host answered with, resolved against the page URL.
func (s *Session) Save(ctx context.Context) (string, error) {
	body, err := json.Marshal(s.Document)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.saveURL, bytes.NewReader(body))
	if err != nil {
		return "", &SaveError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", &SaveError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SaveError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var out struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &SaveError{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}

	s.dirty = false
	s.logger.Info("saved document", slog.String("redirect_url", out.RedirectURL))
	return resolve(s.base, out.RedirectURL), nil
}

// ShareFragment returns a #code/ fragment carrying the current document.
func (s *Session) ShareFragment() (string, error) {
	return document.EncodeFragment(s.Document)
}

func resolve(base *url.URL, ref string) string {
	if base == nil || ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
