package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emailbuilder/service/internal/document"
	"github.com/emailbuilder/service/internal/editor"
	"github.com/emailbuilder/service/internal/logger"
	"github.com/emailbuilder/service/internal/page"
)

type rootOptions struct {
	page      string
	pageURL   string
	fragment  string
	hash      bool
	logLevel  string
	logFormat string
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "editor",
		Short:        "Resolve, upload into and save email-builder documents",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(opts.logLevel, opts.logFormat)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.page, "page", "", "editor page to read embedded config and data from (file path or http(s) URL)")
	f.StringVar(&opts.pageURL, "url", "", "editor URL; its fragment selects the document and relative endpoints resolve against it")
	f.StringVar(&opts.fragment, "fragment", "", "URL fragment, e.g. #sample/welcome (overrides the fragment of --url)")
	f.BoolVar(&opts.hash, "hash", true, "send a SHA-1 of uploaded files with the authorization request")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	f.DurationVar(&opts.timeout, "timeout", 0, "HTTP client timeout (0 uses transport defaults)")

	cmd.AddCommand(
		newResolveCmd(opts),
		newUploadCmd(opts),
		newSaveCmd(opts),
		newShareCmd(opts),
		newSamplesCmd(),
	)
	return cmd
}

// start opens the page and starts a session.
func (o *rootOptions) start(ctx context.Context) (*editor.Session, error) {
	client := &http.Client{Timeout: o.timeout}

	var src page.Source
	pageURL := o.pageURL
	if o.page != "" {
		p, err := loadPage(ctx, client, o.page)
		if err != nil {
			return nil, err
		}
		src = p
		if pageURL == "" && isHTTP(o.page) {
			pageURL = o.page
		}
	}

	return editor.Start(editor.Options{
		Page:            src,
		PageURL:         pageURL,
		Fragment:        o.fragment,
		SupportsHashing: o.hash,
		HTTPClient:      client,
		Logger:          logger.L,
	})
}

func loadPage(ctx context.Context, client *http.Client, location string) (*page.Document, error) {
	if !isHTTP(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		defer f.Close()
		return page.Parse(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: %s", resp.Status)
	}
	return page.Parse(resp.Body)
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func writeDocument(w io.Writer, doc document.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
