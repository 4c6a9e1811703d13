// Package appconfig loads the editor settings embedded in the host page.
package appconfig

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/emailbuilder/service/internal/logger"
	"github.com/emailbuilder/service/internal/page"
	"github.com/emailbuilder/service/internal/upload"
)

// DefaultSaveURL is used when the host page does not set saveUrl.
const DefaultSaveURL = "/api/placeholder/save"

// AppConfig holds the settings read once at editor startup.
type AppConfig struct {
	SaveURL string `json:"saveUrl"`
	// PresignedURLEndpoint is nil when image upload is disabled.
	PresignedURLEndpoint *string `json:"presignedUrlEndpoint"`
}

// Default returns the built-in settings.
func Default() AppConfig {
	return AppConfig{SaveURL: DefaultSaveURL}
}

// Load reads the config element from src and overlays it on the defaults.
// Each known key present in the blob replaces its default; a key of the
// wrong type is logged and skipped. A null saveUrl keeps the default save
// URL, a null presignedUrlEndpoint disables upload. A missing element yields
// the defaults silently; a malformed one is logged.
func Load(src page.Source, l *slog.Logger) AppConfig {
	cfg := Default()
	if src == nil {
		return cfg
	}
	text, ok := src.Lookup(page.ConfigElementID)
	if !ok {
		return cfg
	}
	if strings.TrimSpace(text) == "" {
		text = "{}"
	}
	if l == nil {
		l = logger.Discard()
	}

	var blob map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &blob); err != nil {
		l.Warn("couldn't parse app config from script element", slog.Any("error", err))
		return cfg
	}

	if raw, ok := blob["saveUrl"]; ok {
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			l.Warn("ignoring app config key", slog.String("key", "saveUrl"), slog.Any("error", err))
		} else if v != nil {
			cfg.SaveURL = *v
		}
	}
	if raw, ok := blob["presignedUrlEndpoint"]; ok {
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			l.Warn("ignoring app config key", slog.String("key", "presignedUrlEndpoint"), slog.Any("error", err))
		} else {
			cfg.PresignedURLEndpoint = v
		}
	}
	return cfg
}

// UploadConfig derives the image upload settings.
func (c AppConfig) UploadConfig(supportsHashing bool) upload.Config {
	cfg := upload.Config{SupportsHashing: supportsHashing}
	if c.PresignedURLEndpoint != nil {
		cfg.PresignedURLEndpoint = *c.PresignedURLEndpoint
	}
	return cfg
}
