package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FilePicker obtains a file from the user. ok is false when the user cancelled.
type FilePicker interface {
	PickFile(ctx context.Context) (file File, ok bool, err error)
}

// PickerFunc adapts a function to FilePicker.
type PickerFunc func(ctx context.Context) (File, bool, error)

// PickFile implements FilePicker.
func (f PickerFunc) PickFile(ctx context.Context) (File, bool, error) {
	return f(ctx)
}

// ErrNotImage is returned by PathPicker for files that are not images.
var ErrNotImage = errors.New("not an image")

// PathPicker picks the file at Path. An empty Path counts as a cancelled pick.
type PathPicker struct {
	Path string
}

// PickFile implements FilePicker.
func (p PathPicker) PickFile(_ context.Context) (File, bool, error) {
	if p.Path == "" {
		return File{}, false, nil
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return File{}, false, fmt.Errorf("read %s: %w", p.Path, err)
	}
	contentType := DetectContentType(p.Path, data)
	if !strings.HasPrefix(contentType, "image/") {
		return File{}, false, fmt.Errorf("%s (%s): %w", p.Path, contentType, ErrNotImage)
	}
	return File{
		Name:        filepath.Base(p.Path),
		ContentType: contentType,
		Data:        data,
	}, true, nil
}

// DetectContentType guesses the MIME type from the file extension, falling
// back to content sniffing.
func DetectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return mediaType
		}
		return ct
	}
	ct := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return ct
}
