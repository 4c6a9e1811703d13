package upload

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
)

// FileFieldName is the multipart form name of the file part.
const FileFieldName = "file"

// Transport performs the physical upload. It never retries.
type Transport struct {
	http *http.Client
}

// NewTransport creates a Transport. A nil httpClient uses http.DefaultClient.
func NewTransport(httpClient *http.Client) *Transport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Transport{http: httpClient}
}

// Send uploads file to url with the given strategy. Fields are only used by
// StrategyMultipart. Every failure is a *TransportError.
func (t *Transport) Send(ctx context.Context, strategy Strategy, url string, fields map[string]string, file File) error {
	var (
		req *http.Request
		err error
	)
	switch strategy {
	case StrategyMultipart:
		req, err = multipartRequest(ctx, url, fields, file)
	default:
		req, err = directRequest(ctx, url, file)
	}
	if err != nil {
		return &TransportError{Message: err.Error()}
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return &TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return &TransportError{Status: resp.StatusCode, Message: statusText(resp)}
	}
	return nil
}

func directRequest(ctx context.Context, url string, file File) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(file.Data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", file.ContentType)
	return req, nil
}

// multipartRequest builds the form with every field first and the file last;
// S3 ignores anything after the file part.
func multipartRequest(ctx context.Context, url string, fields map[string]string, file File) (*http.Request, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, k := range slices.Sorted(maps.Keys(fields)) {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("write field %q: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileFieldName, escapeQuotes(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
