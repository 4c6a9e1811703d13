package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// PresignClient requests upload authorizations from the configured endpoint.
type PresignClient struct {
	endpoint string
	http     *http.Client
}

// NewPresignClient creates a client for endpoint. A nil httpClient uses
// http.DefaultClient.
func NewPresignClient(endpoint string, httpClient *http.Client) *PresignClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PresignClient{endpoint: endpoint, http: httpClient}
}

// RequestAuthorization POSTs req to the endpoint. Every failure is an
// *AuthorizationError.
func (c *PresignClient) RequestAuthorization(ctx context.Context, req PresignedURLRequest) (*PresignedURLResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &AuthorizationError{Message: fmt.Sprintf("encode request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &AuthorizationError{Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &AuthorizationError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &AuthorizationError{Status: resp.StatusCode, Message: statusText(resp)}
	}

	var out PresignedURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &AuthorizationError{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if out.URL == "" {
		return nil, &AuthorizationError{Status: resp.StatusCode, Message: "response has no upload url"}
	}
	return &out, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// statusText returns the reason phrase of resp, e.g. "Forbidden".
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strconv.Itoa(resp.StatusCode)
}
