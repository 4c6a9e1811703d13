package presign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emailbuilder/service/internal/config"
	"github.com/emailbuilder/service/internal/logger"
	"github.com/emailbuilder/service/internal/upload"
)

type fakePresigner struct {
	key         string
	contentType string
	maxBytes    int64
	err         error
}

func (f *fakePresigner) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	f.key = key
	return "https://storage.example.com/images/" + key + "?X-Amz-Signature=sig", f.err
}

func (f *fakePresigner) PresignPost(_ context.Context, key, contentType string, maxBytes int64, _ time.Duration) (string, map[string]string, error) {
	f.key, f.contentType, f.maxBytes = key, contentType, maxBytes
	return "https://storage.example.com/images", map[string]string{"key": key, "policy": "p"}, f.err
}

func (f *fakePresigner) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func int64p(n int64) *int64 { return &n }

const digest = "a9993e364706816aba3e25717850c26c9cd0d89d"

func TestAuthorizePostMode(t *testing.T) {
	store := &fakePresigner{}
	svc := NewService(store, config.UploadModePost, time.Minute, 1024, logger.Discard())

	resp, err := svc.Authorize(context.Background(), upload.PresignedURLRequest{
		Filename:      "Logo.PNG",
		ContentType:   "image/png",
		ContentLength: int64p(10),
		SHA1:          digest,
	})
	require.NoError(t, err)
	require.Equal(t, "images/"+digest+".png", store.key)
	require.Equal(t, "image/png", store.contentType)
	require.Equal(t, int64(1024), store.maxBytes)
	require.Equal(t, "https://storage.example.com/images", resp.URL)
	require.Equal(t, map[string]string{"key": store.key, "policy": "p"}, resp.Fields)
	require.Equal(t, "https://cdn.example.com/images/"+digest+".png", resp.PublicURL)
	require.Equal(t, upload.StrategyMultipart, upload.StrategyFor(resp))
}

func TestAuthorizePutMode(t *testing.T) {
	store := &fakePresigner{}
	svc := NewService(store, config.UploadModePut, time.Minute, 1024, logger.Discard())

	resp, err := svc.Authorize(context.Background(), upload.PresignedURLRequest{
		Filename:    "photo",
		ContentType: "image/png",
	})
	require.NoError(t, err)
	require.Nil(t, resp.Fields)
	require.Equal(t, upload.StrategyDirect, upload.StrategyFor(resp))
	require.True(t, strings.HasPrefix(store.key, KeyPrefix))
	require.True(t, strings.HasSuffix(store.key, ".png"))
	require.Equal(t, "https://cdn.example.com/"+store.key, resp.PublicURL)
}

func TestObjectKeyDedupesByHash(t *testing.T) {
	req := upload.PresignedURLRequest{Filename: "a.gif", ContentType: "image/gif", SHA1: digest}
	require.Equal(t, ObjectKey(req), ObjectKey(req))

	req.SHA1 = ""
	require.NotEqual(t, ObjectKey(req), ObjectKey(req))
}

func TestAuthorizeValidation(t *testing.T) {
	svc := NewService(&fakePresigner{}, config.UploadModePost, time.Minute, 1024, logger.Discard())

	tests := []struct {
		name string
		req  upload.PresignedURLRequest
		want error
	}{
		{"missing filename", upload.PresignedURLRequest{ContentType: "image/png"}, ErrInvalidRequest},
		{"not an image", upload.PresignedURLRequest{Filename: "a.pdf", ContentType: "application/pdf"}, ErrInvalidRequest},
		{"bad content type", upload.PresignedURLRequest{Filename: "a.png", ContentType: ";;"}, ErrInvalidRequest},
		{"zero length", upload.PresignedURLRequest{Filename: "a.png", ContentType: "image/png", ContentLength: int64p(0)}, ErrInvalidRequest},
		{"too large", upload.PresignedURLRequest{Filename: "a.png", ContentType: "image/png", ContentLength: int64p(2048)}, ErrTooLarge},
		{"bad hash", upload.PresignedURLRequest{Filename: "a.png", ContentType: "image/png", SHA1: "XYZ"}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authorize(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHandlerPresign(t *testing.T) {
	store := &fakePresigner{}
	h := NewHandler(NewService(store, config.UploadModePost, time.Minute, 1024, logger.Discard()))

	body := `{"filename":"logo.png","contentType":"image/png","contentLength":10}`
	rec := httptest.NewRecorder()
	h.Presign(rec, httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp upload.PresignedURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "https://storage.example.com/images", resp.URL)
	require.Equal(t, store.key, resp.Fields["key"])
	require.Equal(t, "https://cdn.example.com/"+store.key, resp.PublicURL)
}

func TestHandlerPresignErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"invalid", `{"filename":"a.txt","contentType":"text/plain"}`, nil, http.StatusBadRequest},
		{"too large", `{"filename":"a.png","contentType":"image/png","contentLength":4096}`, nil, http.StatusRequestEntityTooLarge},
		{"storage failure", `{"filename":"a.png","contentType":"image/png"}`, errors.New("down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewService(&fakePresigner{err: tt.err}, config.UploadModePost, time.Minute, 1024, logger.Discard()))
			rec := httptest.NewRecorder()
			h.Presign(rec, httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", bytes.NewBufferString(tt.body)))
			require.Equal(t, tt.status, rec.Code)

			var env struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			require.False(t, env.Success)
			require.NotEmpty(t, env.Error)
		})
	}
}

// The editor-side pipeline talks to this handler end to end.
func TestHandlerServesUploadPipeline(t *testing.T) {
	var stored []byte
	bucket := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		stored = buf.Bytes()
		w.WriteHeader(http.StatusOK)
	}))
	defer bucket.Close()

	store := &bucketPresigner{base: bucket.URL}
	h := NewHandler(NewService(store, config.UploadModePut, time.Minute, 1024, logger.Discard()))
	api := httptest.NewServer(http.HandlerFunc(h.Presign))
	defer api.Close()

	p := upload.New(upload.Config{PresignedURLEndpoint: api.URL, SupportsHashing: true})
	file := upload.File{Name: "abc.png", ContentType: "image/png", Data: []byte("abc")}
	got, err := p.Upload(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/images/"+digest+".png", got)
	require.Equal(t, []byte("abc"), stored)
}

type bucketPresigner struct {
	fakePresigner
	base string
}

func (b *bucketPresigner) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	return b.base + "/" + key, nil
}
