package editor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emailbuilder/service/internal/appconfig"
	"github.com/emailbuilder/service/internal/document"
	"github.com/emailbuilder/service/internal/page"
	"github.com/emailbuilder/service/internal/upload"
)

var logo = upload.File{Name: "logo.png", ContentType: "image/png", Data: []byte("png-bytes")}

func pickLogo() upload.FilePicker {
	return upload.PickerFunc(func(context.Context) (upload.File, bool, error) {
		return logo, true, nil
	})
}

// hostServer plays the host application: presign, storage and save endpoints.
func hostServer(t *testing.T, saveStatus int) (*httptest.Server, *atomic.Value) {
	t.Helper()
	var saved atomic.Value
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /presign", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(upload.PresignedURLResponse{
			URL:       srv.URL + "/bucket/images/logo.png",
			PublicURL: "https://cdn.example.com/images/logo.png",
		})
	})
	mux.HandleFunc("PUT /bucket/images/logo.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /save", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		saved.Store(b)
		if saveStatus != http.StatusOK {
			w.WriteHeader(saveStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"redirectUrl": "/editor/42"})
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &saved
}

func TestSessionUploadAndSave(t *testing.T) {
	srv, saved := hostServer(t, http.StatusOK)

	s, err := Start(Options{
		Page: page.Static{
			page.ConfigElementID: `{"saveUrl":"/save","presignedUrlEndpoint":"/presign"}`,
		},
		PageURL:         srv.URL + "/editor#sample/welcome",
		SupportsHashing: true,
	})
	require.NoError(t, err)
	require.Equal(t, document.SourceSample, s.Source.Kind)
	require.True(t, s.CanUpload())
	require.False(t, s.Dirty())

	got, err := s.UploadImage(context.Background(), "block-welcome-1", pickLogo())
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/images/logo.png", got)
	require.True(t, s.Dirty())
	require.False(t, s.Uploading())

	redirect, err := s.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/editor/42", redirect)
	require.False(t, s.Dirty())

	doc, err := document.Parse(saved.Load().([]byte))
	require.NoError(t, err)
	props := doc["block-welcome-1"].(map[string]any)["data"].(map[string]any)["props"].(map[string]any)
	require.Equal(t, "https://cdn.example.com/images/logo.png", props["url"])
}

func TestSessionWithoutUploadEndpoint(t *testing.T) {
	s, err := Start(Options{Fragment: "#sample/unknown-name"})
	require.NoError(t, err)
	require.False(t, s.CanUpload())
	require.Equal(t, appconfig.DefaultSaveURL, s.Config.SaveURL)
	require.Equal(t, document.SourceEmpty, s.Source.Kind)

	_, err = s.UploadImage(context.Background(), "root", pickLogo())
	require.ErrorIs(t, err, upload.ErrNotConfigured)
	require.False(t, s.Dirty())
}

func TestSessionUploadCancelledLeavesDocument(t *testing.T) {
	srv, _ := hostServer(t, http.StatusOK)
	s, err := Start(Options{
		Page:     page.Static{page.ConfigElementID: `{"presignedUrlEndpoint":"/presign"}`},
		PageURL:  srv.URL + "/editor",
		Fragment: "#sample/welcome",
	})
	require.NoError(t, err)
	before := s.Document.Clone()

	got, err := s.UploadImage(context.Background(), "block-welcome-1", upload.PathPicker{})
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, before, s.Document)
	require.False(t, s.Dirty())
}

func TestSessionUploadChecksBlockFirst(t *testing.T) {
	var presigns, puts atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /presign", func(w http.ResponseWriter, r *http.Request) {
		presigns.Add(1)
		_ = json.NewEncoder(w).Encode(upload.PresignedURLResponse{
			URL:       srv.URL + "/bucket/images/logo.png",
			PublicURL: "https://cdn.example.com/images/logo.png",
		})
	})
	mux.HandleFunc("PUT /bucket/images/logo.png", func(w http.ResponseWriter, r *http.Request) {
		puts.Add(1)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s, err := Start(Options{
		Page:     page.Static{page.ConfigElementID: `{"presignedUrlEndpoint":"/presign"}`},
		PageURL:  srv.URL + "/editor",
		Fragment: "#sample/welcome",
	})
	require.NoError(t, err)

	picked := false
	picker := upload.PickerFunc(func(context.Context) (upload.File, bool, error) {
		picked = true
		return logo, true, nil
	})

	_, err = s.UploadImage(context.Background(), "no-such-block", picker)
	require.ErrorIs(t, err, document.ErrBlockNotFound)

	_, err = s.UploadImage(context.Background(), "block-welcome-2", picker)
	require.ErrorIs(t, err, document.ErrNotImageBlock)

	require.False(t, picked)
	require.Zero(t, presigns.Load())
	require.Zero(t, puts.Load())
	require.False(t, s.Dirty())
}

func TestSessionSaveRejected(t *testing.T) {
	srv, _ := hostServer(t, http.StatusBadRequest)
	s, err := Start(Options{
		Page:    page.Static{page.ConfigElementID: `{"saveUrl":"/save"}`},
		PageURL: srv.URL + "/editor",
	})
	require.NoError(t, err)

	_, err = s.Save(context.Background())
	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	require.Equal(t, http.StatusBadRequest, saveErr.Status)
}

func TestSessionShareFragmentRoundTrip(t *testing.T) {
	s, err := Start(Options{Fragment: "#sample/reset-password"})
	require.NoError(t, err)

	fragment, err := s.ShareFragment()
	require.NoError(t, err)

	again, err := Start(Options{Fragment: fragment})
	require.NoError(t, err)
	require.Equal(t, document.SourceCode, again.Source.Kind)
	require.Equal(t, s.Document, again.Document)
}

func TestStartRejectsBadPageURL(t *testing.T) {
	_, err := Start(Options{PageURL: "http://[::1"})
	require.Error(t, err)
}
