package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emailbuilder/service/internal/page"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSamplesCommand(t *testing.T) {
	out, _, err := run(t, "samples")
	require.NoError(t, err)
	require.Contains(t, out, "#sample/welcome\n")
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 8)
}

func TestResolveFromPageFile(t *testing.T) {
	var html bytes.Buffer
	require.NoError(t, page.Render(&html, page.Shell{Data: json.RawMessage(`{"root":"A"}`)}))
	path := filepath.Join(t.TempDir(), "editor.html")
	require.NoError(t, os.WriteFile(path, html.Bytes(), 0o600))

	out, errOut, err := run(t, "resolve", "--page", path, "--fragment", "#sample/welcome")
	require.NoError(t, err)
	require.JSONEq(t, `{"root":"A"}`, out)
	require.Contains(t, errOut, "source: embedded")
}

func TestShareThenResolve(t *testing.T) {
	fragment, _, err := run(t, "share", "--fragment", "#sample/welcome")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(fragment, "#code/"))

	shared, errOut, err := run(t, "resolve", "--fragment", strings.TrimSpace(fragment))
	require.NoError(t, err)
	require.Contains(t, errOut, "source: code")

	direct, _, err := run(t, "resolve", "--fragment", "#sample/welcome")
	require.NoError(t, err)
	require.JSONEq(t, direct, shared)
}

func TestUploadWithoutEndpoint(t *testing.T) {
	img := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	_, _, err := run(t, "upload", img, "--block", "root")
	require.Error(t, err)
}

func TestUploadAndSaveAgainstHostPage(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("GET /editor", func(w http.ResponseWriter, r *http.Request) {
		_ = page.Render(w, page.Shell{Config: map[string]string{
			"saveUrl":              "/save",
			"presignedUrlEndpoint": "/presign",
		}})
	})
	mux.HandleFunc("POST /presign", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"url":       srv.URL + "/bucket",
			"fields":    map[string]string{"key": "images/a.png"},
			"publicUrl": "https://cdn.example.com/images/a.png",
		})
	})
	mux.HandleFunc("POST /bucket", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /save", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"redirectUrl": "/editor/1"})
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	img := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	out, _, err := run(t, "upload", img,
		"--page", srv.URL+"/editor",
		"--fragment", "#sample/welcome",
		"--block", "block-welcome-1",
		"--save")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/images/a.png\n"+srv.URL+"/editor/1\n", out)
}
