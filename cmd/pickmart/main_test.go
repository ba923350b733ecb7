package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeServer implements just enough of the Pickmart API for the CLI flow:
// login issues tokens, products answers a fixed catalog, logout accepts.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-token",
			"refresh_token": "refresh-token",
			"profile": map[string]any{
				"id":         uuid.New(),
				"username":   body.Username,
				"created_at": time.Now().UTC(),
			},
		})
	})

	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"5bd48be3-5903-4d27-8f27-3b2b2f0e5a01","sku":"MILK-1L","name":"Milk 1L","price":"1.99","in_stock":true}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func Test_Run_LoginProductsLogout(t *testing.T) {
	t.Parallel()

	srv := fakeServer(t)
	dir := t.TempDir()
	credFile := filepath.Join(dir, "credentials.json")

	env := map[string]string{
		"PICKMART_API_ADDRESS":      srv.URL,
		"PICKMART_CREDENTIALS_FILE": credFile,
	}
	getenv := func(key string) string { return env[key] }
	getwd := func() (string, error) { return dir, nil }

	runCLI := func(args ...string) (string, error) {
		var buf bytes.Buffer
		err := run(t.Context(), getenv, getwd, args, &buf)
		return buf.String(), err
	}

	out, err := runCLI("login", "gopher", "secret-password")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as gopher")
	require.FileExists(t, credFile)

	out, err = runCLI("whoami")
	require.NoError(t, err)
	require.Contains(t, out, "gopher")

	out, err = runCLI("products")
	require.NoError(t, err)
	require.Contains(t, out, "Milk 1L")
	require.Contains(t, out, "1.99")

	_, err = runCLI("logout")
	require.NoError(t, err)

	_, statErr := os.Stat(credFile)
	require.ErrorIs(t, statErr, os.ErrNotExist, "logout must forget the stored credentials")
}

func Test_Run_UnknownCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env := map[string]string{"PICKMART_CREDENTIALS_FILE": filepath.Join(dir, "credentials.json")}

	var buf bytes.Buffer
	err := run(t.Context(),
		func(key string) string { return env[key] },
		func() (string, error) { return dir, nil },
		[]string{"frobnicate"}, &buf)

	require.Error(t, err)
	require.Contains(t, buf.String(), "Usage:")
}

func Test_Run_NoCommandPrintsUsage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env := map[string]string{"PICKMART_CREDENTIALS_FILE": filepath.Join(dir, "credentials.json")}

	var buf bytes.Buffer
	err := run(t.Context(),
		func(key string) string { return env[key] },
		func() (string, error) { return dir, nil },
		nil, &buf)

	require.Error(t, err)
	require.Contains(t, buf.String(), "Commands:")
}
