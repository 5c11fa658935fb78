package ui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestServer() *UIServer {
	cfg := NewConfig()
	cfg.APIBaseURL = "http://test-api:8080"
	return NewUIServer(cfg, false)
}

func get(t *testing.T, server *UIServer, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestUIServer(t *testing.T) {
	w := get(t, createTestServer(), "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	for _, element := range []string{
		"<title>DroneVision | Intelligence Aérienne Autonome</title>",
		`const API_BASE_URL = "http://test-api:8080";`,
		`id="dashboard"`,
		`data-sector="energy"`,
		"Corrosion Sévère",
		"Le Centre de Contrôle",
		"© 2024 DroneVision Systems Inc.",
	} {
		assert.Contains(t, body, element)
	}
}

func TestUIServer_QuerySelection(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantSector  string
		wantAnomaly string
	}{
		{"defaults", "/", `data-sector="energy"`, "Corrosion Sévère"},
		{"telecom", "/?sector=telecom", `data-sector="telecom"`, "Corrosion Sévère"},
		{"transport warning", "/?sector=transport&anomaly=1", `data-sector="transport"`, "Boulon Manquant"},
		{"unknown values", "/?sector=mining&anomaly=9", `data-sector="energy"`, "Corrosion Sévère"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, createTestServer(), tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantSector)
			assert.Contains(t, w.Body.String(), `<div class="anomaly-title">`+tt.wantAnomaly)
		})
	}
}

func TestStaticFileServing(t *testing.T) {
	server := createTestServer()

	w := get(t, server, "/static/styles.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")

	w = get(t, server, "/static/dashboard.js")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, server, "/static/nonexistent.css")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		cfg.AddFlags(fs)
		require.NoError(t, fs.Parse([]string{"--config", ""}))

		require.NoError(t, cfg.LoadConfigWithFlagSet(fs))
		assert.Equal(t, 8081, cfg.ListenPort)
		assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	})

	t.Run("file and flags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ui.toml")
		require.NoError(t, os.WriteFile(path, []byte("listen-port = 9000\napi-base-url = \"https://api.example\"\n"), 0o600))

		cfg := NewConfig()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		cfg.AddFlags(fs)
		require.NoError(t, fs.Parse([]string{"--config", path, "--listen-port", "9100"}))

		require.NoError(t, cfg.LoadConfigWithFlagSet(fs))
		assert.Equal(t, 9100, cfg.ListenPort)
		assert.Equal(t, "https://api.example", cfg.APIBaseURL)
	})

	errorTests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing file", []string{"--config", "/nonexistent/ui.toml"}, ErrConfigNotFound},
		{"bad port", []string{"--config", "", "--listen-port", "70000"}, ErrInvalidPort},
		{"bad url", []string{"--config", "", "--api-base-url", "ftp://x"}, ErrInvalidAPIURL},
		{"relative url", []string{"--config", "", "--api-base-url", "/api"}, ErrInvalidAPIURL},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			cfg.AddFlags(fs)
			require.NoError(t, fs.Parse(tt.args))
			assert.ErrorIs(t, cfg.LoadConfigWithFlagSet(fs), tt.wantErr)
		})
	}
}
