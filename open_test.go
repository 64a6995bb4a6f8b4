package inventory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/inventory/config"
	"github.com/zero-day-ai/inventory/ooi"
)

const remoteHostnameJSON = `{
	"object_type": "Hostname",
	"primary_key": "Hostname|internet|example.com",
	"network": "Network|internet",
	"name": "example.com",
	"scan_profile": {"scan_profile_type": "declared", "reference": "Hostname|internet|example.com", "level": 2}
}`

// newRemote serves the graph, object store and plugin catalog from one server.
func newRemote(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/acme/object", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("reference") != "Hostname|internet|example.com" {
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, remoteHostnameJSON)
	})
	mux.HandleFunc("/acme/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"healthy": true}`)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"healthy": true}`)
	})
	mux.HandleFunc("/v1/organisations/acme/plugins", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id": "nmap", "type": "boefje", "name": "Nmap", "enabled": true},
			{"id": "dns-records", "type": "boefje", "name": "DNS records", "enabled": false}
		]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.Organization = "acme"
	cfg.Graph.URL = url
	cfg.ObjectStore.URL = url
	cfg.ObjectStore.Username = "inventory"
	cfg.ObjectStore.Password = "secret"
	cfg.Katalogus.URL = url
	return cfg
}

func TestOpen(t *testing.T) {
	srv := newRemote(t)
	ctx := context.Background()

	s, err := Open(ctx, testConfig(srv.URL), nil)
	require.NoError(t, err)
	t.Cleanup(func() { CloseWithLog(s, nil, "session") })

	assert.Equal(t, "acme", s.Organization().Code)

	obj, err := s.Lookup(ctx, "Hostname|internet|example.com", validTime)
	require.NoError(t, err)
	assert.Equal(t, "example.com", obj.StringField("name"))

	_, err = s.Lookup(ctx, "Hostname|internet|missing.example", validTime)
	assert.Equal(t, KindNotFound, KindOf(err))

	plugins, err := s.Plugins(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, plugins, 2)

	report := s.Health(ctx)
	assert.True(t, report.Overall.IsHealthy(), report.Overall.Message)
	assert.Len(t, report.Checks, 3)
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testConfig("http://localhost:8000")
	cfg.Organization = ""

	_, err := Open(context.Background(), cfg, nil)
	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestOpen_KnowledgeBase(t *testing.T) {
	srv := newRemote(t)
	mr := miniredis.RunT(t)
	ctx := context.Background()

	kb := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(kb, []byte("Hostname:\n  description: A DNS name.\n"), 0o600))

	cfg := testConfig(srv.URL)
	cfg.Knowledge.File = kb
	cfg.Knowledge.RedisURL = fmt.Sprintf("redis://%s", mr.Addr())

	s, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { CloseWithLog(s, nil, "session") })

	props, err := s.Properties(ctx, ooi.MustParse("Hostname|internet|example.com"), 1, validTime)
	require.NoError(t, err)
	assert.Equal(t, "A DNS name.", props["description"])
	assert.NotContains(t, props, "network")

	report := s.Health(ctx)
	assert.Contains(t, report.Checks, "knowledge-cache")
	assert.Contains(t, report.Checks, "knowledge-file")
	assert.True(t, report.Overall.IsHealthy(), report.Overall.Message)
}

func TestOpen_MissingKnowledgeFile(t *testing.T) {
	cfg := testConfig("http://localhost:8000")
	cfg.Knowledge.File = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Equal(t, KindConfiguration, KindOf(err))
}
