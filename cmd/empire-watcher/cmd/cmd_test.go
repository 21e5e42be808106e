package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/empire-watcher/internal/config"
	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Empire.APIKey = "test-key"
	cfg.Notifications.Discord.Enabled = false
	return cfg
}

func TestNewServer_Routes(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	svc := buildServices(cfg, quietLogger())
	require.NotNil(t, svc.stream)

	e := newServer(cfg, svc, svc.stream, quietLogger())

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK, wantBody: `"status":"ok"`},
		{name: "not ready before first snapshot", method: http.MethodGet, path: "/readyz", wantStatus: http.StatusServiceUnavailable},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantBody: "ew_"},
		{name: "rules", method: http.MethodGet, path: "/api/v1/rules", wantStatus: http.StatusOK, wantBody: "Karambit Crimson Web"},
		{name: "items empty", method: http.MethodGet, path: "/api/v1/items", wantStatus: http.StatusOK, wantBody: `"total":0`},
		{name: "system state", method: http.MethodGet, path: "/api/v1/system/state", wantStatus: http.StatusOK, wantBody: `"stream":"disconnected"`},
		{name: "quota", method: http.MethodGet, path: "/api/v1/quota", wantStatus: http.StatusOK, wantBody: `"remaining":-1`},
		{name: "openapi document", method: http.MethodGet, path: "/openapi.json", wantStatus: http.StatusOK, wantBody: "Empire Watcher API"},
		{name: "swagger document", method: http.MethodGet, path: "/swagger/swagger.json", wantStatus: http.StatusOK, wantBody: "/api/v1/items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestBuildServices_StreamDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Stream.Enabled = false

	svc := buildServices(cfg, quietLogger())
	assert.Nil(t, svc.stream)
	assert.Len(t, svc.engine.Rules(), 1)
}

func TestSelectRules(t *testing.T) {
	t.Parallel()

	rules := domain.NewWatchRules([]domain.WatchRuleConfig{
		{Name: "Karambit Crimson Web", Search: "Karambit Crimson Web"},
		{Name: "AK-47 Redline", Search: "AK-47 Redline", StatTrak: true},
	})

	tests := []struct {
		name      string
		args      []string
		wantNames []string
	}{
		{name: "no args selects all", args: nil, wantNames: []string{"Karambit Crimson Web", "StatTrak™ AK-47 Redline"}},
		{name: "case insensitive", args: []string{"karambit crimson web"}, wantNames: []string{"Karambit Crimson Web"}},
		{name: "configured name matches stattrak rule", args: []string{"AK-47 Redline"}, wantNames: []string{"StatTrak™ AK-47 Redline"}},
		{name: "unknown rule", args: []string{"AWP Asiimov"}, wantNames: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := selectRules(rules, tt.args)
			names := make([]string, 0, len(got))
			for i := range got {
				names = append(names, got[i].Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestFormatRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lo   *float64
		hi   *float64
		verb string
		want string
	}{
		{name: "unbounded", want: "any", verb: "%g"},
		{name: "lower only", lo: ptr(1500.0), verb: "$%.2f", want: ">= $1500.00"},
		{name: "upper only", hi: ptr(0.07), verb: "%g", want: "<= 0.07"},
		{name: "both", lo: ptr(0.15), hi: ptr(0.24), verb: "%g", want: "0.15 - 0.24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatRange(tt.lo, tt.hi, tt.verb))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "★ Kara...", truncate("★ Karambit | Crimson Web", 9))
}

func TestPrintItemsTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := printItemsTable(&buf, []domain.CatalogItem{
		{ID: 42, MarketName: "★ Karambit | Crimson Web (Field-Tested)", MarketValue: 260467, Wear: ptr(0.19)},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "$1600.00")
	assert.Contains(t, out, "0.19")
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := versionCmd()
	c.SetOut(&buf)
	c.Run(c, nil)

	assert.Equal(t, "empire-watcher dev\n", buf.String())
}

func TestVersionCmd_Verbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := versionCmd()
	c.SetOut(&buf)
	c.SetArgs([]string{"--verbose"})
	require.NoError(t, c.Execute())

	assert.Contains(t, buf.String(), "empire-watcher dev\n")
	assert.Contains(t, buf.String(), "go: go")
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = prev })

	var buf bytes.Buffer
	c := initCmd()
	c.SetOut(&buf)

	require.NoError(t, c.RunE(c, nil))
	assert.Contains(t, buf.String(), "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "${API_KEY}")

	err = c.RunE(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSearchCmd_SameNamedRulesReportedSeparately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := 1
		if r.URL.Query().Get("search") == "karambit fade" {
			id = 2
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[{"id":%d,"market_name":"Karambit","market_value":1500}]}`, id)
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := fmt.Sprintf(`empire:
  api_key: test-key
  base_url: %s
skins:
  - name: Karambit
    search: karambit crimson web
  - name: Karambit
    search: karambit fade
`, srv.URL)
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	prev := cfgFile
	cfgFile = path
	viper.Set("output", "json")
	t.Cleanup(func() {
		cfgFile = prev
		viper.Set("output", "")
	})

	var buf bytes.Buffer
	c := searchCmd()
	c.SetOut(&buf)
	c.SetArgs([]string{"--all"})
	require.NoError(t, c.Execute())

	var got []struct {
		Rule  string `json:"rule"`
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Karambit", got[0].Rule)
	assert.Equal(t, "Karambit", got[1].Rule)
	require.Len(t, got[0].Items, 1)
	require.Len(t, got[1].Items, 1)
	assert.Equal(t, int64(1), got[0].Items[0].ID)
	assert.Equal(t, int64(2), got[1].Items[0].ID)
}
