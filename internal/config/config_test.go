package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every binding so ambient environment cannot bleed in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INSTANCE_URL", "DATABRICKS_WORKSPACE_URL",
		"WORKSPACE_ID", "DATABRICKS_WORKSPACE_ID",
		"DASHBOARD_ID", "DATABRICKS_DASHBOARD_ID",
		"OAUTH_CLIENT_ID", "DATABRICKS_CLIENT_ID",
		"OAUTH_SECRET", "DATABRICKS_CLIENT_SECRET",
		"EXTERNAL_VIEWER_ID", "EXTERNAL_VALUE",
		"ADDR", "PORT", "DATABRICKS_APP_PORT",
		"REQUEST_TIMEOUT", "VIEWER_POLICY",
	} {
		t.Setenv(key, "")
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INSTANCE_URL", "https://example.cloud.databricks.com/")
	t.Setenv("WORKSPACE_ID", "1234")
	t.Setenv("DASHBOARD_ID", "dash-1")
	t.Setenv("OAUTH_CLIENT_ID", "svc")
	t.Setenv("OAUTH_SECRET", "sekrit")
	t.Setenv("EXTERNAL_VIEWER_ID", "user_1")
	t.Setenv("EXTERNAL_VALUE", "partition-a")
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("REQUEST_TIMEOUT", "10s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.InstanceURL != "https://example.cloud.databricks.com" {
		t.Errorf("instance url not normalized: %q", cfg.InstanceURL)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Addr)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("request timeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.Identity().ClientSecret != "sekrit" {
		t.Error("identity not populated")
	}
	if viewer := cfg.Viewer(); viewer.ExternalViewerID != "user_1" || viewer.ExternalValue != "partition-a" {
		t.Errorf("viewer = %+v", viewer)
	}
}

func TestFromEnv_FallbackNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABRICKS_WORKSPACE_URL", "https://fallback.example.com")
	t.Setenv("DATABRICKS_WORKSPACE_ID", "9")
	t.Setenv("DATABRICKS_DASHBOARD_ID", "dash-9")
	t.Setenv("DATABRICKS_CLIENT_ID", "svc")
	t.Setenv("DATABRICKS_CLIENT_SECRET", "sekrit")
	t.Setenv("EXTERNAL_VIEWER_ID", "user_9")
	t.Setenv("EXTERNAL_VALUE", "v")
	t.Setenv("DATABRICKS_APP_PORT", "7000")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.InstanceURL != "https://fallback.example.com" {
		t.Errorf("instance url = %q", cfg.InstanceURL)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("addr = %q, want :7000", cfg.Addr)
	}
}

func TestFromEnv_ReportsAllMissing(t *testing.T) {
	clearEnv(t)

	_, err := FromEnv()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	for _, want := range []string{
		"INSTANCE_URL", "WORKSPACE_ID", "DASHBOARD_ID",
		"OAUTH_CLIENT_ID", "OAUTH_SECRET",
		"EXTERNAL_VIEWER_ID", "EXTERNAL_VALUE",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestFromEnv_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for an unparsable timeout")
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broker.yaml")
	data := `instance_url: https://file.example.com
workspace_id: "42"
dashboard_id: dash-file
client_id: svc-file
client_secret: file-secret
external_viewer_id: user_file
external_value: partition-file
addr: ":9000"
request_timeout: 15s
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	// env wins over the file
	t.Setenv("DASHBOARD_ID", "dash-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DashboardID != "dash-env" {
		t.Errorf("dashboard id = %q, want env override dash-env", cfg.DashboardID)
	}
	if cfg.InstanceURL != "https://file.example.com" {
		t.Errorf("instance url = %q", cfg.InstanceURL)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("request timeout = %v, want 15s", cfg.RequestTimeout)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":5000" {
		t.Errorf("default addr = %q, want :5000", cfg.Addr)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", cfg.RequestTimeout)
	}
}
