package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/api"
)

func TestEmbedConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.EmbedConfigRoute {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("X-Correlation-ID", "corr-1")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"instance_url":"https://x","workspace_id":"ws","dashboard_id":"d","embed_token":"SCOPED1","token_expires_in":600}`))
	}))
	defer srv.Close()

	cli := New(srv.URL)
	embedCfg, correlation, err := cli.EmbedConfig(context.Background())
	if err != nil {
		t.Fatalf("EmbedConfig: %v", err)
	}
	if embedCfg.EmbedToken != "SCOPED1" {
		t.Errorf("embed token = %q, want SCOPED1", embedCfg.EmbedToken)
	}
	if correlation != "corr-1" {
		t.Errorf("correlation = %q, want corr-1", correlation)
	}
}

func TestAbout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.AboutRoute {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"service":"AI/BI Embed Token Broker","version":"v1.2.3","commit_hash":"abc123"}`))
	}))
	defer srv.Close()

	cli := New(srv.URL)
	info, _, err := cli.About(context.Background())
	if err != nil {
		t.Fatalf("About: %v", err)
	}
	if info.Version != "v1.2.3" {
		t.Errorf("version = %q, want v1.2.3", info.Version)
	}
	if info.CommitHash != "abc123" {
		t.Errorf("commit = %q, want abc123", info.CommitHash)
	}
}

func TestEmbedConfig_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Correlation-ID", "corr-2")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"token exchange failed: exchange stage \"authorize\" failed (upstream status 401)","correlation_id":"corr-2"}`))
	}))
	defer srv.Close()

	cli := New(srv.URL)
	_, correlation, err := cli.EmbedConfig(context.Background())
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apiErr.StatusCode)
	}
	if correlation != "corr-2" {
		t.Errorf("correlation = %q, want corr-2", correlation)
	}
}
