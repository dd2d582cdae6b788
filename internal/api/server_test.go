package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/api"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/broker"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/config"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/policy"
)

const (
	clientSecret = "super-sekrit"
	broadToken   = "BROAD1"
	scopedToken  = "SCOPED1"
)

// fixture wires a stub workspace, a real broker and the HTTP surface.
type fixture struct {
	upstreamCalls atomic.Int64
	authStatus    int // non-zero forces this status on the broad-token grant
	server        *httptest.Server
}

func newFixture(t *testing.T, viewerPolicy string) *fixture {
	f := &fixture{}

	identity := core.ServiceIdentity{ClientID: "svc", ClientSecret: clientSecret}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.upstreamCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/oidc/v1/token":
			_ = r.ParseForm()
			if r.PostForm.Get("scope") == broker.BroadScope {
				if f.authStatus != 0 {
					w.WriteHeader(f.authStatus)
					return
				}
				_, _ = w.Write([]byte(`{"access_token":"` + broadToken + `"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"` + scopedToken + `","expires_in":600}`))
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/published/tokeninfo"):
			_, _ = w.Write([]byte(`{"external_viewer_id":"u1","authorization_details":{"x":1}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		InstanceURL:      upstream.URL,
		WorkspaceID:      "ws-1",
		DashboardID:      "dash-1",
		ClientID:         identity.ClientID,
		ClientSecret:     identity.ClientSecret,
		ExternalViewerID: "u1",
		ExternalValue:    "partition-a",
		Addr:             ":0",
		RequestTimeout:   5 * time.Second,
		ViewerPolicy:     viewerPolicy,
	}

	gate, err := policy.Compile(viewerPolicy)
	if err != nil {
		t.Fatalf("compiling policy: %v", err)
	}

	brk := broker.New(cfg.InstanceURL, cfg.DashboardID, cfg.Identity(), nil)
	srv := api.NewServer(cfg, brk, gate)
	f.server = httptest.NewServer(srv.Routes())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

func TestEmbedConfig_EndToEnd(t *testing.T) {
	f := newFixture(t, "")
	resp, body := f.get(t, api.EmbedConfigRoute)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, scopedToken) {
		t.Error("response missing the scoped token")
	}
	if strings.Contains(body, broadToken) {
		t.Error("broad token leaked into the response")
	}
	if strings.Contains(body, clientSecret) {
		t.Error("client secret leaked into the response")
	}

	var embedCfg api.EmbedConfig
	if err := json.Unmarshal([]byte(body), &embedCfg); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if embedCfg.WorkspaceID != "ws-1" || embedCfg.DashboardID != "dash-1" {
		t.Errorf("identifiers = %q/%q, want ws-1/dash-1", embedCfg.WorkspaceID, embedCfg.DashboardID)
	}
	if embedCfg.EmbedToken != scopedToken {
		t.Errorf("embed_token = %q, want %q", embedCfg.EmbedToken, scopedToken)
	}
	if embedCfg.TokenExpiresIn != 600 {
		t.Errorf("token_expires_in = %d, want 600", embedCfg.TokenExpiresIn)
	}
}

func TestEmbedConfig_UpstreamRejected(t *testing.T) {
	f := newFixture(t, "")
	f.authStatus = http.StatusUnauthorized

	resp, body := f.get(t, api.EmbedConfigRoute)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if strings.Contains(body, clientSecret) {
		t.Error("client secret leaked into the error response")
	}
	// the failing stage and upstream status stay visible for operability
	if !strings.Contains(body, "authorize") || !strings.Contains(body, "401") {
		t.Errorf("error response should name the stage and upstream status, got: %s", body)
	}
}

func TestUnknownRoute_NotFoundWithoutExchange(t *testing.T) {
	f := newFixture(t, "")
	resp, _ := f.get(t, "/foo")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if calls := f.upstreamCalls.Load(); calls != 0 {
		t.Errorf("unknown route triggered %d upstream calls", calls)
	}
}

func TestEmbedPage_RendersScopedToken(t *testing.T) {
	f := newFixture(t, "")
	resp, body := f.get(t, "/")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if !strings.Contains(body, scopedToken) {
		t.Error("embed page missing the scoped token")
	}
	if !strings.Contains(body, "dash-1") {
		t.Error("embed page missing the dashboard id")
	}
	if strings.Contains(body, broadToken) || strings.Contains(body, clientSecret) {
		t.Error("embed page leaked broker credentials")
	}
}

func TestViewerPolicy_Denies(t *testing.T) {
	f := newFixture(t, `external_viewer_id != "u1"`)
	resp, _ := f.get(t, api.EmbedConfigRoute)

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if calls := f.upstreamCalls.Load(); calls != 0 {
		t.Errorf("denied viewer still triggered %d upstream calls", calls)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, "")
	resp, body := f.get(t, api.HealthCheckRoute)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body != "OK" {
		t.Errorf("body = %q, want OK", body)
	}
}

func TestConfigCheck_MasksSecrets(t *testing.T) {
	f := newFixture(t, "")
	resp, body := f.get(t, api.ConfigCheckRoute)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if strings.Contains(body, clientSecret) {
		t.Error("config check leaked the client secret")
	}
	if strings.Contains(body, "partition-a") {
		t.Error("config check leaked the external value")
	}
	if !strings.Contains(body, `"client_secret_set":true`) {
		t.Errorf("expected client_secret_set=true, got: %s", body)
	}
}

func TestCorrelationIDHeader(t *testing.T) {
	f := newFixture(t, "")
	resp, _ := f.get(t, api.HealthCheckRoute)

	if resp.Header.Get("X-Correlation-ID") == "" {
		t.Error("expected a correlation id header on responses")
	}
}
