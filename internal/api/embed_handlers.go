package api

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/api/presenter"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
)

//go:embed templates/embed.gohtml
var templateFS embed.FS

var embedTemplate = template.Must(template.ParseFS(templateFS, "templates/embed.gohtml"))

// EmbedConfig is the payload the frontend needs to instantiate the rendering
// client: the three identifiers plus the scoped token. The broad token and
// the service secret never appear here.
type EmbedConfig struct {
	InstanceURL    string `json:"instance_url"`
	WorkspaceID    string `json:"workspace_id"`
	DashboardID    string `json:"dashboard_id"`
	EmbedToken     string `json:"embed_token"`
	TokenExpiresIn int    `json:"token_expires_in"`
}

type embedPageData struct {
	InstanceURL string
	WorkspaceID string
	DashboardID string
	Token       string
}

// mint runs the policy gate and the exchange chain for the configured viewer.
// On failure it returns a client-safe status and message; the full error is
// already logged by the broker layers.
func (s *Server) mint(ctx context.Context) (*core.TokenArtifact, int, string) {
	logger := log.Ctx(ctx)
	viewer := s.cfg.Viewer()

	allowed, err := s.gate.Allow(viewer)
	if err != nil {
		logger.Error().Err(err).Msg("viewer policy evaluation failed")
		return nil, http.StatusInternalServerError, "viewer policy evaluation failed"
	}
	if !allowed {
		logger.Warn().
			Str("external_viewer_id", viewer.ExternalViewerID).
			Msg("viewer denied by policy")
		return nil, http.StatusForbidden, "viewer not allowed by policy"
	}

	artifact, err := s.broker.Mint(ctx, viewer)
	if err != nil {
		logger.Error().Err(err).Msg("token exchange failed")
		return nil, presenter.StatusFor(err), "token exchange failed: " + err.Error()
	}
	return artifact, 0, ""
}

// handleEmbedConfig returns the embed payload as JSON for API consumers.
func (s *Server) handleEmbedConfig(w http.ResponseWriter, r *http.Request) {
	artifact, status, msg := s.mint(r.Context())
	if artifact == nil {
		presenter.Error(w, r, msg, status)
		return
	}

	presenter.JSON(w, r, EmbedConfig{
		InstanceURL:    s.cfg.InstanceURL,
		WorkspaceID:    s.cfg.WorkspaceID,
		DashboardID:    s.cfg.DashboardID,
		EmbedToken:     artifact.AccessToken,
		TokenExpiresIn: artifact.ExpiresIn,
	}, http.StatusOK)
}

// handleEmbedPage renders the server-side page that mounts the dashboard
// client with a freshly minted scoped token. Each page load performs a full
// exchange, tokens are never cached between requests.
func (s *Server) handleEmbedPage(w http.ResponseWriter, r *http.Request) {
	artifact, status, msg := s.mint(r.Context())
	if artifact == nil {
		http.Error(w, msg, status)
		return
	}

	err := renderHTML(w, embedTemplate, embedPageData{
		InstanceURL: s.cfg.InstanceURL,
		WorkspaceID: s.cfg.WorkspaceID,
		DashboardID: s.cfg.DashboardID,
		Token:       artifact.AccessToken,
	})
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to render embed page")
		http.Error(w, "failed to render embed page", http.StatusInternalServerError)
	}
}

// renderHTML buffers the whole render before touching the ResponseWriter, so
// a template error never leaks a truncated 200 response.
func renderHTML(w http.ResponseWriter, tpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
