package api

import (
	"net/http"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/api/presenter"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/buildinfo"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

// ConfigCheck mirrors the resolved configuration for operators. Secret-bearing
// values are reduced to set/unset booleans.
type ConfigCheck struct {
	InstanceURL      string `json:"instance_url"`
	WorkspaceID      string `json:"workspace_id"`
	DashboardID      string `json:"dashboard_id"`
	ClientIDSet      bool   `json:"client_id_set"`
	ClientSecretSet  bool   `json:"client_secret_set"`
	ExternalViewerID string `json:"external_viewer_id"`
	ViewerPolicySet  bool   `json:"viewer_policy_set"`
}

func (s *Server) handleConfigCheck(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, ConfigCheck{
		InstanceURL:      s.cfg.InstanceURL,
		WorkspaceID:      s.cfg.WorkspaceID,
		DashboardID:      s.cfg.DashboardID,
		ClientIDSet:      s.cfg.ClientID != "",
		ClientSecretSet:  s.cfg.ClientSecret != "",
		ExternalViewerID: s.cfg.ExternalViewerID,
		ViewerPolicySet:  s.cfg.ViewerPolicy != "",
	}, http.StatusOK)
}
