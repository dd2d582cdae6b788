package api

import (
	"net/http"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/api/middleware"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/config"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/policy"
)

type Server struct {
	cfg    *config.Config
	broker core.TokenBroker
	gate   *policy.Gate
}

// NewServer wires the request handler. A nil gate means no viewer policy is
// configured and every exchange is allowed.
func NewServer(cfg *config.Config, broker core.TokenBroker, gate *policy.Gate) *Server {
	if gate == nil {
		gate, _ = policy.Compile("")
	}
	return &Server{
		cfg:    cfg,
		broker: broker,
		gate:   gate,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)
	mux.HandleFunc("GET "+ConfigCheckRoute, s.handleConfigCheck)

	// exchange-triggering routes
	mux.HandleFunc("GET "+EmbedPageRoute, s.handleEmbedPage)
	mux.HandleFunc("GET "+EmbedConfigRoute, s.handleEmbedConfig)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
