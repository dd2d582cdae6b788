package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/api/about"

	// EmbedPageRoute matches exactly "/" so every other path falls through to
	// the mux's not-found handler without touching the exchange chain.
	EmbedPageRoute = "/{$}"

	EmbedConfigRoute = "/api/dashboard/embed-config"
	ConfigCheckRoute = "/api/config-check"
)
