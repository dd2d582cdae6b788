package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
)

// Config holds every value the broker needs. All required values are checked
// once at startup, a missing value is a fatal ConfigurationError, never a
// per-request failure.
type Config struct {
	// InstanceURL is the workspace base URL, e.g. https://my-workspace.cloud.databricks.com.
	InstanceURL string `yaml:"instance_url"`

	// WorkspaceID identifies the workspace to the rendering client.
	WorkspaceID string `yaml:"workspace_id"`

	// DashboardID is the published dashboard whose tokeninfo endpoint seeds
	// the narrowing call.
	DashboardID string `yaml:"dashboard_id"`

	// ClientID and ClientSecret form the service identity. The secret never
	// appears in logs or responses.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// ExternalViewerID is the non-PII viewer identifier recorded in the
	// workspace audit trail. ExternalValue is the row-level filter value and
	// may carry PII.
	ExternalViewerID string `yaml:"external_viewer_id"`
	ExternalValue    string `yaml:"external_value"`

	// Addr is the listen address for the inbound HTTP surface.
	Addr string `yaml:"addr"`

	// RequestTimeout bounds each outbound hop of the exchange chain.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ViewerPolicy is an optional expr-lang expression over
	// external_viewer_id / external_value, evaluated before any network call.
	ViewerPolicy string `yaml:"viewer_policy"`
}

// ConfigurationError reports every missing required value at once, using the
// environment variable names operators set.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Load reads the optional YAML file at path, overlays environment values on
// top, applies defaults and validates. An empty path means env-only.
func Load(path string) (*Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve builds the configuration without validating it, so diagnostic
// commands can show a partial resolution.
func Resolve(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.normalize()
	return &cfg, nil
}

// FromEnv loads the configuration from the environment only.
func FromEnv() (*Config, error) {
	return Load("")
}

// applyEnv overlays environment values. The names match the original
// deployment surface, including the vendor-prefixed fallbacks.
func (c *Config) applyEnv() error {
	v := viper.New()
	bind := func(key string, envs ...string) {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	bind("instance_url", "INSTANCE_URL", "DATABRICKS_WORKSPACE_URL")
	bind("workspace_id", "WORKSPACE_ID", "DATABRICKS_WORKSPACE_ID")
	bind("dashboard_id", "DASHBOARD_ID", "DATABRICKS_DASHBOARD_ID")
	bind("client_id", "OAUTH_CLIENT_ID", "DATABRICKS_CLIENT_ID")
	bind("client_secret", "OAUTH_SECRET", "DATABRICKS_CLIENT_SECRET")
	bind("external_viewer_id", "EXTERNAL_VIEWER_ID")
	bind("external_value", "EXTERNAL_VALUE")
	bind("addr", "ADDR")
	bind("port", "PORT", "DATABRICKS_APP_PORT")
	bind("request_timeout", "REQUEST_TIMEOUT")
	bind("viewer_policy", "VIEWER_POLICY")

	overlay := func(dst *string, key string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	overlay(&c.InstanceURL, "instance_url")
	overlay(&c.WorkspaceID, "workspace_id")
	overlay(&c.DashboardID, "dashboard_id")
	overlay(&c.ClientID, "client_id")
	overlay(&c.ClientSecret, "client_secret")
	overlay(&c.ExternalViewerID, "external_viewer_id")
	overlay(&c.ExternalValue, "external_value")
	overlay(&c.Addr, "addr")
	overlay(&c.ViewerPolicy, "viewer_policy")

	if c.Addr == "" {
		if port := v.GetString("port"); port != "" {
			c.Addr = ":" + port
		}
	}

	if s := v.GetString("request_timeout"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parsing REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

func (c *Config) normalize() {
	c.InstanceURL = strings.TrimRight(c.InstanceURL, "/")
}

// Validate collects all missing required values instead of failing on the
// first, so one startup failure reports the complete gap.
func (c *Config) Validate() error {
	var missing []string
	require := func(value, env string) {
		if value == "" {
			missing = append(missing, env)
		}
	}
	require(c.InstanceURL, "INSTANCE_URL")
	require(c.WorkspaceID, "WORKSPACE_ID")
	require(c.DashboardID, "DASHBOARD_ID")
	require(c.ClientID, "OAUTH_CLIENT_ID")
	require(c.ClientSecret, "OAUTH_SECRET")
	require(c.ExternalViewerID, "EXTERNAL_VIEWER_ID")
	require(c.ExternalValue, "EXTERNAL_VALUE")
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// Identity returns the immutable service identity for the exchange chain.
func (c *Config) Identity() core.ServiceIdentity {
	return core.ServiceIdentity{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	}
}

// Viewer returns the configured viewer binding.
func (c *Config) Viewer() core.ViewerRequest {
	return core.ViewerRequest{
		ExternalViewerID: c.ExternalViewerID,
		ExternalValue:    c.ExternalValue,
	}
}
