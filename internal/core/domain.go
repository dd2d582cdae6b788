package core

import (
	"encoding/base64"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ServiceIdentity is the long-lived OAuth client credential identifying this
// backend to the workspace's authorization server. It is loaded once at
// startup and must never appear in logs or response bodies.
type ServiceIdentity struct {
	ClientID     string
	ClientSecret string
}

// BasicAuth renders the credential as an HTTP Basic Authorization header value.
func (s ServiceIdentity) BasicAuth() string {
	raw := s.ClientID + ":" + s.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// String masks the secret so accidental %v formatting stays safe.
func (s ServiceIdentity) String() string {
	return fmt.Sprintf("ServiceIdentity{ClientID: %s, ClientSecret: [redacted]}", s.ClientID)
}

// ViewerRequest binds one token exchange to one end user.
//
// ExternalViewerID must not contain PII: the workspace records it in its
// audit trail. ExternalValue may contain PII (it drives row-level filtering)
// and must never be logged by the broker.
type ViewerRequest struct {
	ExternalViewerID string
	ExternalValue    string
}

// AuthorizationContext is the claim blob returned by the tokeninfo endpoint.
// Fields is kept verbatim (numbers stay json.Number) because every field is
// carried forward into the narrowing call.
type AuthorizationContext struct {
	Fields map[string]any
}

// viewerEcho holds the viewer identifiers the tokeninfo endpoint echoes back.
type viewerEcho struct {
	ExternalViewerID string `mapstructure:"external_viewer_id"`
	ExternalValue    string `mapstructure:"external_value"`
}

// Viewer decodes the echoed viewer identifiers from the context.
func (c AuthorizationContext) Viewer() (ViewerRequest, error) {
	var echo viewerEcho
	if err := mapstructure.WeakDecode(c.Fields, &echo); err != nil {
		return ViewerRequest{}, fmt.Errorf("decoding viewer fields: %w", err)
	}
	return ViewerRequest{
		ExternalViewerID: echo.ExternalViewerID,
		ExternalValue:    echo.ExternalValue,
	}, nil
}

// TokenArtifact is the terminal result of a successful exchange: the scoped
// token handed to the caller, plus the expiry metadata the frontend needs.
type TokenArtifact struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	CreatedAt   int64  `json:"created_at"`
}
