package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
)

const (
	tokenEndpointPath      = "/oidc/v1/token"
	grantClientCredentials = "client_credentials"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// postTokenForm sends a form-encoded, Basic-auth'd request to the workspace
// token endpoint. Both the broad-token grant and the narrowing exchange go
// through here, they differ only in the form body and the stage used for
// error attribution.
func postTokenForm(
	ctx context.Context,
	client Doer,
	instanceURL string,
	identity core.ServiceIdentity,
	form url.Values,
	stage Stage,
) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		instanceURL+tokenEndpointPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", identity.BasicAuth())

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(stage, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExchangeError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			Err:        errors.New("token endpoint rejected the request"),
		}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, &ExchangeError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding token response: %w", err),
		}
	}
	if tok.AccessToken == "" {
		return nil, &ExchangeError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			Err:        errors.New("token response missing access_token"),
		}
	}
	return &tok, nil
}
