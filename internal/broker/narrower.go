package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
)

const (
	tokenInfoPathFormat = "/api/2.0/lakeview/dashboards/%s/published/tokeninfo"

	// authorizationDetailsField is the one context field that is not carried
	// forward verbatim: it is extracted, re-serialized as a JSON string, and
	// reinserted under the same key. The token endpoint accepts the serialized
	// claim as the scoping instruction for the narrowed token.
	authorizationDetailsField = "authorization_details"

	// defaultExpirySeconds mirrors the upstream default when the narrowing
	// response omits expires_in.
	defaultExpirySeconds = 3600
)

// Narrower turns a broad token plus a viewer binding into a scoped token via
// the fixed two-call sequence: tokeninfo introspection, then a second
// client-credentials exchange seeded with the authorization context.
type Narrower struct {
	instanceURL string
	dashboardID string
	identity    core.ServiceIdentity
	httpClient  Doer
}

var _ core.Narrower = (*Narrower)(nil)

func NewNarrower(instanceURL, dashboardID string, identity core.ServiceIdentity, httpClient Doer) *Narrower {
	return &Narrower{
		instanceURL: instanceURL,
		dashboardID: dashboardID,
		identity:    identity,
		httpClient:  httpClient,
	}
}

// Narrow runs both calls in order. Failure of either aborts the exchange, no
// partial token is ever returned.
func (n *Narrower) Narrow(ctx context.Context, broadToken string, viewer core.ViewerRequest) (*core.TokenArtifact, error) {
	authCtx, err := n.tokenInfo(ctx, broadToken, viewer)
	if err != nil {
		return nil, err
	}
	echo, err := authCtx.Viewer()
	if err != nil {
		return nil, &ExchangeError{Stage: StageIntrospect, Err: fmt.Errorf("decoding echoed viewer fields: %w", err)}
	}
	if err := verifyViewerEcho(echo, viewer); err != nil {
		return nil, &ExchangeError{Stage: StageIntrospect, Err: err}
	}
	log.Ctx(ctx).Debug().
		Int("context_fields", len(authCtx.Fields)).
		Str("external_viewer_id", echo.ExternalViewerID).
		Msg("authorization context retrieved")

	form, err := narrowingForm(authCtx)
	if err != nil {
		return nil, &ExchangeError{Stage: StageNarrow, Err: err}
	}

	tok, err := postTokenForm(ctx, n.httpClient, n.instanceURL, n.identity, form, StageNarrow)
	if err != nil {
		return nil, err
	}

	expiresIn := tok.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpirySeconds
	}
	return &core.TokenArtifact{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// tokenInfo fetches the authorization context for the viewer from the
// published dashboard's introspection endpoint, authenticated with the broad
// token.
func (n *Narrower) tokenInfo(ctx context.Context, broadToken string, viewer core.ViewerRequest) (core.AuthorizationContext, error) {
	q := url.Values{}
	q.Set("external_viewer_id", viewer.ExternalViewerID)
	q.Set("external_value", viewer.ExternalValue)

	endpoint := n.instanceURL + fmt.Sprintf(tokenInfoPathFormat, url.PathEscape(n.dashboardID)) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return core.AuthorizationContext{}, fmt.Errorf("creating tokeninfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+broadToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return core.AuthorizationContext{}, transportError(StageIntrospect, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return core.AuthorizationContext{}, &ExchangeError{
			Stage:      StageIntrospect,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("tokeninfo endpoint rejected the request"),
		}
	}

	// UseNumber keeps numeric claims lossless for the carry-forward.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return core.AuthorizationContext{}, &ExchangeError{
			Stage:      StageIntrospect,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding tokeninfo response: %w", err),
		}
	}
	return core.AuthorizationContext{Fields: fields}, nil
}

// verifyViewerEcho rejects a context bound to a different viewer than the one
// requested, so a scoped token can never be minted against a foreign binding.
// Empty echo fields are tolerated, the endpoint does not always return both.
// The external value never appears in the error, it may carry PII.
func verifyViewerEcho(echo, requested core.ViewerRequest) error {
	if echo.ExternalViewerID != "" && echo.ExternalViewerID != requested.ExternalViewerID {
		return fmt.Errorf("tokeninfo is bound to external_viewer_id %q, requested %q",
			echo.ExternalViewerID, requested.ExternalViewerID)
	}
	if echo.ExternalValue != "" && echo.ExternalValue != requested.ExternalValue {
		return fmt.Errorf("tokeninfo external_value does not match the requested binding")
	}
	return nil
}

// narrowingForm builds the body of the narrowing call: every context field
// carried forward except authorization_details, which appears only in its
// JSON-string form; grant_type is forced to client_credentials.
func narrowingForm(authCtx core.AuthorizationContext) (url.Values, error) {
	form := url.Values{}
	for key, value := range authCtx.Fields {
		if key == authorizationDetailsField {
			continue
		}
		s, err := formValue(value)
		if err != nil {
			return nil, fmt.Errorf("encoding context field %q: %w", key, err)
		}
		form.Set(key, s)
	}

	// a context without the claim serializes as "null" and the exchange still
	// proceeds; the token endpoint is the authority on whether to accept it
	details, err := json.Marshal(authCtx.Fields[authorizationDetailsField])
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", authorizationDetailsField, err)
	}
	form.Set(authorizationDetailsField, string(details))
	form.Set("grant_type", grantClientCredentials)
	return form, nil
}

func formValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
