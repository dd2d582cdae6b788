package broker

import (
	"context"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
)

// BroadScope is the maximally-permissive scope requested for the service
// identity. The resulting token can call every resource API, which is why it
// must never leave this process.
const BroadScope = "all-apis"

// Exchanger obtains the broad token via the client-credentials grant.
type Exchanger struct {
	instanceURL string
	identity    core.ServiceIdentity
	httpClient  Doer
}

var _ core.Exchanger = (*Exchanger)(nil)

func NewExchanger(instanceURL string, identity core.ServiceIdentity, httpClient Doer) *Exchanger {
	return &Exchanger{
		instanceURL: instanceURL,
		identity:    identity,
		httpClient:  httpClient,
	}
}

// ObtainBroadToken performs the first hop of the chain. There is no retry:
// the operation is time-sensitive and a 4xx means the credential itself is
// bad.
func (e *Exchanger) ObtainBroadToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", grantClientCredentials)
	form.Set("scope", BroadScope)

	tok, err := postTokenForm(ctx, e.httpClient, e.instanceURL, e.identity, form, StageAuthorize)
	if err != nil {
		return "", err
	}

	log.Ctx(ctx).Debug().Msg("broad token obtained")
	return tok.AccessToken, nil
}
