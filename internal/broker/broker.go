package broker

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/core"
)

// Doer executes one outbound HTTP request. It is the seam for wrapping a
// caller-supplied retry/backoff policy around each hop; the broker itself
// never retries, the upstream caps exchange-triggering operations at 20
// starts per second.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Broker composes the two exchange components into the full per-request
// chain. It holds no mutable state, the same instance serves any number of
// concurrent requests.
type Broker struct {
	exchanger core.Exchanger
	narrower  core.Narrower
}

var _ core.TokenBroker = (*Broker)(nil)

// New builds a broker talking to one workspace instance and one published
// dashboard. A nil httpClient gets a default client with a bounded timeout.
func New(instanceURL, dashboardID string, identity core.ServiceIdentity, httpClient Doer) *Broker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	instanceURL = strings.TrimRight(instanceURL, "/")
	return &Broker{
		exchanger: NewExchanger(instanceURL, identity, httpClient),
		narrower:  NewNarrower(instanceURL, dashboardID, identity, httpClient),
	}
}

// NewFromParts wires pre-built components, used by tests to stub out hops.
func NewFromParts(exchanger core.Exchanger, narrower core.Narrower) *Broker {
	return &Broker{exchanger: exchanger, narrower: narrower}
}

// Mint runs the sequential chain: broad-token fetch, then narrowing. The
// broad token exists only on this goroutine's stack and is discarded after
// the single narrowing use.
func (b *Broker) Mint(ctx context.Context, viewer core.ViewerRequest) (*core.TokenArtifact, error) {
	broadToken, err := b.exchanger.ObtainBroadToken(ctx)
	if err != nil {
		return nil, err
	}

	artifact, err := b.narrower.Narrow(ctx, broadToken, viewer)
	if err != nil {
		return nil, err
	}

	// external_value never appears here: it may carry PII
	log.Ctx(ctx).Info().
		Str("external_viewer_id", viewer.ExternalViewerID).
		Int("expires_in", artifact.ExpiresIn).
		Msg("scoped token minted")
	return artifact, nil
}
