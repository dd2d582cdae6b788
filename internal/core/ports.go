package core

import "context"

// Exchanger obtains a broadly-scoped bearer token for the service identity.
// The broad token must never leave the backend process.
type Exchanger interface {
	// ObtainBroadToken performs a client-credentials grant against the
	// workspace token endpoint and returns the resulting bearer token.
	ObtainBroadToken(ctx context.Context) (string, error)
}

// Narrower converts a broad token plus a viewer binding into a scoped token
// that is safe to hand to an untrusted frontend.
type Narrower interface {
	// Narrow introspects the published dashboard for the viewer and exchanges
	// the resulting authorization context for a viewer-bound token.
	Narrow(ctx context.Context, broadToken string, viewer ViewerRequest) (*TokenArtifact, error)
}

// TokenBroker runs the full exchange chain for one viewer.
type TokenBroker interface {
	Mint(ctx context.Context, viewer ViewerRequest) (*TokenArtifact, error)
}
