package broker

import (
	"errors"
	"fmt"
	"net/url"
)

// Stage identifies which hop of the exchange chain failed.
type Stage string

const (
	// StageAuthorize is the client-credentials grant for the broad token.
	StageAuthorize Stage = "authorize"

	// StageIntrospect is the published-dashboard tokeninfo lookup.
	StageIntrospect Stage = "introspect"

	// StageNarrow is the final exchange for the viewer-bound token.
	StageNarrow Stage = "narrow"
)

// ExchangeError means the upstream rejected a hop: a non-200 status or a
// response body that could not be decoded. Upstream response bodies are never
// carried in the error, they may echo request parameters.
type ExchangeError struct {
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("exchange stage %q failed (upstream status %d): %v", e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("exchange stage %q failed: %v", e.Stage, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// TransportError means a hop never produced an HTTP response: connection
// failure, timeout, or context cancellation. These are the candidates for a
// caller-supplied retry wrapper around the Doer.
type TransportError struct {
	Stage Stage
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure at stage %q: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// transportError strips the *url.Error envelope before wrapping: it embeds
// the full request URL, whose query string carries the viewer's external
// value.
func transportError(stage Stage, err error) *TransportError {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return &TransportError{Stage: stage, Err: err}
}
