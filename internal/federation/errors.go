package federation

import "errors"

var (
	// ErrUnknownProvider is returned for handshake routes naming a provider
	// that was never registered.
	ErrUnknownProvider = errors.New("unknown identity provider")

	// ErrNoAccessToken is returned when the provider's token response lacks
	// an access token.
	ErrNoAccessToken = errors.New("provider response contained no access token")
)
