package interfaces

import "context"

// -----------------------------------------------------------------------------
// IFetcher performs the one-shot GET of a record batch or widget payload.
// -----------------------------------------------------------------------------

type IFetcher interface {
	// Get returns the response body of path relative to the backend URL.
	Get(ctx context.Context, path string) ([]byte, error)
}

// -----------------------------------------------------------------------------
// IStreamHandle is an open subscription delivering whole messages.
// -----------------------------------------------------------------------------

type IStreamHandle interface {
	// Next blocks for the next message. It returns a *helpers.TransportError
	// with reason "closed" when the stream ended normally and "error" otherwise.
	Next() ([]byte, error)

	// Close ends the subscription; a pending Next returns a closed error.
	Close() error
}

// -----------------------------------------------------------------------------
// ISubscriber opens subscriptions.
// -----------------------------------------------------------------------------

type ISubscriber interface {
	Subscribe(ctx context.Context, path string) (IStreamHandle, error)
}
