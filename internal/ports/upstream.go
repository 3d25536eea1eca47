package ports

import (
	"context"
	"io"
)

// UpstreamResponse is the raw reply of the completion provider. Body is nil
// when the provider sent no payload at all.
type UpstreamResponse struct {
	StatusCode int
	Status     string
	Body       io.ReadCloser
}

// Upstream opens one streamed completion call. A returned error means the
// provider could not be reached; provider-side failures come back as a
// response with a non-2xx status.
type Upstream interface {
	Open(ctx context.Context, payload []byte, credential string) (*UpstreamResponse, error)
}
