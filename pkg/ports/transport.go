package ports

import (
	"context"

	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// Transport delivers a request to the producer.
type Transport interface {
	// Send posts the request and returns the response body.
	// A non-success status is reported as *domain.TransportError.
	Send(ctx context.Context, req *domain.Request) ([]byte, error)
}

// Uploader ships files ahead of the request that references them.
type Uploader interface {
	// Upload returns, for each upload id, the descriptor the producer stored.
	// Ids missing from the result are dropped from the params.
	Upload(ctx context.Context, uploads []domain.Upload) (map[string]domain.StoredFile, error)
}
