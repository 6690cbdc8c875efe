package proofread

import "context"

// Provider is a strategy pattern interface for completion services.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
