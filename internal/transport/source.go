// Package transport delivers raw trace payloads from a backend to a session.
//
// A Source only moves bytes: it does not decode or validate events. Each
// payload sent on the output channel is one complete event object, handed
// over in the order the backend produced it.
package transport

import "context"

// Source streams raw event payloads into out until the backend is exhausted
// or ctx is canceled. Stream does not close out; the caller owns it.
type Source interface {
	Stream(ctx context.Context, out chan<- []byte) error
	// Describe names the source for logs and summaries.
	Describe() string
}

// Slice is an in-memory source, used for tests and for replaying recorded
// traces.
type Slice [][]byte

// Stream implements Source.
func (s Slice) Stream(ctx context.Context, out chan<- []byte) error {
	for _, p := range s {
		select {
		case out <- p:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Describe implements Source.
func (s Slice) Describe() string {
	return "memory"
}
