package application

import "context"

// Worker is a long-running background process (the history refresher).
// Implementations run until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
