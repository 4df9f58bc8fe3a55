package application

import "context"

// UnitOfWork is the transaction boundary used by Sell: the sell record and
// the lot mutation must commit or roll back together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopUoW runs the function without a transaction (tests, in-memory repos).
type NoopUoW struct{}

func (NoopUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
