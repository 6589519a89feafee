package ddns

import (
	"context"
)

// Resolver discovers the address that the DNS record should point to.
// The returned string is validated by the caller with ValidIPv4.
type Resolver interface {
	Resolve(context.Context) (string, error)
}

// Provider reads and overwrites a single A record.
type Provider interface {
	FetchRecord(ctx context.Context, name string) (Record, error)
	UpdateRecord(ctx context.Context, id, name, content string) (Record, error)
}

// Notifier delivers a status message. Implementations swallow their own errors.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(context.Context) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context) (string, error) {
	return f(ctx)
}
