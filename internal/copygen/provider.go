package copygen

import "context"

// Provider is a single upstream AI completion service. Implementations
// carry their own client-level timeout, which must be shorter than the
// generator's outer deadline so network stalls surface as provider errors
// before the budget expires.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
