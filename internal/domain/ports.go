package domain

import "context"

// Turn is everything a provider gets for a single completion call.
type Turn struct {
	// UserText is the new user message for this turn.
	UserText string

	// History is the full transcript so far, including the message in
	// UserText as its last entry. Stateful providers may ignore it;
	// the stateless backup needs it on every call.
	History []Message

	// System is the opaque persona instruction. Never shown to the user.
	System string
}

// CompletionProvider is a single model backend able to answer one turn.
// Failover treats every returned error the same way; callers never
// inspect provider-specific error shapes.
type CompletionProvider interface {
	CompleteTurn(ctx context.Context, turn Turn) (string, error)
}

// PrimaryFactory builds the stateful primary provider. Called lazily,
// once per chat lifetime; a construction error counts as a primary
// failure, not a fatal one.
type PrimaryFactory func(ctx context.Context) (CompletionProvider, error)
