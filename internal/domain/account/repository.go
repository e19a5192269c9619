package account

import "context"

// Directory resolves display names against the upstream account service.
type Directory interface {
	// FindByName returns false when no account matches.
	FindByName(ctx context.Context, displayName string) (Handle, bool, error)
}

// MasterySource reports a player's total champion-mastery score.
type MasterySource interface {
	TotalMasteryScore(ctx context.Context, playerID string) (int, error)
}
