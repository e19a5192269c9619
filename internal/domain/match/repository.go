package match

import "context"

// LiveGameSource looks up in-progress matches.
type LiveGameSource interface {
	// ActiveGameByPlayer returns false when the player is not currently in a match.
	ActiveGameByPlayer(ctx context.Context, playerID string) (LiveGame, bool, error)
}

// HistorySource pages through completed matches.
type HistorySource interface {
	// ListMatchIDs returns ids newest first.
	ListMatchIDs(ctx context.Context, playerID string, start, count int) ([]string, error)
	// GetMatch returns false when the match no longer exists upstream.
	GetMatch(ctx context.Context, matchID string) (Match, bool, error)
}
