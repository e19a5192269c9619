package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/riskibarqy/rift-scout/internal/domain/champion"
	"github.com/riskibarqy/rift-scout/internal/domain/match"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/riskibarqy/rift-scout/internal/platform/resilience"
)

// MatchLocator finds the match a player is in, or the one they played last.
type MatchLocator struct {
	live    match.LiveGameSource
	history match.HistorySource
	catalog champion.Catalog
	retry   resilience.RetryPolicy
	logger  *logging.Logger
}

// NewMatchLocator builds a locator. catalog may be nil, in which case live-game
// champions are left unnamed.
func NewMatchLocator(
	live match.LiveGameSource,
	history match.HistorySource,
	catalog champion.Catalog,
	retry resilience.RetryPolicy,
	logger *logging.Logger,
) *MatchLocator {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchLocator{
		live:    live,
		history: history,
		catalog: catalog,
		retry:   resilience.NormalizeRetryPolicy(retry),
		logger:  logger,
	}
}

type liveLookup struct {
	game  match.LiveGame
	found bool
}

type matchLookup struct {
	match match.Match
	found bool
}

func (l *MatchLocator) Locate(ctx context.Context, playerID string) (match.Lineup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchLocator.Locate")
	defer span.End()

	if playerID == "" {
		return match.Lineup{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	live, err := resilience.Retry(ctx, l.retry, isRetryable, func(ctx context.Context, _ int) (liveLookup, error) {
		game, found, err := l.live.ActiveGameByPlayer(ctx, playerID)
		return liveLookup{game: game, found: found}, err
	})
	if err != nil {
		return match.Lineup{}, fatalUpstreamError(ctx, "check active game", err)
	}
	if live.found && len(live.game.Participants) > 0 {
		participants := make([]match.Participant, len(live.game.Participants))
		copy(participants, live.game.Participants)
		l.nameChampions(ctx, participants)
		match.SortParticipants(participants)

		return match.Lineup{
			MatchID:      strconv.FormatInt(live.game.GameID, 10),
			IsLive:       true,
			Participants: participants,
		}, nil
	}

	ids, err := resilience.Retry(ctx, l.retry, isRetryable, func(ctx context.Context, _ int) ([]string, error) {
		return l.history.ListMatchIDs(ctx, playerID, 0, 1)
	})
	if err != nil {
		return match.Lineup{}, fatalUpstreamError(ctx, "list recent matches", err)
	}
	if len(ids) == 0 {
		return match.Lineup{}, fmt.Errorf("%w: player has no live or recent match", ErrNoMatchHistory)
	}

	recent, err := resilience.Retry(ctx, l.retry, isRetryable, func(ctx context.Context, _ int) (matchLookup, error) {
		m, found, err := l.history.GetMatch(ctx, ids[0])
		return matchLookup{match: m, found: found}, err
	})
	if err != nil {
		return match.Lineup{}, fatalUpstreamError(ctx, "get recent match", err)
	}
	if !recent.found || len(recent.match.Players) == 0 {
		return match.Lineup{}, fmt.Errorf("%w: recent match %s is gone", ErrNoMatchHistory, ids[0])
	}

	participants := recent.match.Participants()
	l.nameChampions(ctx, participants)

	return match.Lineup{
		MatchID:      recent.match.ID,
		IsLive:       false,
		Participants: participants,
	}, nil
}

// nameChampions fills missing champion names. Catalog failures leave names empty.
func (l *MatchLocator) nameChampions(ctx context.Context, participants []match.Participant) {
	if l.catalog == nil {
		return
	}
	for i := range participants {
		if participants[i].ChampionName != "" || participants[i].ChampionID <= 0 {
			continue
		}
		name, ok, err := l.catalog.Name(ctx, participants[i].ChampionID)
		if err != nil {
			l.logger.WarnContext(ctx, "champion catalog unavailable", "champion_id", participants[i].ChampionID, "error", err)
			return
		}
		if ok {
			participants[i].ChampionName = name
		}
	}
}
