package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/rift-scout/internal/domain/account"
	"github.com/riskibarqy/rift-scout/internal/domain/match"
	"github.com/riskibarqy/rift-scout/internal/domain/performance"
	accountmock "github.com/riskibarqy/rift-scout/internal/mocks/domain/account"
	"github.com/riskibarqy/rift-scout/internal/platform/cache"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	handle account.Handle
	err    error
}

func (s stubResolver) Resolve(context.Context, string) (account.Handle, error) {
	return s.handle, s.err
}

type stubLocator struct {
	lineup match.Lineup
	err    error
}

func (s stubLocator) Locate(context.Context, string) (match.Lineup, error) {
	return s.lineup, s.err
}

type historyFunc func(ctx context.Context, playerID string, maxGames int) ([]match.Summary, error)

func (f historyFunc) FetchHistory(ctx context.Context, playerID string, maxGames int) ([]match.Summary, error) {
	return f(ctx, playerID, maxGames)
}

var ashe99 = account.Handle{DisplayName: "Ashe99", PlayerID: "puuid-ashe"}

func liveLineup(participants ...match.Participant) match.Lineup {
	match.SortParticipants(participants)
	return match.Lineup{MatchID: "4821003311", IsLive: true, Participants: participants}
}

func TestMatchViewService_AsheWithTwoWarwicks(t *testing.T) {
	t.Parallel()

	source := newFakeHistory()
	played := time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)
	source.addMatch(match.Match{
		ID: "NA1_900", StartedAt: played, DurationSeconds: 1800,
		Players: []match.PlayerResult{
			playerLine("ww-1", 19, true, 5, 2, 10),
			playerLine("ww-2", 19, true, 5, 2, 10),
			playerLine("puuid-ashe", 22, false, 3, 4, 8),
		},
	})

	lineup := liveLineup(
		match.Participant{PlayerID: "puuid-ashe", ChampionID: 22, ChampionName: "Ashe", TeamID: match.SideBlue, Slot: 0},
		match.Participant{PlayerID: "ww-1", ChampionID: 19, ChampionName: "Warwick", TeamID: match.SideBlue, Slot: 1},
		match.Participant{PlayerID: "ww-2", ChampionID: 19, ChampionName: "Warwick", TeamID: match.SideRed, Slot: 0},
	)

	mastery := accountmock.NewMasterySource(t)
	mastery.On("TotalMasteryScore", mock.Anything, "puuid-ashe").Return(431, nil).Once()

	fetcher := NewHistoryFetcher(source, nil, HistoryFetcherConfig{Retry: fastRetry()}, logging.NewNop())
	svc := NewMatchViewService(stubResolver{handle: ashe99}, stubLocator{lineup: lineup}, fetcher, mastery,
		cache.NewStore(0), MatchViewConfig{Workers: 4, PerformanceTTL: time.Minute}, logging.NewNop())

	view, err := svc.BuildView(context.Background(), "Ashe99")
	require.NoError(t, err)

	assert.Equal(t, "4821003311", view.MatchID)
	assert.True(t, view.IsLiveMatch)
	assert.Equal(t, 431, view.MasteryScore)
	assert.Equal(t, 22, view.RecentChampion.ChampionID)
	assert.True(t, view.RecentChampion.PlayedAt.Equal(played))
	require.Len(t, view.Reports, 3)

	for _, r := range view.Reports[1:] {
		require.True(t, r.IsAvailable(), "report for %s", r.Participant.PlayerID)
		assert.Equal(t, 1, r.Performance.GamesPlayed)
		assert.Equal(t, 1.0, r.Performance.WinRate)
		assert.Equal(t, 5.0, r.Performance.AvgKills)
	}
	assert.Equal(t, 0.0, view.Reports[0].Performance.WinRate)
}

func TestMatchViewService_ZeroGamesOnChampionIsNotAnError(t *testing.T) {
	t.Parallel()

	source := newFakeHistory()
	source.addMatch(match.Match{
		ID: "NA1_1", StartedAt: time.Now(), DurationSeconds: 1500,
		Players: []match.PlayerResult{playerLine("p2", 22, true, 1, 1, 1)},
	})

	lineup := liveLineup(match.Participant{PlayerID: "p2", ChampionID: 19, TeamID: match.SideBlue})
	fetcher := NewHistoryFetcher(source, nil, HistoryFetcherConfig{Retry: fastRetry()}, logging.NewNop())
	svc := NewMatchViewService(stubResolver{handle: ashe99}, stubLocator{lineup: lineup}, fetcher, nil, nil,
		MatchViewConfig{}, logging.NewNop())

	view, err := svc.BuildView(context.Background(), "Ashe99")
	require.NoError(t, err)
	require.Len(t, view.Reports, 1)
	require.True(t, view.Reports[0].IsAvailable())
	assert.Equal(t, 0, view.Reports[0].Performance.GamesPlayed)
	assert.Equal(t, 0.0, view.Reports[0].Performance.WinRate)
}

func TestMatchViewService_NoMatchHistoryFailsWholeView(t *testing.T) {
	t.Parallel()

	svc := NewMatchViewService(stubResolver{handle: ashe99},
		stubLocator{err: fmt.Errorf("%w: nothing", ErrNoMatchHistory)},
		historyFunc(func(context.Context, string, int) ([]match.Summary, error) {
			t.Fatalf("history must not be fetched without a lineup")
			return nil, nil
		}), nil, nil, MatchViewConfig{}, logging.NewNop())

	_, err := svc.BuildView(context.Background(), "Ashe99")
	require.ErrorIs(t, err, ErrNoMatchHistory)
}

func TestMatchViewService_ResolveFailureIsFatal(t *testing.T) {
	t.Parallel()

	svc := NewMatchViewService(stubResolver{err: ErrNotFound}, stubLocator{}, nil, nil, nil, MatchViewConfig{}, logging.NewNop())

	_, err := svc.BuildView(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMatchViewService_ParticipantFailuresAreContained(t *testing.T) {
	t.Parallel()

	lineup := liveLineup(
		match.Participant{PlayerID: "ok", ChampionID: 19, TeamID: match.SideBlue, Slot: 0},
		match.Participant{PlayerID: "throttled", ChampionID: 19, TeamID: match.SideBlue, Slot: 1},
		match.Participant{PlayerID: "broken", ChampionID: 19, TeamID: match.SideBlue, Slot: 2},
		match.Participant{PlayerID: "gone", ChampionID: 19, TeamID: match.SideRed, Slot: 0},
		match.Participant{PlayerID: "", ChampionID: 19, TeamID: match.SideRed, Slot: 1, Bot: true},
	)
	history := historyFunc(func(_ context.Context, playerID string, _ int) ([]match.Summary, error) {
		switch playerID {
		case "throttled":
			return nil, &RateLimitError{Wait: time.Second}
		case "broken":
			return nil, errors.New("connection reset")
		case "gone":
			return nil, ErrNotFound
		default:
			return []match.Summary{{MatchID: "m", ChampionID: 19, Win: true, Kills: 2, DurationSeconds: 600}}, nil
		}
	})

	svc := NewMatchViewService(stubResolver{handle: ashe99}, stubLocator{lineup: lineup}, history, nil, nil,
		MatchViewConfig{Workers: 2}, logging.NewNop())
	view, err := svc.BuildView(context.Background(), "Ashe99")
	require.NoError(t, err)
	require.Len(t, view.Reports, 5)

	assert.True(t, view.Reports[0].IsAvailable())
	want := []performance.UnavailableReason{
		performance.ReasonRateLimited,
		performance.ReasonFetchFailed,
		performance.ReasonNoData,
		performance.ReasonNoData,
	}
	for i, reason := range want {
		r := view.Reports[i+1]
		require.False(t, r.IsAvailable())
		assert.Equal(t, reason, r.Unavailable.Reason, "participant %d", i+1)
	}
}

func TestMatchViewService_OrderIndependentOfCompletion(t *testing.T) {
	t.Parallel()

	participants := make([]match.Participant, 10)
	for i := range participants {
		side := match.SideBlue
		if i >= 5 {
			side = match.SideRed
		}
		participants[i] = match.Participant{PlayerID: fmt.Sprintf("p%d", i), ChampionID: 19, TeamID: side, Slot: i % 5}
	}
	lineup := liveLineup(participants...)

	history := historyFunc(func(ctx context.Context, _ string, _ int) ([]match.Summary, error) {
		select {
		case <-time.After(time.Duration(rand.Intn(15)) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return nil, nil
	})
	svc := NewMatchViewService(stubResolver{handle: ashe99}, stubLocator{lineup: lineup}, history, nil, nil,
		MatchViewConfig{Workers: 5}, logging.NewNop())

	for run := 0; run < 5; run++ {
		view, err := svc.BuildView(context.Background(), "Ashe99")
		require.NoError(t, err)
		require.Len(t, view.Reports, len(participants))
		for i, r := range view.Reports {
			assert.Equal(t, lineup.Participants[i].PlayerID, r.Participant.PlayerID)
		}
	}
}

func TestMatchViewService_DeadlineReportsTimeout(t *testing.T) {
	t.Parallel()

	lineup := liveLineup(
		match.Participant{PlayerID: "fast", ChampionID: 19, TeamID: match.SideBlue, Slot: 0},
		match.Participant{PlayerID: "stuck", ChampionID: 19, TeamID: match.SideBlue, Slot: 1},
	)
	release := make(chan struct{})
	defer close(release)

	history := historyFunc(func(ctx context.Context, playerID string, _ int) ([]match.Summary, error) {
		if playerID == "stuck" {
			<-release
			return nil, nil
		}
		return nil, nil
	})
	svc := NewMatchViewService(stubResolver{handle: ashe99}, stubLocator{lineup: lineup}, history, nil, nil,
		MatchViewConfig{Deadline: 50 * time.Millisecond}, logging.NewNop())

	started := time.Now()
	view, err := svc.BuildView(context.Background(), "Ashe99")
	require.NoError(t, err)
	assert.Less(t, time.Since(started), time.Second)

	require.Len(t, view.Reports, 2)
	assert.True(t, view.Reports[0].IsAvailable())
	require.False(t, view.Reports[1].IsAvailable())
	assert.Equal(t, performance.ReasonTimeout, view.Reports[1].Unavailable.Reason)
}

func TestMatchViewService_DeadlineHoldsWhenWorkersAreSaturated(t *testing.T) {
	t.Parallel()

	lineup := liveLineup(
		match.Participant{PlayerID: "stuck", ChampionID: 19, TeamID: match.SideBlue, Slot: 0},
		match.Participant{PlayerID: "queued", ChampionID: 22, TeamID: match.SideBlue, Slot: 1},
		match.Participant{PlayerID: "late", ChampionID: 1, TeamID: match.SideRed, Slot: 0},
	)
	release := make(chan struct{})
	defer close(release)

	var started atomic.Int32
	history := historyFunc(func(_ context.Context, playerID string, _ int) ([]match.Summary, error) {
		started.Add(1)
		if playerID == "stuck" {
			<-release
		}
		return nil, nil
	})
	svc := NewMatchViewService(stubResolver{handle: ashe99}, stubLocator{lineup: lineup}, history, nil, nil,
		MatchViewConfig{Workers: 1, Deadline: 50 * time.Millisecond}, logging.NewNop())

	begin := time.Now()
	view, err := svc.BuildView(context.Background(), "Ashe99")
	require.NoError(t, err)
	assert.Less(t, time.Since(begin), time.Second)

	require.Len(t, view.Reports, 3)
	for i, r := range view.Reports {
		assert.Equal(t, lineup.Participants[i].PlayerID, r.Participant.PlayerID)
		require.False(t, r.IsAvailable())
		assert.Equal(t, performance.ReasonTimeout, r.Unavailable.Reason)
	}
	assert.Equal(t, int32(1), started.Load())
}

func TestMatchViewService_PerformanceCacheSkipsRefetch(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	history := historyFunc(func(context.Context, string, int) ([]match.Summary, error) {
		calls.Add(1)
		return []match.Summary{{MatchID: "m", ChampionID: 19, Win: true, DurationSeconds: 600}}, nil
	})
	lineup := liveLineup(match.Participant{PlayerID: "other", ChampionID: 19, TeamID: match.SideBlue})
	store := cache.NewStore(0)

	svc := NewMatchViewService(stubResolver{handle: ashe99}, stubLocator{lineup: lineup}, history, nil, store,
		MatchViewConfig{MaxGames: 10, PerformanceTTL: time.Minute}, logging.NewNop())

	for i := 0; i < 3; i++ {
		view, err := svc.BuildView(context.Background(), "Ashe99")
		require.NoError(t, err)
		require.True(t, view.Reports[0].IsAvailable())
		assert.Equal(t, 1, view.Reports[0].Performance.Wins)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"perf:other:19:10"}, store.Keys("perf:"))
}

func TestClassifyParticipantError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, performance.ReasonTimeout, classifyParticipantError(ctx, fmt.Errorf("x: %w", ErrTimeout)))
	assert.Equal(t, performance.ReasonTimeout, classifyParticipantError(ctx, context.DeadlineExceeded))
	assert.Equal(t, performance.ReasonRateLimited, classifyParticipantError(ctx, &RateLimitError{}))
	assert.Equal(t, performance.ReasonNoData, classifyParticipantError(ctx, ErrNotFound))
	assert.Equal(t, performance.ReasonFetchFailed, classifyParticipantError(ctx, ErrUpstreamUnavailable))
}
