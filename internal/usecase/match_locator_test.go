package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/rift-scout/internal/domain/match"
	championmock "github.com/riskibarqy/rift-scout/internal/mocks/domain/champion"
	matchmock "github.com/riskibarqy/rift-scout/internal/mocks/domain/match"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMatchLocator_LiveGameOrderedBySideThenSlot(t *testing.T) {
	t.Parallel()

	live := matchmock.NewLiveGameSource(t)
	history := matchmock.NewHistorySource(t)
	catalog := championmock.NewCatalog(t)

	live.On("ActiveGameByPlayer", mock.Anything, "puuid-ashe").Return(match.LiveGame{
		GameID: 4821003311,
		Participants: []match.Participant{
			{PlayerID: "r1", ChampionID: 19, TeamID: match.SideRed, Slot: 0},
			{PlayerID: "b2", ChampionID: 22, TeamID: match.SideBlue, Slot: 1},
			{PlayerID: "puuid-ashe", ChampionID: 22, TeamID: match.SideBlue, Slot: 0},
		},
	}, true, nil).Once()
	catalog.On("Name", mock.Anything, 19).Return("Warwick", true, nil)
	catalog.On("Name", mock.Anything, 22).Return("Ashe", true, nil)

	locator := NewMatchLocator(live, history, catalog, fastRetry(), logging.NewNop())
	got, err := locator.Locate(context.Background(), "puuid-ashe")

	require.NoError(t, err)
	assert.True(t, got.IsLive)
	assert.Equal(t, "4821003311", got.MatchID)
	require.Len(t, got.Participants, 3)
	assert.Equal(t, []string{"puuid-ashe", "b2", "r1"}, []string{
		got.Participants[0].PlayerID, got.Participants[1].PlayerID, got.Participants[2].PlayerID,
	})
	assert.Equal(t, "Ashe", got.Participants[0].ChampionName)
	assert.Equal(t, "Warwick", got.Participants[2].ChampionName)
}

func TestMatchLocator_FallsBackToMostRecentMatch(t *testing.T) {
	t.Parallel()

	live := matchmock.NewLiveGameSource(t)
	history := matchmock.NewHistorySource(t)

	live.On("ActiveGameByPlayer", mock.Anything, "puuid-ashe").Return(match.LiveGame{}, false, nil).Once()
	history.On("ListMatchIDs", mock.Anything, "puuid-ashe", 0, 1).Return([]string{"NA1_500"}, nil).Once()
	history.On("GetMatch", mock.Anything, "NA1_500").Return(match.Match{
		ID:        "NA1_500",
		StartedAt: time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC),
		Players: []match.PlayerResult{
			{Participant: match.Participant{PlayerID: "r", ChampionID: 19, ChampionName: "Warwick", TeamID: match.SideRed, Slot: 6}},
			{Participant: match.Participant{PlayerID: "puuid-ashe", ChampionID: 22, ChampionName: "Ashe", TeamID: match.SideBlue, Slot: 1}},
		},
	}, true, nil).Once()

	locator := NewMatchLocator(live, history, nil, fastRetry(), logging.NewNop())
	got, err := locator.Locate(context.Background(), "puuid-ashe")

	require.NoError(t, err)
	assert.False(t, got.IsLive)
	assert.Equal(t, "NA1_500", got.MatchID)
	require.Len(t, got.Participants, 2)
	assert.Equal(t, "puuid-ashe", got.Participants[0].PlayerID)
	assert.Equal(t, "r", got.Participants[1].PlayerID)
}

func TestMatchLocator_NoLiveNoHistory(t *testing.T) {
	t.Parallel()

	live := matchmock.NewLiveGameSource(t)
	history := matchmock.NewHistorySource(t)

	live.On("ActiveGameByPlayer", mock.Anything, "fresh").Return(match.LiveGame{}, false, nil).Once()
	history.On("ListMatchIDs", mock.Anything, "fresh", 0, 1).Return([]string{}, nil).Once()

	locator := NewMatchLocator(live, history, nil, fastRetry(), logging.NewNop())
	_, err := locator.Locate(context.Background(), "fresh")

	require.ErrorIs(t, err, ErrNoMatchHistory)
}

func TestMatchLocator_LiveCheckFailureIsFatal(t *testing.T) {
	t.Parallel()

	live := matchmock.NewLiveGameSource(t)
	history := matchmock.NewHistorySource(t)

	live.On("ActiveGameByPlayer", mock.Anything, "puuid-ashe").
		Return(match.LiveGame{}, false, ErrUpstreamUnavailable).
		Times(3)

	locator := NewMatchLocator(live, history, nil, fastRetry(), logging.NewNop())
	_, err := locator.Locate(context.Background(), "puuid-ashe")

	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	history.AssertNotCalled(t, "ListMatchIDs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchLocator_CatalogFailureLeavesNamesEmpty(t *testing.T) {
	t.Parallel()

	live := matchmock.NewLiveGameSource(t)
	catalog := championmock.NewCatalog(t)

	live.On("ActiveGameByPlayer", mock.Anything, "p").Return(match.LiveGame{
		GameID:       1,
		Participants: []match.Participant{{PlayerID: "p", ChampionID: 19, TeamID: match.SideBlue}},
	}, true, nil).Once()
	catalog.On("Name", mock.Anything, 19).Return("", false, errors.New("cdn down")).Once()

	locator := NewMatchLocator(live, matchmock.NewHistorySource(t), catalog, fastRetry(), logging.NewNop())
	got, err := locator.Locate(context.Background(), "p")

	require.NoError(t, err)
	assert.Empty(t, got.Participants[0].ChampionName)
}
