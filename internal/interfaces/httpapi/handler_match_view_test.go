package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/rift-scout/internal/domain/account"
	"github.com/riskibarqy/rift-scout/internal/domain/match"
	"github.com/riskibarqy/rift-scout/internal/domain/performance"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/riskibarqy/rift-scout/internal/platform/resilience"
	"github.com/riskibarqy/rift-scout/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatchViews struct {
	view     usecase.MatchView
	err      error
	gotName  string
	gotGames int
	calls    int
}

func (f *fakeMatchViews) BuildViewWithGames(_ context.Context, displayName string, games int) (usecase.MatchView, error) {
	f.calls++
	f.gotName = displayName
	f.gotGames = games
	return f.view, f.err
}

func newTestRouter(views matchViewBuilder, upstream func() UpstreamStatus, checks map[string]HealthCheck) http.Handler {
	logger := logging.NewNop()
	return NewRouter(NewHandler(views, upstream, checks, logger), logger, true, []string{"*"})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sampleView() usecase.MatchView {
	warwick := match.Participant{PlayerID: "p-2", DisplayName: "Howl#EUW", ChampionID: 19, ChampionName: "Warwick", TeamID: match.SideRed, Slot: 0}
	bot := match.Participant{DisplayName: "Bot Annie", ChampionID: 1, ChampionName: "Annie", TeamID: match.SideRed, Slot: 1, Bot: true}
	ashe := match.Participant{PlayerID: "p-1", DisplayName: "Ashe 99#NA1", ChampionID: 22, ChampionName: "Ashe", TeamID: match.SideBlue, Slot: 0}

	return usecase.MatchView{
		Subject:      account.Handle{DisplayName: "Ashe 99#NA1", PlayerID: "p-1", AccountLevel: 187, ProfileIconID: 4568},
		MatchID:      "NA1_5000",
		IsLiveMatch:  true,
		MasteryScore: 431,
		RecentChampion: usecase.RecentChampion{
			ChampionID:   22,
			ChampionName: "Ashe",
			PlayedAt:     time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC),
		},
		Reports: []performance.ParticipantReport{
			performance.Available(ashe, performance.ChampionPerformance{ChampionID: 22, GamesPlayed: 4, Wins: 3, Losses: 1, WinRate: 0.75}),
			performance.Unavailablef(warwick, performance.ReasonRateLimited, "riot budget exhausted"),
			performance.Unavailablef(bot, performance.ReasonNoData, "bot participant"),
		},
	}
}

func TestGetMatchView_Success(t *testing.T) {
	t.Parallel()

	views := &fakeMatchViews{view: sampleView()}
	router := newTestRouter(views, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/summoners/Ashe%2099%23NA1/match-view?games=30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ashe 99#NA1", views.gotName)
	assert.Equal(t, 30, views.gotGames)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NA1_5000", data["matchId"])
	assert.Equal(t, true, data["isLiveMatch"])
	assert.EqualValues(t, 431, data["masteryScore"])

	recent, ok := data["recentChampion"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ashe", recent["championName"])

	participants, ok := data["participants"].([]any)
	require.True(t, ok)
	require.Len(t, participants, 3)

	first := participants[0].(map[string]any)
	assert.Equal(t, "blue", first["team"])
	perf := first["performance"].(map[string]any)
	assert.EqualValues(t, 4, perf["gamesPlayed"])
	assert.Nil(t, first["unavailable"])

	second := participants[1].(map[string]any)
	assert.Nil(t, second["performance"])
	assert.Equal(t, "rate_limited", second["unavailable"].(map[string]any)["reason"])

	third := participants[2].(map[string]any)
	assert.Equal(t, true, third["bot"])
	assert.Equal(t, "no_data", third["unavailable"].(map[string]any)["reason"])
}

func TestGetMatchView_DefaultsGamesWhenOmitted(t *testing.T) {
	t.Parallel()

	views := &fakeMatchViews{view: sampleView()}
	router := newTestRouter(views, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summoners/Ashe99/match-view", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, views.gotGames)
}

func TestGetMatchView_RejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
	}{
		{name: "non numeric games", path: "/v1/summoners/Ashe99/match-view?games=lots"},
		{name: "games above cap", path: "/v1/summoners/Ashe99/match-view?games=500"},
		{name: "negative games", path: "/v1/summoners/Ashe99/match-view?games=-3"},
		{name: "name too long", path: "/v1/summoners/" + strings.Repeat("a", 65) + "/match-view"},
		{name: "blank name", path: "/v1/summoners/%20/match-view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			views := &fakeMatchViews{}
			router := newTestRouter(views, nil, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, views.calls)
		})
	}
}

func TestGetMatchView_MapsFatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		status     int
		retryAfter string
	}{
		{name: "unknown player", err: fmt.Errorf("resolve: %w", usecase.ErrNotFound), status: http.StatusNotFound},
		{name: "no history", err: fmt.Errorf("locate: %w", usecase.ErrNoMatchHistory), status: http.StatusNotFound},
		{name: "rate limited", err: &usecase.RateLimitError{Wait: 3 * time.Second}, status: http.StatusTooManyRequests, retryAfter: "3"},
		{name: "breaker open", err: fmt.Errorf("%w: circuit open", usecase.ErrUpstreamUnavailable), status: http.StatusServiceUnavailable},
		{name: "deadline", err: usecase.ErrTimeout, status: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(&fakeMatchViews{err: tt.err}, nil, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summoners/Ashe99/match-view", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.retryAfter, rec.Header().Get("Retry-After"))
			errBody, ok := decodeBody(t, rec)["error"].(map[string]any)
			require.True(t, ok)
			assert.EqualValues(t, tt.status, errBody["code"])
		})
	}
}

func TestHealthz_ReportsDegradedDependency(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeMatchViews{}, nil, map[string]HealthCheck{
		"cache": func(context.Context) error { return errors.New("dial tcp: connection refused") },
		"riot":  func(context.Context) error { return nil },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "degraded", data["status"])
	checks := data["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["riot"])
	assert.Contains(t, checks["cache"], "connection refused")
}

func TestGetUpstreamStatus(t *testing.T) {
	t.Parallel()

	cooldown := time.Date(2026, 10, 19, 9, 0, 5, 0, time.UTC)
	router := newTestRouter(&fakeMatchViews{}, func() UpstreamStatus {
		return UpstreamStatus{
			BreakerState: resilience.CircuitStateOpen,
			Limiter: resilience.LimiterStats{
				Acquired:      42,
				Throttled:     2,
				CooldownUntil: cooldown,
				Windows:       []resilience.RateWindow{{Limit: 20, Seconds: 1}, {Limit: 100, Seconds: 120}},
			},
		}
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/system/upstream", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "open", data["breaker"])
	assert.EqualValues(t, 42, data["acquired"])
	assert.EqualValues(t, 2, data["throttled"])
	assert.Equal(t, "2026-10-19T09:00:05Z", data["cooldownUntil"])
	assert.Len(t, data["windows"], 2)
	assert.Nil(t, data["updatedAt"])
}

func TestRequestID_PropagatesCallerValue(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-abc", seen)
	assert.Equal(t, "req-abc", rec.Header().Get(headerRequestID))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, strings.Repeat("x", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Len(t, rec.Header().Get(headerRequestID), 36)
	assert.Equal(t, rec.Header().Get(headerRequestID), seen)
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summoners/x/match-view", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
