package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/rift-scout/internal/domain/account"
	"github.com/riskibarqy/rift-scout/internal/domain/match"
	"github.com/riskibarqy/rift-scout/internal/domain/performance"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const (
	defaultMatchViewGames    = 20
	defaultMatchViewWorkers  = 8
	maxMatchViewWorkers      = 16
	defaultMatchViewDeadline = 8 * time.Second
)

type MatchViewConfig struct {
	MaxGames       int
	Workers        int
	Deadline       time.Duration
	PerformanceTTL time.Duration
}

// RecentChampion is the champion the subject played most recently.
type RecentChampion struct {
	ChampionID   int
	ChampionName string
	PlayedAt     time.Time
}

// MatchView is the per-participant performance board for one located match.
type MatchView struct {
	Subject        account.Handle
	MatchID        string
	IsLiveMatch    bool
	RecentChampion RecentChampion
	MasteryScore   int
	Reports        []performance.ParticipantReport
}

type accountResolver interface {
	Resolve(ctx context.Context, displayName string) (account.Handle, error)
}

type matchLocator interface {
	Locate(ctx context.Context, playerID string) (match.Lineup, error)
}

type historyFetcher interface {
	FetchHistory(ctx context.Context, playerID string, maxGames int) ([]match.Summary, error)
}

// MatchViewService resolves a player, locates their match and summarizes every participant.
type MatchViewService struct {
	resolver accountResolver
	locator  matchLocator
	history  historyFetcher
	mastery  account.MasterySource
	cache    CacheStore
	cfg      MatchViewConfig
	logger   *logging.Logger
}

// NewMatchViewService builds the orchestrator. mastery and cache may be nil.
func NewMatchViewService(
	resolver accountResolver,
	locator matchLocator,
	history historyFetcher,
	mastery account.MasterySource,
	cache CacheStore,
	cfg MatchViewConfig,
	logger *logging.Logger,
) *MatchViewService {
	if logger == nil {
		logger = logging.Default()
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &MatchViewService{
		resolver: resolver,
		locator:  locator,
		history:  history,
		mastery:  mastery,
		cache:    cache,
		cfg:      normalizeMatchViewConfig(cfg),
		logger:   logger,
	}
}

func normalizeMatchViewConfig(cfg MatchViewConfig) MatchViewConfig {
	if cfg.MaxGames <= 0 {
		cfg.MaxGames = defaultMatchViewGames
	}
	if cfg.MaxGames > MaxHistoryGames {
		cfg.MaxGames = MaxHistoryGames
	}
	switch {
	case cfg.Workers <= 0:
		cfg.Workers = defaultMatchViewWorkers
	case cfg.Workers > maxMatchViewWorkers:
		cfg.Workers = maxMatchViewWorkers
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = defaultMatchViewDeadline
	}
	return cfg
}

func (s *MatchViewService) BuildView(ctx context.Context, displayName string) (MatchView, error) {
	return s.BuildViewWithGames(ctx, displayName, s.cfg.MaxGames)
}

// BuildViewWithGames is BuildView with a per-request history window.
// Only Resolve and Locate failures are returned; participant failures stay in their report.
func (s *MatchViewService) BuildViewWithGames(ctx context.Context, displayName string, games int) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchViewService.BuildView")
	defer span.End()

	if games <= 0 {
		games = s.cfg.MaxGames
	}
	if games > MaxHistoryGames {
		games = MaxHistoryGames
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Deadline)
	defer cancel()

	started := time.Now()
	subject, err := s.resolver.Resolve(ctx, displayName)
	if err != nil {
		return MatchView{}, fmt.Errorf("resolve %q: %w", displayName, err)
	}

	lineup, err := s.locator.Locate(ctx, subject.PlayerID)
	if err != nil {
		return MatchView{}, fmt.Errorf("locate match for %s: %w", subject.DisplayName, err)
	}

	view := MatchView{
		Subject:     subject,
		MatchID:     lineup.MatchID,
		IsLiveMatch: lineup.IsLive,
	}

	var side conc.WaitGroup
	var masteryScore int
	if s.mastery != nil {
		side.Go(func() {
			score, err := s.mastery.TotalMasteryScore(ctx, subject.PlayerID)
			if err != nil {
				s.logger.WarnContext(ctx, "mastery score unavailable", "player_id", subject.PlayerID, "error", err)
				return
			}
			masteryScore = score
		})
	}

	board, err := s.summarize(ctx, subject, lineup.Participants, games)
	side.Wait()
	if err != nil {
		return MatchView{}, err
	}

	view.Reports = board.reports
	view.MasteryScore = masteryScore
	view.RecentChampion = board.recentChampion(subject.PlayerID, lineup.Participants)

	s.logger.InfoContext(ctx, "match view built",
		"player_id", subject.PlayerID,
		"match_id", view.MatchID,
		"live", view.IsLiveMatch,
		"participants", len(view.Reports),
		"unavailable", board.unavailableCount(),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return view, nil
}

// reportBoard collects reports into their Locate slot. Once sealed, late writes are dropped.
type reportBoard struct {
	mu      sync.Mutex
	reports []performance.ParticipantReport
	settled []bool
	sealed  bool
	recent  *match.Summary
}

func newReportBoard(n int) *reportBoard {
	return &reportBoard{
		reports: make([]performance.ParticipantReport, n),
		settled: make([]bool, n),
	}
}

func (b *reportBoard) put(i int, report performance.ParticipantReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed || b.settled[i] {
		return
	}
	b.reports[i] = report
	b.settled[i] = true
}

func (b *reportBoard) putRecent(s match.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		return
	}
	b.recent = &s
}

// seal fills every unsettled slot with a timeout report and freezes the board.
func (b *reportBoard) seal(participants []match.Participant) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		return
	}
	for i, ok := range b.settled {
		if !ok {
			b.reports[i] = performance.Unavailablef(participants[i], performance.ReasonTimeout, "deadline exceeded before history was fetched")
			b.settled[i] = true
		}
	}
	b.sealed = true
}

func (b *reportBoard) unavailableCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.reports {
		if !r.IsAvailable() {
			n++
		}
	}
	return n
}

func (b *reportBoard) recentChampion(playerID string, participants []match.Participant) RecentChampion {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recent != nil {
		return RecentChampion{
			ChampionID:   b.recent.ChampionID,
			ChampionName: b.recent.ChampionName,
			PlayedAt:     b.recent.PlayedAt,
		}
	}
	for _, p := range participants {
		if p.PlayerID == playerID {
			return RecentChampion{ChampionID: p.ChampionID, ChampionName: p.ChampionName}
		}
	}
	return RecentChampion{}
}

func (s *MatchViewService) summarize(
	ctx context.Context,
	subject account.Handle,
	participants []match.Participant,
	games int,
) (*reportBoard, error) {
	board := newReportBoard(len(participants))
	if len(participants) == 0 {
		board.sealed = true
		return board, nil
	}

	pool, err := ants.NewPool(min(s.cfg.Workers, len(participants)))
	if err != nil {
		return nil, fmt.Errorf("create participant pool: %w", err)
	}
	defer pool.Release()

	// Submit blocks while every worker is busy, so dispatch runs beside the deadline wait.
	done := make(chan struct{})
	go func() {
		defer close(done)
		var workers sync.WaitGroup
		for i, participant := range participants {
			if ctx.Err() != nil {
				break
			}
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()
				defer func() {
					if rec := recover(); rec != nil {
						s.logger.ErrorContext(ctx, "participant summary panicked", "player_id", participant.PlayerID, "panic", rec)
						board.put(i, performance.Unavailablef(participant, performance.ReasonFetchFailed, "internal error"))
					}
				}()
				if ctx.Err() != nil {
					return
				}

				report, recent := s.summarizeParticipant(ctx, subject, participant, games)
				board.put(i, report)
				if recent != nil {
					board.putRecent(*recent)
				}
			}); err != nil {
				workers.Done()
				board.put(i, performance.Unavailablef(participant, performance.ReasonFetchFailed, "worker pool rejected task"))
			}
		}
		workers.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "match view deadline reached, abandoning unfinished participants",
			"player_id", subject.PlayerID, "error", ctx.Err())
	}
	board.seal(participants)
	return board, nil
}

func (s *MatchViewService) summarizeParticipant(
	ctx context.Context,
	subject account.Handle,
	participant match.Participant,
	games int,
) (performance.ParticipantReport, *match.Summary) {
	if participant.Bot || participant.PlayerID == "" {
		return performance.Unavailablef(participant, performance.ReasonNoData, "participant has no player id"), nil
	}

	isSubject := participant.PlayerID == subject.PlayerID
	key := performanceCacheKey(participant.PlayerID, participant.ChampionID, games)
	if !isSubject {
		if cached, ok := getCached[performance.ChampionPerformance](ctx, s.cache, key); ok {
			return performance.Available(participant, cached), nil
		}
	}

	history, err := s.history.FetchHistory(ctx, participant.PlayerID, games)
	if err != nil {
		reason := classifyParticipantError(ctx, err)
		s.logger.WarnContext(ctx, "participant history unavailable",
			"player_id", participant.PlayerID,
			"reason", string(reason),
			"error", err,
		)
		return performance.Unavailablef(participant, reason, err.Error()), nil
	}

	perf := performance.Aggregate(participant, history)
	putCached(ctx, s.cache, key, perf, s.cfg.PerformanceTTL)

	var recent *match.Summary
	if isSubject && len(history) > 0 {
		recent = &history[0]
	}
	return performance.Available(participant, perf), recent
}

func classifyParticipantError(ctx context.Context, err error) performance.UnavailableReason {
	switch {
	case errors.Is(err, ErrTimeout), isDeadline(ctx, err):
		return performance.ReasonTimeout
	case errors.Is(err, ErrRateLimited):
		return performance.ReasonRateLimited
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		return performance.ReasonNoData
	default:
		return performance.ReasonFetchFailed
	}
}
