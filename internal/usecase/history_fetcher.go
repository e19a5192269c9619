package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/rift-scout/internal/domain/match"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/riskibarqy/rift-scout/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"
)

// MaxHistoryGames is the largest page the match-ids endpoint serves. No pagination happens beyond it.
const MaxHistoryGames = 100

const defaultHistoryLoadTimeout = 15 * time.Second

type HistoryFetcherConfig struct {
	CacheTTL      time.Duration
	Retry         resilience.RetryPolicy
	DetailWorkers int
	// LoadTimeout bounds a shared load, which outlives any single caller's context.
	LoadTimeout time.Duration
}

// HistoryFetcher loads a bounded window of a player's completed matches.
type HistoryFetcher struct {
	source        match.HistorySource
	cache         CacheStore
	cacheTTL      time.Duration
	retry         resilience.RetryPolicy
	detailWorkers int
	loadTimeout   time.Duration
	flight        singleflight.Group
	logger        *logging.Logger
}

func NewHistoryFetcher(source match.HistorySource, cache CacheStore, cfg HistoryFetcherConfig, logger *logging.Logger) *HistoryFetcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cache == nil {
		cache = noopCache{}
	}
	workers := cfg.DetailWorkers
	if workers < 1 {
		workers = 4
	}
	loadTimeout := cfg.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = defaultHistoryLoadTimeout
	}
	return &HistoryFetcher{
		source:        source,
		cache:         cache,
		cacheTTL:      cfg.CacheTTL,
		retry:         resilience.NormalizeRetryPolicy(cfg.Retry),
		detailWorkers: workers,
		loadTimeout:   loadTimeout,
		logger:        logger,
	}
}

// FetchHistory returns up to maxGames summaries for playerID, newest first.
// Rate limiting that outlasts the retry budget surfaces as ErrRateLimited.
func (f *HistoryFetcher) FetchHistory(ctx context.Context, playerID string, maxGames int) ([]match.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryFetcher.FetchHistory")
	defer span.End()

	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if maxGames <= 0 {
		return nil, fmt.Errorf("%w: max games must be > 0", ErrInvalidInput)
	}
	if maxGames > MaxHistoryGames {
		maxGames = MaxHistoryGames
	}

	key := historyCacheKey(playerID, maxGames)
	if cached, ok := getCached[[]match.Summary](ctx, f.cache, key); ok {
		return cached, nil
	}

	// Concurrent viewers share one load. It runs detached so one caller giving up
	// does not fail the others; each caller still stops waiting at its own deadline.
	ch := f.flight.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.loadTimeout)
		defer cancel()
		return f.load(loadCtx, playerID, maxGames)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch history player_id=%s: %w", playerID, ctx.Err())
	}
	if res.Err != nil {
		return nil, fmt.Errorf("fetch history player_id=%s: %w", playerID, res.Err)
	}
	if res.Shared {
		f.logger.DebugContext(ctx, "history fetch shared with concurrent caller", "player_id", playerID)
	}

	history, _ := res.Val.([]match.Summary)
	out := make([]match.Summary, len(history))
	copy(out, history)
	return out, nil
}

func (f *HistoryFetcher) load(ctx context.Context, playerID string, maxGames int) ([]match.Summary, error) {
	ids, err := resilience.Retry(ctx, f.retry, isRetryable, func(ctx context.Context, _ int) ([]string, error) {
		return f.source.ListMatchIDs(ctx, playerID, 0, maxGames)
	})
	if err != nil {
		return nil, fmt.Errorf("list match ids: %w", err)
	}
	if len(ids) > maxGames {
		ids = ids[:maxGames]
	}

	slots := make([]*match.Summary, len(ids))
	details := pool.New().
		WithMaxGoroutines(f.detailWorkers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for i, matchID := range ids {
		details.Go(func(ctx context.Context) error {
			res, err := resilience.Retry(ctx, f.retry, isRetryable, func(ctx context.Context, _ int) (matchLookup, error) {
				m, found, err := f.source.GetMatch(ctx, matchID)
				return matchLookup{match: m, found: found}, err
			})
			if err != nil {
				return fmt.Errorf("get match %s: %w", matchID, err)
			}
			if !res.found {
				f.logger.DebugContext(ctx, "match missing upstream, skipping", "match_id", matchID)
				return nil
			}
			if summary, ok := res.match.SummaryFor(playerID); ok {
				slots[i] = &summary
			}
			return nil
		})
	}
	if err := details.Wait(); err != nil {
		return nil, err
	}

	history := make([]match.Summary, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			history = append(history, *s)
		}
	}
	match.SortNewestFirst(history)

	putCached(ctx, f.cache, historyCacheKey(playerID, maxGames), history, f.cacheTTL)
	return history, nil
}
