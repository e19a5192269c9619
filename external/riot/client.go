package riot

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/rift-scout/internal/domain/account"
	"github.com/riskibarqy/rift-scout/internal/domain/match"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/riskibarqy/rift-scout/internal/platform/resilience"
	"github.com/riskibarqy/rift-scout/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultPlatform     = "na1"
	defaultRegion       = "americas"
	defaultTimeout      = 5 * time.Second
	defaultRetryAfter   = time.Second
	headerToken         = "X-Riot-Token"
	headerAppRateLimit  = "X-App-Rate-Limit"
	headerRateLimitType = "X-Rate-Limit-Type"
	headerRetryAfter    = "Retry-After"
	maxLoggedBodyBytes  = 240
)

type ClientConfig struct {
	HTTPClient *fasthttp.Client
	APIKey     string
	// Platform routes summoner, spectator and mastery calls (na1, euw1, ...).
	Platform string
	// Region routes account and match calls (americas, europe, asia, sea).
	Region          string
	PlatformBaseURL string
	RegionalBaseURL string
	Timeout         time.Duration
	Limiter         *resilience.Limiter
	CircuitBreaker  resilience.CircuitBreakerConfig
	Logger          *logging.Logger
}

// Client talks to the Riot Games API. Every call goes through one shared limiter and
// circuit breaker, so concurrent callers see a single rate budget.
type Client struct {
	httpClient  *fasthttp.Client
	apiKey      string
	platformURL string
	regionalURL string
	timeout     time.Duration
	limiter     *resilience.Limiter
	breaker     *resilience.CircuitBreaker
	logger      *logging.Logger
}

var (
	_ account.Directory     = (*Client)(nil)
	_ account.MasterySource = (*Client)(nil)
	_ match.LiveGameSource  = (*Client)(nil)
	_ match.HistorySource   = (*Client)(nil)
)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                   "rift-scout",
			MaxConnsPerHost:        64,
			ReadTimeout:            10 * time.Second,
			WriteTimeout:           10 * time.Second,
			MaxIdleConnDuration:    time.Minute,
			DisablePathNormalizing: true,
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = resilience.NewLimiter(0, 1)
	}

	platform := strings.ToLower(strings.TrimSpace(cfg.Platform))
	if platform == "" {
		platform = defaultPlatform
	}
	region := strings.ToLower(strings.TrimSpace(cfg.Region))
	if region == "" {
		region = defaultRegion
	}

	return &Client{
		httpClient:  httpClient,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		platformURL: baseURLOr(cfg.PlatformBaseURL, platform),
		regionalURL: baseURLOr(cfg.RegionalBaseURL, region),
		timeout:     timeout,
		limiter:     limiter,
		breaker:     resilience.NewCircuitBreaker("riot", cfg.CircuitBreaker),
		logger:      logger.Named("riot"),
	}
}

func baseURLOr(explicit, routing string) string {
	if base := strings.TrimRight(strings.TrimSpace(explicit), "/"); base != "" {
		return base
	}
	return "https://" + routing + ".api.riotgames.com"
}

// Breaker exposes the client's breaker so the app can observe transitions.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

func (c *Client) Limiter() *resilience.Limiter {
	return c.limiter
}

// FindByName resolves "Name#TAG" through account-v1 and bare names through summoner-v4.
func (c *Client) FindByName(ctx context.Context, displayName string) (account.Handle, bool, error) {
	ctx, span := startSpan(ctx, "riot.Client.FindByName")
	defer span.End()

	if gameName, tagLine, ok := account.SplitRiotID(displayName); ok {
		var acc accountDTO
		path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s", url.PathEscape(gameName), url.PathEscape(tagLine))
		found, err := c.getJSON(ctx, c.regionalURL, path, nil, &acc)
		if err != nil || !found {
			return account.Handle{}, found, err
		}

		var summoner summonerDTO
		path = "/lol/summoner/v4/summoners/by-puuid/" + url.PathEscape(acc.PUUID)
		found, err = c.getJSON(ctx, c.platformURL, path, nil, &summoner)
		if err != nil || !found {
			return account.Handle{}, found, err
		}
		if summoner.PUUID == "" {
			summoner.PUUID = acc.PUUID
		}
		return summoner.toHandle(acc.GameName + "#" + acc.TagLine), true, nil
	}

	var summoner summonerDTO
	path := "/lol/summoner/v4/summoners/by-name/" + url.PathEscape(account.NormalizeName(displayName))
	found, err := c.getJSON(ctx, c.platformURL, path, nil, &summoner)
	if err != nil || !found {
		return account.Handle{}, found, err
	}
	return summoner.toHandle(""), true, nil
}

func (c *Client) TotalMasteryScore(ctx context.Context, playerID string) (int, error) {
	ctx, span := startSpan(ctx, "riot.Client.TotalMasteryScore")
	defer span.End()

	var score int
	found, err := c.getJSON(ctx, c.platformURL, "/lol/champion-mastery/v4/scores/by-puuid/"+url.PathEscape(playerID), nil, &score)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return score, nil
}

func (c *Client) ActiveGameByPlayer(ctx context.Context, playerID string) (match.LiveGame, bool, error) {
	ctx, span := startSpan(ctx, "riot.Client.ActiveGameByPlayer")
	defer span.End()

	var game activeGameDTO
	found, err := c.getJSON(ctx, c.platformURL, "/lol/spectator/v5/active-games/by-summoner/"+url.PathEscape(playerID), nil, &game)
	if err != nil || !found {
		return match.LiveGame{}, false, err
	}
	return game.toLiveGame(), true, nil
}

func (c *Client) ListMatchIDs(ctx context.Context, playerID string, start, count int) ([]string, error) {
	ctx, span := startSpan(ctx, "riot.Client.ListMatchIDs")
	defer span.End()

	if start < 0 {
		start = 0
	}
	query := url.Values{}
	query.Set("start", strconv.Itoa(start))
	query.Set("count", strconv.Itoa(count))

	var ids []string
	found, err := c.getJSON(ctx, c.regionalURL, fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids", url.PathEscape(playerID)), query, &ids)
	if err != nil {
		return nil, err
	}
	if !found || ids == nil {
		return []string{}, nil
	}
	return ids, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (match.Match, bool, error) {
	ctx, span := startSpan(ctx, "riot.Client.GetMatch")
	defer span.End()

	var detail matchDTO
	found, err := c.getJSON(ctx, c.regionalURL, "/lol/match/v5/matches/"+url.PathEscape(matchID), nil, &detail)
	if err != nil || !found {
		return match.Match{}, false, err
	}
	if detail.Metadata.MatchID == "" {
		detail.Metadata.MatchID = matchID
	}
	return detail.toMatch(), true, nil
}

// getJSON issues one GET. found is false on 404. It never retries; callers own the retry policy.
func (c *Client) getJSON(ctx context.Context, baseURL, path string, query url.Values, target any) (bool, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "riot circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return false, crerr.Wrapf(usecase.ErrUpstreamUnavailable, "riot %s: %v", path, err)
	}

	found, err := c.do(ctx, baseURL, path, query, target)
	c.breaker.Record(err, isCircuitFailure)
	return found, err
}

func (c *Client) do(ctx context.Context, baseURL, path string, query url.Values, target any) (bool, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return false, crerr.Wrapf(err, "riot %s: wait for rate limit", path)
	}

	fullURL := baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(headerToken, c.apiKey)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	started := time.Now()
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		if ctx.Err() != nil {
			return false, crerr.Wrapf(ctx.Err(), "riot %s", path)
		}
		if stderrors.Is(err, fasthttp.ErrTimeout) {
			return false, crerr.Wrapf(usecase.ErrTimeout, "riot %s: %s", path, c.redact(err.Error()))
		}
		return false, crerr.Wrapf(usecase.ErrUpstreamUnavailable, "riot %s: send request: %s", path, c.redact(err.Error()))
	}

	c.limiter.ObserveWindows(string(resp.Header.Peek(headerAppRateLimit)))
	status := resp.StatusCode()
	c.logger.DebugContext(ctx, "riot request",
		"path", path,
		"status", status,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	switch {
	case status >= 200 && status < 300:
		if err := sonic.Unmarshal(resp.Body(), target); err != nil {
			return false, crerr.Wrapf(usecase.ErrUpstreamFailure, "riot %s: decode payload: %v", path, err)
		}
		return true, nil
	case status == fasthttp.StatusNotFound:
		return false, nil
	case status == fasthttp.StatusTooManyRequests:
		wait := parseRetryAfter(string(resp.Header.Peek(headerRetryAfter)))
		c.limiter.BackOff(wait)
		scope := string(resp.Header.Peek(headerRateLimitType))
		c.logger.WarnContext(ctx, "riot rate limited", "path", path, "retry_after", wait.String(), "scope", scope)
		return false, &usecase.RateLimitError{Wait: wait, Scope: scope}
	case status >= 500:
		return false, crerr.Wrapf(usecase.ErrUpstreamUnavailable, "riot %s: status=%d body=%s", path, status, abbreviateBody(resp.Body()))
	default:
		c.logger.WarnContext(ctx, "riot request rejected", "path", path, "status", status)
		return false, crerr.Wrapf(usecase.ErrUpstreamFailure, "riot %s: status=%d body=%s", path, status, abbreviateBody(resp.Body()))
	}
}

// isCircuitFailure counts transport failures and 5xx. Throttling and 4xx mean the upstream is healthy.
func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, usecase.ErrUpstreamUnavailable) || stderrors.Is(err, usecase.ErrTimeout)
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := time.Parse(time.RFC1123, value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return defaultRetryAfter
}

func (c *Client) redact(text string) string {
	if c.apiKey == "" {
		return text
	}
	return strings.ReplaceAll(text, c.apiKey, "REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= maxLoggedBodyBytes {
		return text
	}
	return text[:maxLoggedBodyBytes] + "..."
}
