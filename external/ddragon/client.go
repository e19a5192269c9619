package ddragon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/rift-scout/internal/domain/champion"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL  = "https://ddragon.leagueoflegends.com"
	defaultLocale   = "en_US"
	defaultTTL      = 24 * time.Hour
	defaultTimeout  = 5 * time.Second
	catalogFlightID = "catalog"
)

var errUnexpectedStatus = crerr.New("data dragon unexpected status")

type ClientConfig struct {
	HTTPClient *fasthttp.Client
	BaseURL    string
	Locale     string
	TTL        time.Duration
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client serves the static champion catalog from Data Dragon, refreshed at most once per TTL.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	locale     string
	ttl        time.Duration
	timeout    time.Duration
	logger     *logging.Logger
	flight     singleflight.Group
	now        func() time.Time

	mu       sync.RWMutex
	byID     map[int]champion.Champion
	version  string
	loadedAt time.Time
}

var _ champion.Catalog = (*Client)(nil)

type championFile struct {
	Version string                   `json:"version"`
	Data    map[string]championEntry `json:"data"`
}

type championEntry struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "rift-scout",
			ReadTimeout:         10 * time.Second,
			MaxIdleConnDuration: time.Minute,
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = defaultLocale
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		locale:     locale,
		ttl:        ttl,
		timeout:    timeout,
		logger:     logger.Named("ddragon"),
		now:        time.Now,
	}
}

func (c *Client) Name(ctx context.Context, championID int) (string, bool, error) {
	byID, err := c.catalog(ctx)
	if err != nil {
		return "", false, err
	}
	entry, ok := byID[championID]
	if !ok {
		return "", false, nil
	}
	return entry.Name, true, nil
}

// Version is the catalog version currently loaded, or "" before the first load.
func (c *Client) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Client) catalog(ctx context.Context) (map[int]champion.Champion, error) {
	c.mu.RLock()
	byID, loadedAt := c.byID, c.loadedAt
	c.mu.RUnlock()
	if byID != nil && c.now().Sub(loadedAt) < c.ttl {
		return byID, nil
	}

	out, err, _ := c.flight.Do(catalogFlightID, func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		if byID != nil {
			c.logger.WarnContext(ctx, "champion catalog refresh failed, serving stale copy", "error", err)
			return byID, nil
		}
		return nil, err
	}
	return out.(map[int]champion.Champion), nil
}

func (c *Client) refresh(ctx context.Context) (map[int]champion.Champion, error) {
	var versions []string
	if err := c.getJSON(ctx, "/api/versions.json", &versions); err != nil {
		return nil, fmt.Errorf("fetch versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, crerr.New("data dragon returned no versions")
	}
	version := versions[0]

	var file championFile
	if err := c.getJSON(ctx, fmt.Sprintf("/cdn/%s/data/%s/champion.json", version, c.locale), &file); err != nil {
		return nil, fmt.Errorf("fetch champion list version=%s: %w", version, err)
	}

	byID := make(map[int]champion.Champion, len(file.Data))
	for _, entry := range file.Data {
		id, err := strconv.Atoi(entry.Key)
		if err != nil || id <= 0 {
			continue
		}
		byID[id] = champion.Champion{ID: id, Key: entry.ID, Name: entry.Name}
	}

	c.mu.Lock()
	c.byID = byID
	c.version = version
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "champion catalog loaded", "version", version, "champions", len(byID))
	return byID, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return crerr.Wrapf(err, "data dragon %s", path)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return crerr.Wrapf(errUnexpectedStatus, "data dragon %s: status=%d", path, status)
	}
	if err := sonic.Unmarshal(resp.Body(), target); err != nil {
		return crerr.Wrapf(err, "data dragon %s: decode payload", path)
	}
	return nil
}
