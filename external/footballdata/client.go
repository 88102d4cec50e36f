package footballdata

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
	"github.com/jonboulle/clockwork"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/gameweek-draft/internal/domain/fixture"
	"github.com/riskibarqy/gameweek-draft/internal/platform/cache"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
	"github.com/riskibarqy/gameweek-draft/internal/platform/resilience"
	"github.com/riskibarqy/gameweek-draft/internal/usecase"
)

const (
	defaultBaseURL       = "https://api.football-data.org/v4"
	defaultCompetition   = "PL"
	defaultSeason        = 2025
	defaultTimeout       = 10 * time.Second
	defaultRetryBackoff  = time.Second
	defaultRetryAfter    = 11 * time.Second
	maxResponseBodyBytes = 6 << 20
	dateLayout           = "2006-01-02"
	rangeKeyPrefix       = "range:"
)

var errFootballDataTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	BaseURL        string
	Token          string
	Competition    string
	Season         int
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	CacheTTL       time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	Clock          clockwork.Clock
}

// Client reads Premier League fixtures from football-data.org and implements
// fixture.Provider.
type Client struct {
	httpClient   *fasthttp.Client
	baseURL      string
	token        string
	competition  string
	season       int
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	clock        clockwork.Clock
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	cache        *cache.Store[[]fixture.Fixture]
}

var _ fixture.Provider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	competition := strings.ToUpper(strings.TrimSpace(cfg.Competition))
	if competition == "" {
		competition = defaultCompetition
	}
	season := cfg.Season
	if season <= 0 {
		season = defaultSeason
	}

	return &Client{
		httpClient: &fasthttp.Client{
			Name:                "gameweek-draft",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBodyBytes,
		},
		baseURL:      baseURL,
		token:        strings.TrimSpace(cfg.Token),
		competition:  competition,
		season:       season,
		timeout:      timeout,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: retryBackoff,
		clock:        clock,
		logger:       logging.OrDefault(cfg.Logger),
		breaker:      resilience.NewCircuitBreaker(cfg.CircuitBreaker, clock),
		cache:        cache.NewStore[[]fixture.Fixture](cfg.CacheTTL, clock),
	}
}

func (c *Client) ListByGameweek(ctx context.Context, gameweek int) ([]fixture.Fixture, error) {
	if gameweek <= 0 {
		return nil, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}
	query := url.Values{}
	query.Set("season", strconv.Itoa(c.season))
	query.Set("matchday", strconv.Itoa(gameweek))

	return c.cache.GetOrLoad(ctx, c.gameweekKey(gameweek), func(ctx context.Context) ([]fixture.Fixture, error) {
		return c.fetchMatches(ctx, query)
	})
}

func (c *Client) gameweekKey(gameweek int) string {
	return fmt.Sprintf("gameweek:%d:%d", c.season, gameweek)
}

// Forget drops cached matches for gameweek and every cached date window, so
// the next read sees fresh results.
func (c *Client) Forget(ctx context.Context, gameweek int) {
	c.cache.Delete(ctx, c.gameweekKey(gameweek))
	c.cache.DeletePrefix(ctx, rangeKeyPrefix)
}

func (c *Client) ListByDateRange(ctx context.Context, from, to time.Time) ([]fixture.Fixture, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range end is before start", usecase.ErrInvalidInput)
	}
	dateFrom := from.UTC().Format(dateLayout)
	dateTo := to.UTC().Format(dateLayout)
	query := url.Values{}
	query.Set("dateFrom", dateFrom)
	query.Set("dateTo", dateTo)

	key := rangeKeyPrefix + dateFrom + ":" + dateTo
	return c.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]fixture.Fixture, error) {
		return c.fetchMatches(ctx, query)
	})
}

func (c *Client) fetchMatches(ctx context.Context, query url.Values) ([]fixture.Fixture, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: fixture provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := fmt.Sprintf("%s/competitions/%s/matches?%s", c.baseURL, url.PathEscape(c.competition), query.Encode())
	raw, found, err := c.executeRequest(ctx, fullURL)
	c.recordCircuitResult(err)
	if err != nil {
		return nil, err
	}
	if !found {
		return []fixture.Fixture{}, nil
	}

	var payload matchesEnvelope
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode matches payload: %w", usecase.ErrUpstream, err)
	}
	return mapMatches(payload.Matches), nil
}

// executeRequest returns found=false when the provider has nothing published
// for the query yet.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, bool, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, status, retryAfter, err := c.do(ctx, fullURL)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, false, ctxErr
			}
			lastErr = fmt.Errorf("%w: %w: send request: %s", usecase.ErrUpstream, errFootballDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		case status >= 200 && status < 300:
			return raw, true, nil
		case status == fasthttp.StatusBadRequest || status == fasthttp.StatusNotFound:
			return nil, false, nil
		case status == fasthttp.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: %w: provider status=%d", &usecase.RateLimitError{RetryAfter: retryAfter}, errFootballDataTransient, status)
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: %w: provider status=%d body=%s", usecase.ErrUpstream, errFootballDataTransient, status, abbreviateBody(raw))
		default:
			return nil, false, fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrUpstream, status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := c.clock.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false, ctx.Err()
		case <-timer.Chan():
		}
	}

	c.logger.WarnContext(ctx, "football-data request failed", "url", fullURL, "error", lastErr)
	return nil, false, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, int, time.Duration, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, 0, 0, ctx.Err()
		}
		timeout = min(timeout, remaining)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Auth-Token", c.token)

	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		return nil, 0, 0, err
	}
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), parseRetryAfter(string(resp.Header.Peek("Retry-After"))), nil
}

func (c *Client) recordCircuitResult(err error) {
	if err != nil && isTransient(err) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isTransient(err error) bool {
	return stderrors.Is(err, errFootballDataTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func parseRetryAfter(raw string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
