package oddsfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/courtsidehq/parlay-league/internal/platform/logging"
	"github.com/courtsidehq/parlay-league/internal/platform/resilience"
	"github.com/courtsidehq/parlay-league/internal/usecase"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultBaseURL     = "https://api.the-odds-api.com/v4"
	defaultSportKey    = "basketball_nba"
	defaultPropWorkers = 4

	gameMarkets = "h2h,spreads,totals"
	propMarkets = "player_points,player_rebounds,player_assists,player_threes,player_points_rebounds_assists"
)

var apiKeyParamRegex = regexp.MustCompile(`apiKey=[^&\s"']+`)
var errOddsFeedTransient = crerr.New("odds feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	SportKey       string
	APIKeys        []string
	Timeout        time.Duration
	MaxRetries     int
	PropWorkers    int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the upstream odds provider. Several API keys can be
// configured; the client rotates to the next key when the provider
// rejects the current one for auth or quota reasons.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	sportKey       string
	apiKeys        []string
	keyCursor      atomic.Int64
	maxRetries     int
	propWorkers    int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sportKey := strings.TrimSpace(cfg.SportKey)
	if sportKey == "" {
		sportKey = defaultSportKey
	}
	apiKeys := make([]string, 0, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			apiKeys = append(apiKeys, trimmed)
		}
	}
	propWorkers := cfg.PropWorkers
	if propWorkers < 1 {
		propWorkers = defaultPropWorkers
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		sportKey:       sportKey,
		apiKeys:        apiKeys,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		propWorkers:    propWorkers,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchGames returns the upcoming game board with h2h, spread and total
// markets. Records are left as raw maps; field casing varies by the
// provider's upstream book and is resolved by the normalizer.
func (c *Client) FetchGames(ctx context.Context) ([]odds.RawGame, error) {
	path := fmt.Sprintf("/sports/%s/odds", c.sportKey)
	query := map[string]string{
		"markets":    gameMarkets,
		"oddsFormat": "decimal",
	}

	var out []odds.RawGame
	if err := c.doJSON(ctx, path, query, &out); err != nil {
		return nil, fmt.Errorf("fetch games: %w", err)
	}
	return out, nil
}

// FetchPlayerProps returns the raw player prop quotes for one game.
func (c *Client) FetchPlayerProps(ctx context.Context, gameID string) ([]odds.RawPropQuote, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	path := fmt.Sprintf("/sports/%s/events/%s/odds", c.sportKey, url.PathEscape(gameID))
	query := map[string]string{
		"markets":    propMarkets,
		"oddsFormat": "decimal",
	}

	var envelope struct {
		Quotes []odds.RawPropQuote `json:"quotes"`
	}
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch player props game_id=%s: %w", gameID, err)
	}
	return envelope.Quotes, nil
}

// FetchPlayerPropsBatch fans prop fetches out over a bounded worker pool.
// Per-game failures are logged and skipped; one sick game does not sink
// the batch.
func (c *Client) FetchPlayerPropsBatch(ctx context.Context, gameIDs []string) (map[string][]odds.RawPropQuote, error) {
	if len(gameIDs) == 0 {
		return map[string][]odds.RawPropQuote{}, nil
	}

	pool, err := ants.NewPool(c.propWorkers)
	if err != nil {
		return nil, fmt.Errorf("create prop worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	out := make(map[string][]odds.RawPropQuote, len(gameIDs))

	var wg sync.WaitGroup
	for _, gameID := range gameIDs {
		gameID := gameID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			quotes, err := c.FetchPlayerProps(ctx, gameID)
			if err != nil {
				c.logger.WarnContext(ctx, "fetch player props failed, skipping game", "game_id", gameID, "error", err)
				return
			}
			mu.Lock()
			out[gameID] = quotes
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit prop fetch game_id=%s: %w", gameID, submitErr)
		}
	}
	wg.Wait()

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if len(c.apiKeys) == 0 {
		return fmt.Errorf("%w: no odds feed api keys configured", usecase.ErrDependencyUnavailable)
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "odds feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: odds provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	flightKey := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(flightKey, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, path, values)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errOddsFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, path string, values url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		apiKey := c.currentKey()
		reqValues := url.Values{}
		for key := range values {
			reqValues.Set(key, values.Get(key))
		}
		reqValues.Set("apiKey", apiKey)

		fullURL := c.baseURL + path + "?" + reqValues.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errOddsFeedTransient, sanitizeSensitiveText(err.Error(), c.apiKeys))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errOddsFeedTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isKeyRotationStatus(resp.StatusCode):
				rotated := c.rotateKey(apiKey)
				lastErr = fmt.Errorf("%w: provider rejected api key status=%d", errOddsFeedTransient, resp.StatusCode)
				c.logger.WarnContext(ctx, "odds feed api key rejected",
					"status", resp.StatusCode,
					"rotated", rotated,
					"url", redactAPIURL(fullURL),
				)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errOddsFeedTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "odds feed request failed", "path", path, "error", lastErr)
	return nil, lastErr
}

func (c *Client) currentKey() string {
	idx := int(c.keyCursor.Load()) % len(c.apiKeys)
	if idx < 0 {
		idx = 0
	}
	return c.apiKeys[idx]
}

// rotateKey advances the cursor past the rejected key. Compare-and-swap
// keeps concurrent rejections of the same key from skipping two slots.
func (c *Client) rotateKey(rejected string) bool {
	if len(c.apiKeys) < 2 {
		return false
	}
	current := c.keyCursor.Load()
	if c.apiKeys[int(current)%len(c.apiKeys)] != rejected {
		return false
	}
	return c.keyCursor.CompareAndSwap(current, current+1)
}

func isKeyRotationStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusTooManyRequests
}

func isRetryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout
}

func sanitizeSensitiveText(value string, keys []string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	for _, key := range keys {
		if key != "" {
			value = strings.ReplaceAll(value, key, "REDACTED")
		}
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apiKey=REDACTED")
}

func redactAPIURL(rawURL string) string {
	return apiKeyParamRegex.ReplaceAllString(rawURL, "apiKey=REDACTED")
}

func abbreviateBody(body []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

// SortedGameIDs gives batch callers a stable fan-out order.
func SortedGameIDs(byGame map[string][]odds.RawPropQuote) []string {
	out := make([]string, 0, len(byGame))
	for gameID := range byGame {
		out = append(out, gameID)
	}
	sort.Strings(out)
	return out
}
