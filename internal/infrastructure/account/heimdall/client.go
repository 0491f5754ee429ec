package heimdall

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/courtsidehq/parlay-league/internal/domain/user"
	"github.com/courtsidehq/parlay-league/internal/platform/resilience"
	"github.com/courtsidehq/parlay-league/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

const (
	principalCacheTTL        = 30 * time.Second
	principalCacheMaxEntries = 4096
)

var errHeimdallTransient = crerr.New("heimdall transient failure")

// Client verifies access tokens against the heimdall account service via
// token introspection. Verified principals are cached briefly so bursts of
// requests from the same session hit heimdall once.
type Client struct {
	httpClient     *http.Client
	introspectURL  string
	adminKey       string
	breaker        *resilience.CircuitBreaker
	breakerEnabled bool
	cache          *inMemoryPrincipalCache
	logger         *slog.Logger
}

func NewClient(
	httpClient *http.Client,
	baseURL string,
	introspectPath string,
	adminKey string,
	breakerCfg resilience.CircuitBreakerConfig,
	logger *slog.Logger,
) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	breakerCfg = resilience.NormalizeCircuitBreakerConfig(breakerCfg)

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(baseURL, introspectPath),
		adminKey:       adminKey,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		breakerEnabled: breakerCfg.Enabled,
		cache:          newInMemoryPrincipalCache(principalCacheTTL, principalCacheMaxEntries),
		logger:         logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := hashToken(token)
	if principal, ok := c.cache.Get(cacheKey); ok {
		return principal, nil
	}

	if c.breakerEnabled {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, fmt.Errorf("%w: account service circuit is open", usecase.ErrDependencyUnavailable)
		}
	}

	principal, err := c.introspect(ctx, token)
	if c.breakerEnabled {
		if isCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if crerr.Is(err, errHeimdallTransient) {
			return user.Principal{}, fmt.Errorf("%w: account service unreachable", usecase.ErrDependencyUnavailable)
		}
		return user.Principal{}, err
	}

	c.cache.Set(cacheKey, principal)
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := jsoniter.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-admin-key", c.adminKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, crerr.Wrapf(errHeimdallTransient, "request introspection: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		// A rejected admin key is a deployment problem, not the caller's.
		return user.Principal{}, fmt.Errorf("%w: introspection admin key rejected", usecase.ErrDependencyUnavailable)
	case resp.StatusCode >= http.StatusInternalServerError:
		return user.Principal{}, crerr.Wrapf(errHeimdallTransient, "introspection failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, crerr.Wrapf(errHeimdallTransient, "read introspect response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "heimdall introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("heimdall introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := jsoniter.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	displayName := strings.TrimSpace(decoded.DisplayName)
	if displayName == "" {
		displayName = decoded.UserID
	}

	return user.Principal{
		UserID:      decoded.UserID,
		DisplayName: displayName,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active      bool   `json:"active"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}
