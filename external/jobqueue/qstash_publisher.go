// Package jobqueue publishes deferred settlement and week-maintenance
// jobs through Upstash QStash. QStash calls back into the API's internal
// job routes, so the queue never needs a worker process of its own.
package jobqueue

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/courtsidehq/parlay-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// errQueueTransient marks failures worth counting against the circuit
// breaker: network errors and retryable upstream statuses. A 4xx from a
// bad payload is the caller's bug and must not open the circuit.
var errQueueTransient = crerr.New("qstash transient failure")

const (
	defaultPublishTimeout = 10 * time.Second
	maxLoggedBodyBytes    = 4096
)

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher is the production JobQueue. Close-week and maintenance
// sweeps land back on this service via the forwarded internal job token.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *slog.Logger
	breaker          *resilience.CircuitBreaker
	circuitEnabled   bool
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *slog.Logger) *QStashPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &QStashPublisher{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		breaker:          resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled:   breakerCfg.Enabled,
	}
}

// Enqueue publishes one job. The payload is serialized as the callback
// body; delay defers delivery and deduplicationID collapses repeat
// publishes of the same logical job inside QStash's dedup window.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "job publish rejected by circuit breaker", "state", p.breaker.State())
			return fmt.Errorf("job queue is temporarily unavailable: %w", err)
		}
	}

	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}

	baseURL, err := checkBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := checkBaseURL(p.targetBaseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	targetURL := targetBaseURL + path
	publishURL := baseURL + "/v2/publish/" + targetURL

	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}
	bodyText := clipForLog(string(body), maxLoggedBodyBytes)
	preview := curlPreview(publishURL, path, delayHeader(delay), p.retries, deduplicationID, bodyText, p.internalJobToken != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("jobqueue.publish_url", publishURL),
			attribute.String("jobqueue.target_url", targetURL),
			attribute.String("jobqueue.path", path),
			attribute.String("jobqueue.request_body", bodyText),
			attribute.String("jobqueue.request_curl_preview", preview),
		)
	}
	p.logger.InfoContext(ctx, "publishing job", "job_path", path, "target_url", targetURL, "curl_preview", preview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create job publish request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if delay > 0 {
		req.Header.Set("Upstash-Delay", delayHeader(delay))
	}
	if dedup := strings.TrimSpace(deduplicationID); dedup != "" {
		req.Header.Set("Upstash-Deduplication-Id", dedup)
	}
	if p.internalJobToken != "" {
		req.Header.Set("Upstash-Forward-X-Internal-Job-Token", p.internalJobToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: publish job path=%s publish_url=%s: %v", errQueueTransient, path, publishURL, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
		detail := fmt.Sprintf("publish job status=%d path=%s publish_url=%s body=%s",
			resp.StatusCode, path, publishURL, strings.TrimSpace(string(raw)))

		var callErr error
		if retryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %s", errQueueTransient, detail)
		} else {
			callErr = stderrors.New(detail)
		}
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.InfoContext(ctx, "job published", "job_path", path, "delay", delayHeader(delay), "dedup_id", deduplicationID)
	p.recordCircuitResult(nil)
	return nil
}

// delayHeader renders a duration the way Upstash-Delay expects: whole
// seconds, never negative.
func delayHeader(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	seconds := int(delay.Round(time.Second).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%ds", seconds)
}

func checkBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

// curlPreview renders the publish call as a copy-pasteable curl line
// with secrets masked. Invaluable when a settlement job goes missing
// and someone needs to replay it by hand.
func curlPreview(
	publishURL string,
	path string,
	delay string,
	retries int,
	deduplicationID string,
	body string,
	withForwardToken bool,
) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	part := func(p string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(p)
	}
	header := func(value string) {
		part("-H")
		part(shellQuote(value))
	}

	part("curl")
	part("-X")
	part("POST")
	part(shellQuote(publishURL))
	header("Authorization: Bearer ***")
	header("Content-Type: application/json")
	header("Upstash-Method: POST")
	if retries > 0 {
		header("Upstash-Retries: " + strconv.Itoa(retries))
	}
	if strings.TrimSpace(delay) != "" && delay != "0s" {
		header("Upstash-Delay: " + delay)
	}
	if dedup := strings.TrimSpace(deduplicationID); dedup != "" {
		header("Upstash-Deduplication-Id: " + dedup)
	}
	if withForwardToken {
		header("Upstash-Forward-X-Internal-Job-Token: ***")
	}
	part("-d")
	part(shellQuote(body))
	part("#")
	part(shellQuote("path=" + path))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func clipForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func (p *QStashPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errQueueTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func retryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
