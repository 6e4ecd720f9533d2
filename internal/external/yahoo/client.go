package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/s0_data"
	"github.com/DongHyun925/RulePilot/pkg/httputil"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// DefaultBaseURL Yahoo Finance 공개 엔드포인트
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// errNoSeries 공급자가 정상 응답했지만 시계열이 없음 (차단기 실패로 세지 않음)
var errNoSeries = errors.New("no series returned")

// Client Yahoo Finance v8 chart API 가격 공급자
// ⭐ SSOT: Yahoo 호출은 이 클라이언트에서만
// contracts.PriceFeed 구현. 모든 실패는 *contracts.NoDataError 로 반환
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	now        func() time.Time
}

// BreakerConfig 연속 실패 시 호출 차단
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerConfig trips after 5 consecutive failures and probes again after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// NewClient creates a new Yahoo client
func NewClient(httpClient *httputil.Client, baseURL string, breakerCfg BreakerConfig, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("yahoo")

	settings := gobreaker.Settings{
		Name:    "yahoo-chart",
		Timeout: breakerCfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerCfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNoSeries) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		now:        time.Now,
	}
}

// Fetch implements contracts.PriceFeed.
func (c *Client) Fetch(ctx context.Context, ticker, period, interval string) (*contracts.RawSeries, error) {
	if err := s0_data.ValidateInterval(interval); err != nil {
		return nil, err
	}
	window, err := s0_data.ParsePeriod(period, c.now())
	if err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchChart(ctx, ticker, window)
	})
	if err != nil {
		return nil, contracts.NewNoDataError(ticker, period, err)
	}

	raw := result.(*contracts.RawSeries)
	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"period": period,
		"count":  len(raw.Dates),
	}).Debug("Fetched chart")
	return raw, nil
}

func (c *Client) fetchChart(ctx context.Context, ticker string, window s0_data.Window) (*contracts.RawSeries, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(window.From.Unix(), 10))
	params.Set("period2", strconv.FormatInt(window.To.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", contracts.IntervalDaily)
	params.Set("includeAdjustedClose", "true")
	params.Set("events", "div,splits")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: symbol %s not found", errNoSeries, ticker)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	if e := parsed.Chart.Error; e != nil {
		return nil, fmt.Errorf("%w: %s: %s", errNoSeries, e.Code, e.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Timestamp) == 0 {
		return nil, errNoSeries
	}

	return parsed.Chart.Result[0].toRawSeries(ticker), nil
}

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
