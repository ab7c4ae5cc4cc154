package fplapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
	"github.com/biplovsubedi/prediction-league/internal/platform/resilience"
	"github.com/biplovsubedi/prediction-league/internal/usecase"
)

const (
	defaultBaseURL   = "https://fantasy.premierleague.com/api"
	bootstrapPath    = "/bootstrap-static/"
	maxResponseBytes = 8 << 20
)

var errTransient = crerr.New("fpl transient failure")

type ClientConfig struct {
	HTTPClient       *http.Client
	BaseURL          string
	Timeout          time.Duration
	MaxRetries       int
	Logger           *logging.Logger
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

// Client reads the public bootstrap endpoint of the upstream fantasy
// API. All calls share a circuit breaker, and concurrent fetches of
// the same path collapse into one request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	threshold := cfg.BreakerThreshold
	if threshold < 1 {
		threshold = 5
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(threshold, cfg.BreakerTimeout),
	}
}

type bootstrapEnvelope struct {
	Teams []struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		ShortName string `json:"short_name"`
		Code      int    `json:"code"`
		Position  int    `json:"position"`
		Points    int    `json:"points"`
		Win       int    `json:"win"`
		Loss      int    `json:"loss"`
		Draw      int    `json:"draw"`
	} `json:"teams"`
	Events []struct {
		ID          int  `json:"id"`
		IsCurrent   bool `json:"is_current"`
		Finished    bool `json:"finished"`
		DataChecked bool `json:"data_checked"`
	} `json:"events"`
}

// FetchSnapshot pulls one bootstrap document and maps the consumed
// fields. Missing numeric fields decode to 0 and missing booleans to
// false, which is exactly the downstream default.
func (c *Client) FetchSnapshot(ctx context.Context) (usecase.ExternalSnapshot, error) {
	var envelope bootstrapEnvelope
	if err := c.doJSON(ctx, bootstrapPath, &envelope); err != nil {
		return usecase.ExternalSnapshot{}, fmt.Errorf("fetch bootstrap: %w", err)
	}

	snapshot := usecase.ExternalSnapshot{
		Teams:  make([]usecase.ExternalTeam, 0, len(envelope.Teams)),
		Events: make([]usecase.ExternalEvent, 0, len(envelope.Events)),
	}
	for _, t := range envelope.Teams {
		snapshot.Teams = append(snapshot.Teams, usecase.ExternalTeam{
			ID:        t.ID,
			Name:      t.Name,
			ShortName: t.ShortName,
			Code:      t.Code,
			Position:  t.Position,
			Points:    t.Points,
			Win:       t.Win,
			Loss:      t.Loss,
			Draw:      t.Draw,
		})
	}
	for _, e := range envelope.Events {
		snapshot.Events = append(snapshot.Events, usecase.ExternalEvent{
			ID:          e.ID,
			IsCurrent:   e.IsCurrent,
			Finished:    e.Finished,
			DataChecked: e.DataChecked,
		})
	}

	return snapshot, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: upstream feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, c.baseURL+path)
		if reqErr != nil && crerr.Is(reqErr, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
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
		return fmt.Errorf("decode upstream payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: upstream status=%d", errTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("upstream status=%d", resp.StatusCode)
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
		lastErr = fmt.Errorf("upstream request failed")
	}
	c.logger.WarnContext(ctx, "fpl request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
