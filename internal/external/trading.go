package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kjannette/spimex-view/internal/httputil"
	"github.com/kjannette/spimex-view/internal/metrics"
	"github.com/kjannette/spimex-view/internal/models"
)

// Endpoint names, also used as metric labels.
const (
	EndpointDates    = "last-trading-dates"
	EndpointDynamics = "dynamics"
	EndpointResults  = "trading-results"
)

// TradingClient talks to the trading results API. Each call is a single GET:
// there is no retry and no caching on this side.
type TradingClient struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func NewTradingClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *TradingClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TradingClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}
}

type DynamicsQuery struct {
	StartDate string
	EndDate   string
	Filter    models.QueryFilter
}

func (c *TradingClient) DatesURL(limit string) string {
	v := url.Values{}
	v.Set("limit", strings.TrimSpace(limit))
	return c.baseURL + "/last-trading-dates/?" + v.Encode()
}

func (c *TradingClient) DynamicsURL(q DynamicsQuery) string {
	v := url.Values{}
	v.Set("start_date", strings.TrimSpace(q.StartDate))
	v.Set("end_date", strings.TrimSpace(q.EndDate))
	addFilters(v, q.Filter)
	return c.baseURL + "/dynamics/?" + v.Encode()
}

func (c *TradingClient) ResultsURL(f models.QueryFilter) string {
	v := url.Values{}
	v.Set("limit", strings.TrimSpace(f.Limit))
	addFilters(v, f)
	return c.baseURL + "/trading-results/?" + v.Encode()
}

func (c *TradingClient) LastTradingDates(ctx context.Context, limit string) ([]string, error) {
	var dates []string
	if err := c.get(ctx, EndpointDates, c.DatesURL(limit), &dates); err != nil {
		return nil, fmt.Errorf("last trading dates: %w", err)
	}
	return dates, nil
}

func (c *TradingClient) Dynamics(ctx context.Context, q DynamicsQuery) ([]models.TradingRecord, error) {
	var recs []models.TradingRecord
	if err := c.get(ctx, EndpointDynamics, c.DynamicsURL(q), &recs); err != nil {
		return nil, fmt.Errorf("dynamics: %w", err)
	}
	return recs, nil
}

func (c *TradingClient) TradingResults(ctx context.Context, f models.QueryFilter) ([]models.TradingRecord, error) {
	var recs []models.TradingRecord
	if err := c.get(ctx, EndpointResults, c.ResultsURL(f), &recs); err != nil {
		return nil, fmt.Errorf("trading results: %w", err)
	}
	return recs, nil
}

// Ping reports whether the API answers at all. Any status below 500 counts.
func (c *TradingClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("trading API returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *TradingClient) get(ctx context.Context, endpoint, rawURL string, v any) error {
	start := time.Now()
	err := httputil.GetJSON(ctx, c.httpClient, rawURL, v)

	status := http.StatusOK
	var se *httputil.StatusError
	switch {
	case errors.As(err, &se):
		status = se.StatusCode
	case err != nil && !errors.Is(err, httputil.ErrDecode):
		status = 0
	}
	c.metrics.ObserveUpstream(endpoint, status, time.Since(start))
	return err
}

func addFilters(v url.Values, f models.QueryFilter) {
	addOptional(v, "oil_id", f.OilID)
	addOptional(v, "delivery_type_id", f.DeliveryTypeID)
	addOptional(v, "delivery_basis_id", f.DeliveryBasisID)
}

func addOptional(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}
