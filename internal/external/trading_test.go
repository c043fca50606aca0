package external_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/spimex-view/internal/external"
	"github.com/kjannette/spimex-view/internal/httputil"
	"github.com/kjannette/spimex-view/internal/metrics"
	"github.com/kjannette/spimex-view/internal/models"
	fake "github.com/kjannette/spimex-view/internal/testutil"
)

const twoRecords = `[
	{"trade_date":"2023-01-02","oil_id":"OIL2","delivery_type_id":"DT2","delivery_basis_id":"DB2","volume":200.75,"total":10000.5,"count":20},
	{"trade_date":"2023-01-01","oil_id":"OIL1","delivery_type_id":"DT1","delivery_basis_id":"DB1","volume":null,"total":null,"count":10}
]`

func TestDatesURL(t *testing.T) {
	c := external.NewTradingClient("http://api.local/", time.Second, nil)
	assert.Equal(t, "http://api.local/last-trading-dates/?limit=5", c.DatesURL(" 5 "))
}

func TestDynamicsURL_OmitsBlankFilters(t *testing.T) {
	c := external.NewTradingClient("http://api.local", time.Second, nil)
	raw := c.DynamicsURL(external.DynamicsQuery{
		StartDate: "2023-01-01",
		EndDate:   "2023-01-07",
		Filter:    models.QueryFilter{OilID: "A592", DeliveryTypeID: "  "},
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/dynamics/", u.Path)

	q := u.Query()
	assert.Equal(t, "2023-01-01", q.Get("start_date"))
	assert.Equal(t, "2023-01-07", q.Get("end_date"))
	assert.Equal(t, "A592", q.Get("oil_id"))
	assert.False(t, q.Has("delivery_type_id"))
	assert.False(t, q.Has("delivery_basis_id"))
	assert.NotContains(t, raw, "delivery_type_id=")
}

func TestResultsURL_AlwaysHasLimit(t *testing.T) {
	c := external.NewTradingClient("http://api.local", time.Second, nil)

	u, err := url.Parse(c.ResultsURL(models.QueryFilter{Limit: "10", DeliveryBasisID: "ANK"}))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "ANK", q.Get("delivery_basis_id"))
	assert.False(t, q.Has("oil_id"))

	u, err = url.Parse(c.ResultsURL(models.QueryFilter{}))
	require.NoError(t, err)
	assert.True(t, u.Query().Has("limit"))
}

func TestLastTradingDates(t *testing.T) {
	api := fake.NewFakeTradingAPI(t)
	api.Respond("/last-trading-dates/", http.StatusOK, `["2023-01-02","2023-01-01"]`)
	m := metrics.New()

	c := external.NewTradingClient(api.URL, time.Second, m)
	dates, err := c.LastTradingDates(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-01-02", "2023-01-01"}, dates)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "2", reqs[0].Query().Get("limit"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(external.EndpointDates, "200")))
}

func TestDynamics_DecodesRecords(t *testing.T) {
	api := fake.NewFakeTradingAPI(t)
	api.Respond("/dynamics/", http.StatusOK, twoRecords)

	c := external.NewTradingClient(api.URL, time.Second, nil)
	recs, err := c.Dynamics(context.Background(), external.DynamicsQuery{StartDate: "2023-01-01", EndDate: "2023-01-02"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.NotNil(t, recs[0].Volume)
	assert.InDelta(t, 200.75, *recs[0].Volume, 1e-9)
	assert.Nil(t, recs[1].Volume)
	assert.Nil(t, recs[1].Total)
}

func TestTradingResults_StatusError(t *testing.T) {
	api := fake.NewFakeTradingAPI(t)
	api.Respond("/trading-results/", http.StatusInternalServerError, `{"detail":"boom"}`)
	m := metrics.New()

	c := external.NewTradingClient(api.URL, time.Second, m)
	_, err := c.TradingResults(context.Background(), models.QueryFilter{Limit: "10"})
	require.Error(t, err)

	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, 1, api.RequestCount(), "no retry on the page fetch path")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(external.EndpointResults, "500")))
}

func TestPing(t *testing.T) {
	api := fake.NewFakeTradingAPI(t)
	c := external.NewTradingClient(api.URL, time.Second, nil)

	// the fake answers 404 on "/", which still proves the API is up
	assert.NoError(t, c.Ping(context.Background()))

	api.Respond("/", http.StatusBadGateway, "")
	assert.Error(t, c.Ping(context.Background()))
}
