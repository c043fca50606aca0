package view

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/spimex-view/internal/external"
	"github.com/kjannette/spimex-view/internal/testutil"
)

func newTestController(t *testing.T, lang string) (*Controller, *testutil.FakeTradingAPI) {
	t.Helper()

	api := testutil.NewFakeTradingAPI(t)
	r, err := NewRenderer(MessagesFor(lang))
	require.NoError(t, err)

	now := time.Date(2023, 1, 7, 12, 0, 0, 0, time.UTC)
	page := NewPage(now, DefaultDefaults, r.Messages())
	client := external.NewTradingClient(api.URL, time.Second, nil)
	return NewController(page, client, r), api
}

func regionHTML(t *testing.T, c *Controller, id string) string {
	t.Helper()
	reg, ok := c.Page().Region(id)
	require.True(t, ok)
	return string(reg.HTML())
}

func assertIdle(t *testing.T, c *Controller, id ControlID) {
	t.Helper()
	ctl, ok := c.Page().Control(id)
	require.True(t, ok)
	assert.False(t, ctl.Indicator(), "indicator released")
	assert.False(t, ctl.Disabled(), "control re-enabled")
}

func TestClick_FetchDates(t *testing.T) {
	c, api := newTestController(t, "en")
	api.Respond("/last-trading-dates/", http.StatusOK, `["2023-01-03","2023-01-02","2023-01-01"]`)
	c.Page().Apply(map[string][]string{DatesLimit: {"3"}})

	res, err := c.Click(context.Background(), FetchDates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRendered, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, DatesResult, res.Target)
	assert.NotEmpty(t, res.ClickID)

	out := regionHTML(t, c, DatesResult)
	assert.Contains(t, out, "Last 3 trading dates:")
	assert.Equal(t, 3, strings.Count(out, "<li"))
	assert.Contains(t, out, "1/3/2023")

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "3", reqs[0].Query().Get("limit"))
	assertIdle(t, c, FetchDates)
}

func TestClick_FetchDynamics_RendersTable(t *testing.T) {
	c, api := newTestController(t, "en")
	api.Respond("/dynamics/", http.StatusOK, `[
		{"trade_date":"2023-01-02","oil_id":"OIL2","delivery_type_id":"DT2","delivery_basis_id":"DB2","volume":12.5,"total":null,"count":20},
		{"trade_date":"2023-01-01","oil_id":"OIL1","delivery_type_id":"DT1","delivery_basis_id":"DB1","volume":null,"total":300,"count":10}
	]`)
	c.Page().Apply(map[string][]string{OilID: {"OIL1"}})

	res, err := c.Click(context.Background(), FetchDynamics)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRendered, res.Outcome)

	out := regionHTML(t, c, DynamicsResult)
	assert.Contains(t, out, "Results (2 records):")
	assert.Contains(t, out, "<th>Delivery Basis</th>")
	assert.Contains(t, out, "<td>12.50</td>")
	assert.Contains(t, out, "<td>300.00</td>")
	assert.Contains(t, out, "<td>-</td>")
	assert.Equal(t, 2, strings.Count(out, "<tr>")-1, "one header row plus one row per record")

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	q := reqs[0].Query()
	assert.Equal(t, "2022-12-31", q.Get("start_date"))
	assert.Equal(t, "2023-01-07", q.Get("end_date"))
	assert.Equal(t, "OIL1", q.Get("oil_id"))
	assert.False(t, q.Has("delivery_type_id"))
	assert.False(t, q.Has("delivery_basis_id"))
	assertIdle(t, c, FetchDynamics)
}

func TestClick_FetchDynamics_MissingDates(t *testing.T) {
	c, api := newTestController(t, "en")
	c.Page().Apply(map[string][]string{StartDate: {" "}})

	res, err := c.Click(context.Background(), FetchDynamics)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)

	var ve *ValidationError
	require.ErrorAs(t, res.Err, &ve)
	assert.Equal(t, StartDate, ve.Field)

	out := regionHTML(t, c, DynamicsResult)
	assert.Contains(t, out, "Select start and end dates")
	assert.NotContains(t, out, "Error displaying data")
	assert.Zero(t, api.RequestCount(), "no request without both dates")
	assertIdle(t, c, FetchDynamics)
}

func TestClick_FetchDynamics_ServerError(t *testing.T) {
	c, api := newTestController(t, "en")
	api.Respond("/dynamics/", http.StatusInternalServerError, `{"detail":"boom"}`)

	res, err := c.Click(context.Background(), FetchDynamics)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)

	var he *HTTPError
	require.ErrorAs(t, res.Err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Status)

	out := regionHTML(t, c, DynamicsResult)
	assert.Contains(t, out, "alert-danger")
	assert.Contains(t, out, "Error displaying data: HTTP error! Status: 500")
	assert.Equal(t, 1, api.RequestCount(), "no retry")
	assertIdle(t, c, FetchDynamics)
}

func TestClick_FetchDates_ServerErrorRussian(t *testing.T) {
	c, api := newTestController(t, "ru")
	api.Respond("/last-trading-dates/", http.StatusBadGateway, `{}`)

	_, err := c.Click(context.Background(), FetchDates)
	require.NoError(t, err)

	out := regionHTML(t, c, DatesResult)
	assert.Contains(t, out, "Ошибка отображения дат: Ошибка HTTP! Статус: 502")
	assertIdle(t, c, FetchDates)
}

func TestClick_FetchResults_Empty(t *testing.T) {
	c, api := newTestController(t, "en")
	api.Respond("/trading-results/", http.StatusOK, `[]`)
	c.Page().Apply(map[string][]string{ResultsDeliveryBasis: {"ANK"}})

	res, err := c.Click(context.Background(), FetchResults)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.NoError(t, res.Err)

	out := regionHTML(t, c, ResultsTable)
	assert.Contains(t, out, "alert-info")
	assert.Contains(t, out, "No results found for the given criteria")

	q := api.Requests()[0].Query()
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "ANK", q.Get("delivery_basis_id"))
	assert.False(t, q.Has("oil_id"))
	assertIdle(t, c, FetchResults)
}

func TestClick_FetchResults_TransportError(t *testing.T) {
	c, api := newTestController(t, "en")
	api.Close()

	res, err := c.Click(context.Background(), FetchResults)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)

	var he *HTTPError
	assert.False(t, errors.As(res.Err, &he))
	assert.Contains(t, regionHTML(t, c, ResultsTable), "Error displaying data: ")
	assertIdle(t, c, FetchResults)
}

func TestClick_ReplacesPreviousContent(t *testing.T) {
	c, api := newTestController(t, "en")
	api.Respond("/trading-results/", http.StatusInternalServerError, ``)
	_, err := c.Click(context.Background(), FetchResults)
	require.NoError(t, err)
	require.Contains(t, regionHTML(t, c, ResultsTable), "Status: 500")

	api.Respond("/trading-results/", http.StatusOK, `[{"trade_date":"2023-01-01","oil_id":"A","delivery_type_id":"F","delivery_basis_id":"B","volume":1,"total":2,"count":3}]`)
	_, err = c.Click(context.Background(), FetchResults)
	require.NoError(t, err)

	out := regionHTML(t, c, ResultsTable)
	assert.NotContains(t, out, "Status: 500")
	assert.Contains(t, out, "Recent Results (1 records):")
}

func TestClick_IndicatorAttachedWhileRunning(t *testing.T) {
	c, _ := newTestController(t, "en")
	ctl, _ := c.Page().Control(FetchDates)
	target, _ := c.Target(FetchDates)

	var during bool
	c.Register(ctl, target, c.Renderer().Messages().DatesFailed, func(ctx context.Context) (Outcome, error) {
		during = ctl.Indicator() && ctl.Disabled()
		return OutcomeRendered, nil
	})

	_, err := c.Click(context.Background(), FetchDates)
	require.NoError(t, err)
	assert.True(t, during)
	assertIdle(t, c, FetchDates)
}

func TestClick_UnknownControl(t *testing.T) {
	c, api := newTestController(t, "en")
	_, err := c.Click(context.Background(), ControlID("fetchEverything"))
	assert.ErrorIs(t, err, ErrUnknownControl)
	assert.Zero(t, api.RequestCount())
}
