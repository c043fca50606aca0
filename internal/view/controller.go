package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/spimex-view/internal/external"
	"github.com/kjannette/spimex-view/internal/models"
)

// TradingSource is the part of the trading API the handlers call.
type TradingSource interface {
	LastTradingDates(ctx context.Context, limit string) ([]string, error)
	Dynamics(ctx context.Context, q external.DynamicsQuery) ([]models.TradingRecord, error)
	TradingResults(ctx context.Context, f models.QueryFilter) ([]models.TradingRecord, error)
}

type Outcome string

const (
	OutcomeRendered Outcome = "ok"
	OutcomeEmpty    Outcome = "empty"
	OutcomeFailed   Outcome = "error"
)

// Action is the task bound to a control. It writes its own target region on
// success and returns an error otherwise; the controller renders the error.
type Action func(ctx context.Context) (Outcome, error)

// Result describes one finished click.
type Result struct {
	ClickID  string
	Control  ControlID
	Target   string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

type binding struct {
	control *Control
	target  *Region
	failure string
	action  Action
}

// Controller maps control identities to their actions for one page.
// Clicks may overlap; nothing is serialized, cancelled or de-duplicated and
// the last click to finish owns the target region.
type Controller struct {
	page     *Page
	renderer *Renderer
	bindings map[ControlID]*binding
}

// NewController wires the three fetch handlers of page to src.
func NewController(page *Page, src TradingSource, r *Renderer) *Controller {
	c := &Controller{
		page:     page,
		renderer: r,
		bindings: make(map[ControlID]*binding),
	}
	msgs := r.Messages()

	dates := page.mustRegion(DatesResult)
	c.Register(page.mustControl(FetchDates), dates, msgs.DatesFailed,
		FetchDatesAction(page.mustField(DatesLimit), dates, src, r))

	dynamics := page.mustRegion(DynamicsResult)
	c.Register(page.mustControl(FetchDynamics), dynamics, msgs.DataFailed,
		FetchDynamicsAction(DynamicsInputs{
			Start:         page.mustField(StartDate),
			End:           page.mustField(EndDate),
			OilID:         page.mustField(OilID),
			DeliveryType:  page.mustField(DeliveryType),
			DeliveryBasis: page.mustField(DeliveryBasis),
		}, dynamics, src, r))

	results := page.mustRegion(ResultsTable)
	c.Register(page.mustControl(FetchResults), results, msgs.DataFailed,
		FetchResultsAction(ResultsInputs{
			OilID:         page.mustField(ResultsOilID),
			DeliveryType:  page.mustField(ResultsDeliveryType),
			DeliveryBasis: page.mustField(ResultsDeliveryBasis),
			Limit:         page.mustField(ResultsLimit),
		}, results, src, r))

	return c
}

// Register binds action to control. Failures are shown in target using
// failure as the format string ("%s" receives the error text).
func (c *Controller) Register(control *Control, target *Region, failure string, action Action) {
	c.bindings[control.ID()] = &binding{
		control: control,
		target:  target,
		failure: failure,
		action:  action,
	}
}

func (c *Controller) Page() *Page { return c.page }

func (c *Controller) Renderer() *Renderer { return c.renderer }

// Target returns the region a control writes to.
func (c *Controller) Target(id ControlID) (*Region, bool) {
	b, ok := c.bindings[id]
	if !ok {
		return nil, false
	}
	return b.target, true
}

// Click runs the action bound to id. The loading indicator is attached for
// the duration of the action and released on every path. Action failures
// are rendered into the target region and reported in Result.Err; the
// returned error is only for an unknown control.
func (c *Controller) Click(ctx context.Context, id ControlID) (Result, error) {
	b, ok := c.bindings[id]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}

	res := Result{
		ClickID: uuid.NewString(),
		Control: id,
		Target:  b.target.ID(),
	}
	start := time.Now()

	SetLoading(b.control, true)
	defer SetLoading(b.control, false)

	outcome, err := b.action(ctx)
	res.Duration = time.Since(start)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		c.renderer.ShowError(b.target, c.describe(b, err))
		slog.Warn("control action failed",
			"control", id, "click_id", res.ClickID, "duration", res.Duration, "error", err)
		return res, nil
	}

	res.Outcome = outcome
	slog.Debug("control action done",
		"control", id, "click_id", res.ClickID, "outcome", outcome, "duration", res.Duration)
	return res, nil
}

func (c *Controller) describe(b *binding, err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return fmt.Sprintf(b.failure, c.renderer.Messages().ErrorText(err))
}

// FetchDatesAction lists the most recent trading dates.
func FetchDatesAction(limit *Field, target *Region, src TradingSource, r *Renderer) Action {
	return func(ctx context.Context) (Outcome, error) {
		dates, err := src.LastTradingDates(ctx, limit.Value())
		if err != nil {
			return OutcomeFailed, upstreamError(err)
		}
		html, err := r.Dates(dates)
		if err != nil {
			return OutcomeFailed, err
		}
		target.Set(html)
		return OutcomeRendered, nil
	}
}

type DynamicsInputs struct {
	Start         *Field
	End           *Field
	OilID         *Field
	DeliveryType  *Field
	DeliveryBasis *Field
}

// FetchDynamicsAction loads records for a date range. Both dates are
// required; when either is blank no request is made.
func FetchDynamicsAction(in DynamicsInputs, target *Region, src TradingSource, r *Renderer) Action {
	return func(ctx context.Context) (Outcome, error) {
		start := strings.TrimSpace(in.Start.Value())
		end := strings.TrimSpace(in.End.Value())
		if start == "" || end == "" {
			missing := in.Start.ID()
			if start != "" {
				missing = in.End.ID()
			}
			return OutcomeFailed, &ValidationError{Field: missing, Message: r.Messages().MissingDates}
		}

		recs, err := src.Dynamics(ctx, external.DynamicsQuery{
			StartDate: start,
			EndDate:   end,
			Filter: models.QueryFilter{
				OilID:           in.OilID.Value(),
				DeliveryTypeID:  in.DeliveryType.Value(),
				DeliveryBasisID: in.DeliveryBasis.Value(),
			},
		})
		if err != nil {
			return OutcomeFailed, upstreamError(err)
		}
		return renderRecords(target, r, r.Messages().DynamicsHeading, recs)
	}
}

type ResultsInputs struct {
	OilID         *Field
	DeliveryType  *Field
	DeliveryBasis *Field
	Limit         *Field
}

// FetchResultsAction loads the latest records, optionally filtered.
func FetchResultsAction(in ResultsInputs, target *Region, src TradingSource, r *Renderer) Action {
	return func(ctx context.Context) (Outcome, error) {
		recs, err := src.TradingResults(ctx, models.QueryFilter{
			OilID:           in.OilID.Value(),
			DeliveryTypeID:  in.DeliveryType.Value(),
			DeliveryBasisID: in.DeliveryBasis.Value(),
			Limit:           in.Limit.Value(),
		})
		if err != nil {
			return OutcomeFailed, upstreamError(err)
		}
		return renderRecords(target, r, r.Messages().ResultsHeading, recs)
	}
}

func renderRecords(target *Region, r *Renderer, heading string, recs []models.TradingRecord) (Outcome, error) {
	if len(recs) == 0 {
		r.ShowNotice(target, r.Messages().NoResults)
		return OutcomeEmpty, nil
	}
	html, err := r.Records(heading, recs)
	if err != nil {
		return OutcomeFailed, err
	}
	target.Set(html)
	return OutcomeRendered, nil
}
