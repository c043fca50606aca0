package view

import (
	"html/template"
	"strconv"
	"sync"
	"time"

	"github.com/kjannette/spimex-view/internal/models"
)

// Input identifiers.
const (
	StartDate            = "startDate"
	EndDate              = "endDate"
	OilID                = "oilId"
	DeliveryType         = "deliveryType"
	DeliveryBasis        = "deliveryBasis"
	DatesLimit           = "datesLimit"
	ResultsOilID         = "resultsOilId"
	ResultsDeliveryType  = "resultsDeliveryType"
	ResultsDeliveryBasis = "resultsDeliveryBasis"
	ResultsLimit         = "resultsLimit"
)

// Result container identifiers.
const (
	DatesResult    = "datesResult"
	DynamicsResult = "dynamicsResult"
	ResultsTable   = "resultsTable"
)

type ControlID string

const (
	FetchDates    ControlID = "fetchDates"
	FetchDynamics ControlID = "fetchDynamics"
	FetchResults  ControlID = "fetchResults"
)

// Field is a text input. The zero value is an empty field.
type Field struct {
	id string

	mu    sync.RWMutex
	value string
}

func NewField(id, value string) *Field {
	return &Field{id: id, value: value}
}

func (f *Field) ID() string { return f.id }

func (f *Field) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

func (f *Field) Set(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

// Region is a result container. Its content is replaced wholesale on every
// write; the last writer wins.
type Region struct {
	id string

	mu      sync.RWMutex
	content template.HTML
}

func NewRegion(id string) *Region {
	return &Region{id: id}
}

func (r *Region) ID() string { return r.id }

func (r *Region) HTML() template.HTML {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

func (r *Region) Set(content template.HTML) {
	r.mu.Lock()
	r.content = content
	r.mu.Unlock()
}

// Control is a button that triggers a fetch.
type Control struct {
	id    ControlID
	label string

	mu    sync.Mutex
	state LoadingState
}

func NewControl(id ControlID, label string) *Control {
	return &Control{id: id, label: label}
}

func (c *Control) ID() ControlID { return c.id }
func (c *Control) Label() string { return c.label }

// Indicator reports whether the loading marker is attached.
func (c *Control) Indicator() bool { return c.State().Loading }
func (c *Control) Disabled() bool  { return c.State().Loading }

func (c *Control) State() LoadingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IndicatorID is the element id of the loading marker for this control.
func (c *Control) IndicatorID() string { return string(c.id) + "Loading" }

type Defaults struct {
	DateRangeDays int
	DatesLimit    int
	ResultsLimit  int
}

var DefaultDefaults = Defaults{DateRangeDays: 7, DatesLimit: 5, ResultsLimit: 10}

// Page owns every element handle of one visitor's page.
type Page struct {
	fields   map[string]*Field
	regions  map[string]*Region
	controls map[ControlID]*Control

	fieldOrder []string
}

// NewPage builds the page and fills in the default date range ending on the
// day of now.
func NewPage(now time.Time, d Defaults, msgs Messages) *Page {
	dr := models.DefaultDateRange(now, d.DateRangeDays)

	p := &Page{
		fields:   make(map[string]*Field),
		regions:  make(map[string]*Region),
		controls: make(map[ControlID]*Control),
	}

	p.addField(DatesLimit, strconv.Itoa(d.DatesLimit))
	p.addField(StartDate, dr.StartString())
	p.addField(EndDate, dr.EndString())
	p.addField(OilID, "")
	p.addField(DeliveryType, "")
	p.addField(DeliveryBasis, "")
	p.addField(ResultsOilID, "")
	p.addField(ResultsDeliveryType, "")
	p.addField(ResultsDeliveryBasis, "")
	p.addField(ResultsLimit, strconv.Itoa(d.ResultsLimit))

	for _, id := range []string{DatesResult, DynamicsResult, ResultsTable} {
		p.regions[id] = NewRegion(id)
	}

	p.controls[FetchDates] = NewControl(FetchDates, msgs.FetchDatesLabel)
	p.controls[FetchDynamics] = NewControl(FetchDynamics, msgs.FetchDynamicsLabel)
	p.controls[FetchResults] = NewControl(FetchResults, msgs.FetchResultsLabel)

	return p
}

func (p *Page) addField(id, value string) {
	p.fields[id] = NewField(id, value)
	p.fieldOrder = append(p.fieldOrder, id)
}

func (p *Page) Field(id string) (*Field, bool) {
	f, ok := p.fields[id]
	return f, ok
}

func (p *Page) Region(id string) (*Region, bool) {
	r, ok := p.regions[id]
	return r, ok
}

func (p *Page) Control(id ControlID) (*Control, bool) {
	c, ok := p.controls[id]
	return c, ok
}

// Value returns the current value of a field, or "" if it does not exist.
func (p *Page) Value(id string) string {
	if f, ok := p.fields[id]; ok {
		return f.Value()
	}
	return ""
}

// Apply copies submitted input values onto the page. Unknown keys are
// ignored; fields missing from values keep their current value.
func (p *Page) Apply(values map[string][]string) {
	for _, id := range p.fieldOrder {
		if v, ok := values[id]; ok && len(v) > 0 {
			p.fields[id].Set(v[0])
		}
	}
}

func (p *Page) mustField(id string) *Field        { return p.fields[id] }
func (p *Page) mustRegion(id string) *Region      { return p.regions[id] }
func (p *Page) mustControl(id ControlID) *Control { return p.controls[id] }
