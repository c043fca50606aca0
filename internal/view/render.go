package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/kjannette/spimex-view/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS holds the stylesheet served under /static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type Renderer struct {
	tmpl *template.Template
	msgs Messages
}

func NewRenderer(msgs Messages) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, msgs: msgs}, nil
}

func (r *Renderer) Messages() Messages { return r.msgs }

type alertData struct {
	Kind    string
	Message string
}

type datesData struct {
	Heading string
	Dates   []string
}

type recordRow struct {
	Date          string
	OilID         string
	DeliveryType  string
	DeliveryBasis string
	Volume        string
	Total         string
	Count         int
}

type recordsData struct {
	Heading string
	Columns [7]string
	Rows    []recordRow
}

type pageData struct {
	Msgs     Messages
	Fields   map[string]string
	Regions  map[string]template.HTML
	Controls map[string]*Control
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Alert renders a banner of the given bootstrap kind ("danger", "info").
func (r *Renderer) Alert(kind, message string) template.HTML {
	html, err := r.fragment("alert", alertData{Kind: kind, Message: message})
	if err != nil {
		return template.HTML(`<div class="alert alert-danger" role="alert">` +
			template.HTMLEscapeString(message) + `</div>`)
	}
	return html
}

// ShowError replaces the content of target with an error banner.
func (r *Renderer) ShowError(target *Region, message string) {
	target.Set(r.Alert("danger", message))
}

// ShowNotice replaces the content of target with an informational banner.
func (r *Renderer) ShowNotice(target *Region, message string) {
	target.Set(r.Alert("info", message))
}

func (r *Renderer) Dates(dates []string) (template.HTML, error) {
	d := datesData{
		Heading: fmt.Sprintf(r.msgs.DatesHeading, len(dates)),
		Dates:   make([]string, len(dates)),
	}
	for i, s := range dates {
		d.Dates[i] = r.msgs.FormatDate(s)
	}
	return r.fragment("dates", d)
}

// Records renders recs as a table under a heading built from headingFormat.
func (r *Renderer) Records(headingFormat string, recs []models.TradingRecord) (template.HTML, error) {
	d := recordsData{
		Heading: fmt.Sprintf(headingFormat, len(recs)),
		Columns: r.msgs.Columns,
		Rows:    make([]recordRow, len(recs)),
	}
	for i, rec := range recs {
		d.Rows[i] = recordRow{
			Date:          r.msgs.FormatDate(rec.TradeDate),
			OilID:         rec.OilID,
			DeliveryType:  rec.DeliveryTypeID,
			DeliveryBasis: rec.DeliveryBasisID,
			Volume:        formatAmount(rec.Volume),
			Total:         formatAmount(rec.Total),
			Count:         rec.Count,
		}
	}
	return r.fragment("records", d)
}

func (r *Renderer) Control(c *Control) (template.HTML, error) {
	return r.fragment("control", c)
}

func (r *Renderer) Page(w io.Writer, p *Page) error {
	d := pageData{
		Msgs:     r.msgs,
		Fields:   make(map[string]string, len(p.fields)),
		Regions:  make(map[string]template.HTML, len(p.regions)),
		Controls: make(map[string]*Control, len(p.controls)),
	}
	for id, f := range p.fields {
		d.Fields[id] = f.Value()
	}
	for id, reg := range p.regions {
		d.Regions[id] = reg.HTML()
	}
	for id, c := range p.controls {
		d.Controls[string(id)] = c
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", d); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
