package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kjannette/spimex-view/internal/external"
	"github.com/kjannette/spimex-view/internal/metrics"
	"github.com/kjannette/spimex-view/internal/view"
)

var controlEndpoints = map[view.ControlID]string{
	view.FetchDates:    external.EndpointDates,
	view.FetchDynamics: external.EndpointDynamics,
	view.FetchResults:  external.EndpointResults,
}

var clickOutcomes = map[view.Outcome]string{
	view.OutcomeRendered: metrics.OutcomeOK,
	view.OutcomeEmpty:    metrics.OutcomeEmpty,
	view.OutcomeFailed:   metrics.OutcomeError,
}

// controller returns the visitor's page, issuing a session cookie when the
// request carries none or an expired one.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) *view.Controller {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sid, ctrl, created := s.sessions.Resolve(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return ctrl
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(w, r)

	var buf bytes.Buffer
	if err := ctrl.Renderer().Page(&buf, ctrl.Page()); err != nil {
		slog.Error("render page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, http.StatusOK, buf.String())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	ctrl := s.controller(w, r)
	id := view.ControlID(chi.URLParam(r, "control"))
	ctrl.Page().Apply(r.PostForm)

	res, err := ctrl.Click(r.Context(), id)
	if errors.Is(err, view.ErrUnknownControl) {
		writeError(w, http.StatusNotFound, "unknown control")
		return
	}
	if err != nil {
		slog.Error("click failed", "control", id, "error", err)
		writeError(w, http.StatusInternalServerError, "click failed")
		return
	}

	s.metrics.ObserveClick(string(id), clickOutcomes[res.Outcome])
	var he *view.HTTPError
	if errors.As(res.Err, &he) && he.Status >= http.StatusInternalServerError && s.alerts.Enabled() {
		go s.alerts.UpstreamFailure(controlEndpoints[id], he.Status)
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	target, _ := ctrl.Target(id)
	writeHTML(w, http.StatusOK, string(target.HTML()))
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(w, r)
	c, ok := ctrl.Page().Control(view.ControlID(chi.URLParam(r, "control")))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown control")
		return
	}
	html, err := ctrl.Renderer().Control(c)
	if err != nil {
		slog.Error("render control failed", "control", c.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render control")
		return
	}
	writeHTML(w, http.StatusOK, string(html))
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(w, r)
	reg, ok := ctrl.Page().Region(chi.URLParam(r, "region"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown region")
		return
	}
	writeHTML(w, http.StatusOK, string(reg.HTML()))
}
