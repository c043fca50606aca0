package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Response is a canned reply for one API path.
type Response struct {
	Status int
	Body   string
}

// FakeTradingAPI stands in for the trading results API. Paths without a
// canned response answer 404.
type FakeTradingAPI struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []*url.URL
}

func NewFakeTradingAPI(t *testing.T) *FakeTradingAPI {
	t.Helper()

	f := &FakeTradingAPI{responses: make(map[string]Response)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Respond sets the reply for path, e.g. "/dynamics/".
func (f *FakeTradingAPI) Respond(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = Response{Status: status, Body: body}
}

// Requests returns the URLs received so far, in arrival order.
func (f *FakeTradingAPI) Requests() []*url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*url.URL, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeTradingAPI) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *FakeTradingAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	u := *r.URL
	f.requests = append(f.requests, &u)
	resp, ok := f.responses[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write([]byte(resp.Body))
}
