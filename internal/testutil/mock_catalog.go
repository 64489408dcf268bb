// Package testutil provides a fake Blitzr API for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TestAPIKey is the only key MockCatalog accepts.
const TestAPIKey = "test-key"

// MockResponse is a canned answer for one endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is a request received by MockCatalog.
type RecordedRequest struct {
	Endpoint string
	Query    url.Values
	Header   http.Header
}

type failure struct {
	status    int
	message   string
	remaining int // -1 for unlimited
	start     int // -1 for every offset
}

// MockCatalog serves Blitzr-style JSON lists and objects.
//
// Lists registered with SetList honour the start and limit query parameters
// the way the real API does. Endpoints are given relative to the API root,
// e.g. "artist/releases/".
type MockCatalog struct {
	server *httptest.Server
	mu     sync.RWMutex

	lists     map[string][]any
	search    map[string]bool
	objects   map[string]any
	responses map[string]MockResponse
	failures  map[string][]*failure
	requests  []RecordedRequest

	quotaRemaining int
	quotaReset     int
}

// NewMockCatalog starts a mock server. Call Close when done.
func NewMockCatalog() *MockCatalog {
	m := &MockCatalog{
		lists:          make(map[string][]any),
		search:         make(map[string]bool),
		objects:        make(map[string]any),
		responses:      make(map[string]MockResponse),
		failures:       make(map[string][]*failure),
		quotaRemaining: 1000,
		quotaReset:     60,
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the API root of the mock server, with a trailing slash.
func (m *MockCatalog) URL() string {
	return m.server.URL + "/"
}

// Close shuts the server down.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// SetList registers a paginated list endpoint.
func (m *MockCatalog) SetList(endpoint string, items []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[endpoint] = items
	delete(m.search, endpoint)
}

// SetSearchResults registers a paginated search endpoint that answers with
// {"total": n, "results": [...]}.
func (m *MockCatalog) SetSearchResults(endpoint string, items []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[endpoint] = items
	m.search[endpoint] = true
}

// SetObject registers an endpoint answering with a single JSON value.
func (m *MockCatalog) SetObject(endpoint string, obj any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[endpoint] = obj
}

// SetResponse registers a raw canned response, taking precedence over lists and objects.
func (m *MockCatalog) SetResponse(endpoint string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[endpoint] = resp
}

// FailNext makes the next n requests to endpoint fail with status. A
// negative n fails every request.
func (m *MockCatalog) FailNext(endpoint string, status int, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = append(m.failures[endpoint], &failure{
		status:    status,
		message:   http.StatusText(status),
		remaining: n,
		start:     -1,
	})
}

// FailAtStart makes every request to endpoint with the given start offset
// fail with status.
func (m *MockCatalog) FailAtStart(endpoint string, start int, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = append(m.failures[endpoint], &failure{
		status:    status,
		message:   http.StatusText(status),
		remaining: -1,
		start:     start,
	})
}

// SetQuota sets the X-RateLimit headers sent with every answer.
func (m *MockCatalog) SetQuota(remaining, resetSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotaRemaining = remaining
	m.quotaReset = resetSeconds
}

// Requests returns a copy of all recorded requests.
func (m *MockCatalog) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// RequestsTo returns the recorded requests for one endpoint.
func (m *MockCatalog) RequestsTo(endpoint string) []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []RecordedRequest
	for _, r := range m.requests {
		if r.Endpoint == endpoint {
			out = append(out, r)
		}
	}
	return out
}

// Reset forgets recorded requests.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

func (m *MockCatalog) handle(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/")
	query := r.URL.Query()

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Endpoint: endpoint,
		Query:    query,
		Header:   r.Header.Clone(),
	})
	remaining, reset := m.quotaRemaining, m.quotaReset
	m.mu.Unlock()

	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(reset))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if query.Get("key") != TestAPIKey {
		writeError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	start := intParam(query, "start", 0)
	limit := intParam(query, "limit", 10)

	if f := m.takeFailure(endpoint, start); f != nil {
		writeError(w, f.status, f.message)
		return
	}

	m.mu.RLock()
	resp, hasResp := m.responses[endpoint]
	items, hasList := m.lists[endpoint]
	isSearch := m.search[endpoint]
	obj, hasObj := m.objects[endpoint]
	m.mu.RUnlock()

	switch {
	case hasResp:
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	case hasList:
		page := paginate(items, start, limit)
		// Search endpoints wrap the page when asked for extras.
		if isSearch || query.Get("extras") == "true" {
			writeJSON(w, map[string]any{"total": len(items), "results": page})
			return
		}
		writeJSON(w, page)
	case hasObj:
		writeJSON(w, obj)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (m *MockCatalog) takeFailure(endpoint string, start int) *failure {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.failures[endpoint] {
		if f.start >= 0 && f.start != start {
			continue
		}
		if f.remaining == 0 {
			continue
		}
		if f.remaining > 0 {
			f.remaining--
		}
		return f
	}
	return nil
}

func paginate(items []any, start, limit int) []any {
	if start >= len(items) || limit <= 0 {
		return []any{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func intParam(q url.Values, name string, def int) int {
	v, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// Objects builds n JSON objects with the given name prefix, e.g. for SetList.
func Objects(n int, prefix string) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{
			"uuid": prefix + strconv.Itoa(i),
			"name": prefix + " " + strconv.Itoa(i),
			"slug": strings.ToLower(prefix) + "-" + strconv.Itoa(i),
		}
	}
	return out
}
