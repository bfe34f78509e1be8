// Package testutil provides testing utilities for the report export client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Failure describes how a mock page request should fail.
type Failure struct {
	// StatusCode, when non-zero, makes the server answer with this HTTP
	// status and a plain text body instead of a GraphQL response.
	StatusCode int

	// Message is returned as a GraphQL error when StatusCode is zero.
	Message string

	// Extensions is attached to the GraphQL error, if set.
	Extensions map[string]any
}

// requestEnvelope is the subset of the GraphQL request body the mock reads.
type requestEnvelope struct {
	OperationName string `json:"operationName"`
	Query         string `json:"query"`
	Variables     struct {
		UUID       string `json:"uuid"`
		Pagination struct {
			Page     int `json:"page"`
			PageSize int `json:"pageSize"`
		} `json:"pagination"`
		Filter  json.RawMessage `json:"filter"`
		Sorting json.RawMessage `json:"sorting"`
	} `json:"variables"`
}

// MockReportAPI is a configurable mock GraphQL reporting server for testing.
// It serves the reportData query from an in-memory dataset, slicing items by
// the pagination variables of each request.
type MockReportAPI struct {
	server *httptest.Server
	mu     sync.Mutex

	items        []json.RawMessage
	totalItems   *int
	failures     map[int]Failure
	delays       map[int]time.Duration
	rawResponses map[int]string

	// Tracking
	RequestCount      int
	PageRequests      map[int]int
	LastAuthorization string
	LastOperation     string
	LastUUID          string
	LastFilter        json.RawMessage
	LastSorting       json.RawMessage

	inFlight    int
	MaxInFlight int
}

// NewMockReportAPI creates a new mock reporting server.
func NewMockReportAPI() *MockReportAPI {
	mock := &MockReportAPI{
		failures:     make(map[int]Failure),
		delays:       make(map[int]time.Duration),
		rawResponses: make(map[int]string),
		PageRequests: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))

	return mock
}

// URL returns the mock server URL.
func (m *MockReportAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockReportAPI) Close() {
	m.server.Close()
}

// Reset clears the dataset, scripted behaviors, and tracking counters.
func (m *MockReportAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.totalItems = nil
	m.failures = make(map[int]Failure)
	m.delays = make(map[int]time.Duration)
	m.rawResponses = make(map[int]string)
	m.RequestCount = 0
	m.PageRequests = make(map[int]int)
	m.LastAuthorization = ""
	m.LastOperation = ""
	m.LastUUID = ""
	m.LastFilter = nil
	m.LastSorting = nil
	m.inFlight = 0
	m.MaxInFlight = 0
}

// SetItems configures the dataset served across pages.
func (m *MockReportAPI) SetItems(items []json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

// SeedItems fills the dataset with n generated records of the form
// {"id": <i>} so pages are distinguishable by content.
func (m *MockReportAPI) SeedItems(n int) {
	items := make([]json.RawMessage, n)
	for i := range items {
		items[i] = json.RawMessage(fmt.Sprintf(`{"id":%d}`, i+1))
	}
	m.SetItems(items)
}

// SetTotalItems overrides the totalItems value reported on every page.
// Without an override the server reports len(items).
func (m *MockReportAPI) SetTotalItems(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalItems = &n
}

// FailPage scripts a failure for requests targeting the given page.
func (m *MockReportAPI) FailPage(page int, f Failure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[page] = f
}

// DelayPage delays responses for the given page.
func (m *MockReportAPI) DelayPage(page int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[page] = d
}

// SetRawResponse makes the server answer the given page with a verbatim
// body, bypassing the dataset. Useful for shape-normalization tests.
func (m *MockReportAPI) SetRawResponse(page int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawResponses[page] = body
}

func (m *MockReportAPI) handle(w http.ResponseWriter, r *http.Request) {
	var env requestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	page := env.Variables.Pagination.Page
	pageSize := env.Variables.Pagination.PageSize

	m.mu.Lock()
	m.RequestCount++
	m.PageRequests[page]++
	m.LastAuthorization = r.Header.Get("Authorization")
	m.LastOperation = env.OperationName
	m.LastUUID = env.Variables.UUID
	m.LastFilter = env.Variables.Filter
	m.LastSorting = env.Variables.Sorting

	m.inFlight++
	if m.inFlight > m.MaxInFlight {
		m.MaxInFlight = m.inFlight
	}

	delay := m.delays[page]
	raw, hasRaw := m.rawResponses[page]
	failure, hasFailure := m.failures[page]
	items := m.items
	total := len(m.items)
	if m.totalItems != nil {
		total = *m.totalItems
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	if hasRaw {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, raw)
		return
	}

	if hasFailure {
		if failure.StatusCode != 0 {
			http.Error(w, "mock server failure", failure.StatusCode)
			return
		}
		writeJSON(w, map[string]any{
			"data": nil,
			"errors": []map[string]any{{
				"message":    failure.Message,
				"extensions": failure.Extensions,
			}},
		})
		return
	}

	if page < 1 || pageSize < 1 {
		writeJSON(w, map[string]any{
			"data": nil,
			"errors": []map[string]any{{
				"message": "invalid pagination variables",
			}},
		})
		return
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	pageItems := items[start:end]
	if pageItems == nil {
		pageItems = []json.RawMessage{}
	}

	writeJSON(w, map[string]any{
		"data": map[string]any{
			"reportData": map[string]any{
				"items":      pageItems,
				"totalItems": total,
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
