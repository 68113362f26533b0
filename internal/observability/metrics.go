package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// routeFamily collapses concrete paths into their route group so counters
// stay flat regardless of how many suggestion ids pass through.
func routeFamily(path string) string {
	switch {
	case strings.HasPrefix(path, "/auth"):
		return "auth"
	case strings.HasPrefix(path, "/suggestions"):
		return "suggestions"
	case strings.HasPrefix(path, "/users"):
		return "users"
	case strings.HasPrefix(path, "/health"):
		return "health"
	default:
		return "other"
	}
}

// Metrics keeps in-memory request and error counters per route family.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]int64
	errors   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts one finished request under its route family.
func (m *Metrics) RecordRequest(path, method string, status int, _ time.Duration) {
	if m == nil {
		return
	}
	key := requestKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
}

// Requests returns the recorded count for path's route family.
func (m *Metrics) Requests(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[requestKey(path, method, status)]
}

// RecordError counts one error response by route family and error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := errorKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}

// Errors returns the recorded error count for path's route family and code.
func (m *Metrics) Errors(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[errorKey(path, method, code)]
}

func requestKey(path, method string, status int) string {
	return routeFamily(path) + "|" + method + "|" + strconv.Itoa(status)
}

func errorKey(path, method, code string) string {
	return routeFamily(path) + "|" + method + "|" + code
}
