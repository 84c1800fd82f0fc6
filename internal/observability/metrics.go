package observability

import (
	"strconv"
	"sync"
	"time"
)

// Degradation kinds recorded when an optional dependency falls back to its default.
const (
	DegradedInference    = "inference"
	DegradedAvailability = "availability"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	errorCount      map[string]int64
	assignmentCount map[string]int64
	degradedCount   map[string]int64
	requestLatency  time.Duration
	assignLatency   time.Duration
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests           map[string]int64 `json:"requests"`
	Errors             map[string]int64 `json:"errors"`
	Assignments        map[string]int64 `json:"assignments"`
	Degraded           map[string]int64 `json:"degraded"`
	RequestLatencyS    float64          `json:"request_latency_seconds_total"`
	AssignmentLatencyS float64          `json:"assignment_latency_seconds_total"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:    make(map[string]int64),
		errorCount:      make(map[string]int64),
		assignmentCount: make(map[string]int64),
		degradedCount:   make(map[string]int64),
	}
}

// RecordRequest counts a request by route, method and status and adds its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestLatency += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAssignment counts an assignment outcome by status and tier.
func (m *Metrics) RecordAssignment(status string, tier int, duration time.Duration) {
	if m == nil {
		return
	}
	key := status + "|tier_" + strconv.Itoa(tier)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignmentCount[key]++
	m.assignLatency += duration
}

// RecordDegraded counts a dependency that fell back to its default answer.
func (m *Metrics) RecordDegraded(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degradedCount[kind]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests:           copyCounts(m.requestCount),
		Errors:             copyCounts(m.errorCount),
		Assignments:        copyCounts(m.assignmentCount),
		Degraded:           copyCounts(m.degradedCount),
		RequestLatencyS:    m.requestLatency.Seconds(),
		AssignmentLatencyS: m.assignLatency.Seconds(),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
