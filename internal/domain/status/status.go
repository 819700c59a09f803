// Package status polls upstream services and folds the outcomes into
// per-service status reports.
package status

import (
	"github.com/okian/comind/internal/domain/platform"
)

// State is the health classification of one upstream service.
type State string

// Service states.
const (
	StateHealthy   State = "healthy"
	StateWarning   State = "warning"
	StateUnhealthy State = "unhealthy"
)

// Report is the outcome of a single check. StatusCode is set when the
// upstream answered; Error is set when the request failed. ResponseTime
// is the Unix millisecond timestamp the outcome was recorded at.
type Report struct {
	Name         string `json:"name"`
	Status       State  `json:"status"`
	StatusCode   int    `json:"statusCode,omitempty"`
	Error        string `json:"error,omitempty"`
	ResponseTime int64  `json:"responseTime"`
}

// Reports maps service keys to reports, keeping descriptor order.
type Reports struct {
	keys  []string
	byKey map[string]Report
}

func newReports(n int) Reports {
	return Reports{keys: make([]string, 0, n), byKey: make(map[string]Report, n)}
}

func (r *Reports) set(key string, rep Report) {
	if _, ok := r.byKey[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.byKey[key] = rep
}

// Len returns the number of reports.
func (r Reports) Len() int { return len(r.keys) }

// Keys returns the service keys in descriptor order.
func (r Reports) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the report for key.
func (r Reports) Get(key string) (Report, bool) {
	rep, ok := r.byKey[key]
	return rep, ok
}

// MarshalJSON implements json.Marshaler.
func (r Reports) MarshalJSON() ([]byte, error) {
	return platform.EncodeOrdered(len(r.keys), func(i int) (string, any) {
		return r.keys[i], r.byKey[r.keys[i]]
	})
}
