package models

// Record is one stored row of any kind. Fields holds every user column;
// values read back as NULL are the empty string.
type Record struct {
	ID        int64             `json:"id"`
	Kind      Kind              `json:"kind"`
	Fields    map[string]string `json:"fields"`
	CreatedAt string            `json:"createdAt"`
}

// Get returns the value of a field, or "" when absent.
func (r Record) Get(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Label returns the value of the schema's label field.
func (r Record) Label() string {
	s, ok := SchemaFor(r.Kind)
	if !ok {
		return ""
	}
	return r.Get(s.LabelField)
}

// CreatedAtLayout is the text format of created_at: UTC, no zone suffix,
// fixed microseconds so lexical order matches time order.
const CreatedAtLayout = "2006-01-02T15:04:05.000000"

// DateLayout is the format of the daily memo date.
const DateLayout = "2006-01-02"

// SubmitRequest is the JSON payload for POST /api/records/{kind}.
type SubmitRequest struct {
	Fields map[string]string `json:"fields"`
}

// SubmitResponse is returned from POST /api/records/{kind}.
type SubmitResponse struct {
	ID   int64 `json:"id"`
	Kind Kind  `json:"kind"`
}

// ListResponse is returned from GET /api/records/{kind}.
type ListResponse struct {
	Kind    Kind     `json:"kind"`
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	// Error is set when the store could not be read; Records is then empty.
	Error string `json:"error,omitempty"`
}

// KindCount is a per-kind row count.
type KindCount struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Stats is the dashboard summary.
type Stats struct {
	Counts []KindCount `json:"counts"`
	Total  int         `json:"total"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status  string       `json:"status"`
	Backend string       `json:"backend"`
	DB      ServiceCheck `json:"db"`
	Records int          `json:"records"`
}

// ServiceCheck reports the state of one dependency.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
