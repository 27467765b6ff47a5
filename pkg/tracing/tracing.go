// Package tracing records Apollo tracing (version 1) data for a single
// GraphQL request. Durations and offsets are in nanoseconds, offsets
// relative to the start of the request.
package tracing

import (
	"context"
	"sync"
	"time"
)

// Version is the Apollo tracing format version.
const Version = 1

// ExtensionKey is the response extensions key holding the Report.
const ExtensionKey = "tracing"

// Report is the tracing data attached to a response.
type Report struct {
	Version    int       `json:"version"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Duration   int64     `json:"duration"`
	Parsing    Phase     `json:"parsing"`
	Validation Phase     `json:"validation"`
	Execution  Execution `json:"execution"`
}

// Phase is the timing of a request phase.
type Phase struct {
	StartOffset int64 `json:"startOffset"`
	Duration    int64 `json:"duration"`
}

// Execution holds the timing of every resolved field.
type Execution struct {
	Resolvers []Resolver `json:"resolvers"`
}

// Resolver is the timing of one field resolution.
type Resolver struct {
	Path        []interface{} `json:"path"`
	ParentType  string        `json:"parentType"`
	FieldName   string        `json:"fieldName"`
	ReturnType  string        `json:"returnType"`
	StartOffset int64         `json:"startOffset"`
	Duration    int64         `json:"duration"`
}

// Trace collects timings for one request. A nil *Trace records nothing.
type Trace struct {
	mu         sync.Mutex
	now        func() time.Time
	start      time.Time
	parsing    Phase
	validation Phase
	resolvers  []Resolver
}

// New starts a trace at the current time.
func New() *Trace {
	return NewWithClock(time.Now)
}

// NewWithClock starts a trace reading time from now.
func NewWithClock(now func() time.Time) *Trace {
	return &Trace{now: now, start: now()}
}

// Now returns the trace clock's current time.
func (t *Trace) Now() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.now()
}

// Parsing starts timing the parse phase. Call the returned func when
// parsing ends.
func (t *Trace) Parsing() func() {
	return t.phase(func(p Phase) { t.parsing = p })
}

// Validation starts timing the validation phase.
func (t *Trace) Validation() func() {
	return t.phase(func(p Phase) { t.validation = p })
}

func (t *Trace) phase(set func(Phase)) func() {
	if t == nil {
		return func() {}
	}

	begin := t.now()

	return func() {
		end := t.now()

		t.mu.Lock()
		defer t.mu.Unlock()

		set(Phase{
			StartOffset: begin.Sub(t.start).Nanoseconds(),
			Duration:    end.Sub(begin).Nanoseconds(),
		})
	}
}

// Field records a resolver that ran from begin until now.
func (t *Trace) Field(r Resolver, begin time.Time) {
	if t == nil {
		return
	}

	end := t.now()

	r.StartOffset = begin.Sub(t.start).Nanoseconds()
	r.Duration = end.Sub(begin).Nanoseconds()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.resolvers = append(t.resolvers, r)
}

// Finish ends the trace and returns its report.
func (t *Trace) Finish() *Report {
	if t == nil {
		return nil
	}

	end := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	resolvers := make([]Resolver, len(t.resolvers))
	copy(resolvers, t.resolvers)

	return &Report{
		Version:    Version,
		StartTime:  t.start.UTC(),
		EndTime:    end.UTC(),
		Duration:   end.Sub(t.start).Nanoseconds(),
		Parsing:    t.parsing,
		Validation: t.validation,
		Execution:  Execution{Resolvers: resolvers},
	}
}

type traceKey struct{}

// WithTrace returns a context carrying t.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// FromContext returns the trace carried by ctx, or nil.
func FromContext(ctx context.Context) *Trace {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}
