package audit

import "context"

// InstrumentedSink counts appended records on top of another sink.
type InstrumentedSink struct {
	inner Sink
	count func(outcome string)
}

// NewInstrumentedSink wraps a sink with a per-outcome counter.
func NewInstrumentedSink(inner Sink, count func(outcome string)) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, count: count}
}

// Append delegates and counts only successful writes.
func (s *InstrumentedSink) Append(ctx context.Context, record Record) (int64, error) {
	id, err := s.inner.Append(ctx, record)
	if err == nil && s.count != nil {
		s.count(string(record.Outcome))
	}
	return id, err
}

// Query delegates unchanged.
func (s *InstrumentedSink) Query(ctx context.Context, f Filter, limit, offset int) ([]Record, error) {
	return s.inner.Query(ctx, f, limit, offset)
}

var _ Sink = (*InstrumentedSink)(nil)
