package audit

import (
	"context"
	"fmt"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50

	// exportLimit bounds a single export. Large enough for the retention
	// window, small enough to keep Gotenberg renders tractable.
	exportLimit = 10000
)

// Service coordinates paged listing and export over the sink.
type Service struct {
	sink Sink
}

// NewService constructs an audit query service.
func NewService(sink Sink) *Service {
	return &Service{sink: sink}
}

// List fetches one page of matching records, newest first.
func (s *Service) List(ctx context.Context, f Filter, page, pageSize int) (Result, error) {
	if s == nil || s.sink == nil {
		return Result{}, fmt.Errorf("audit: sink not configured")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	// Fetch one extra row to detect a next page without a count query.
	rows, err := s.sink.Query(ctx, f, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export fetches all matching records without paging.
func (s *Service) Export(ctx context.Context, f Filter) ([]Record, error) {
	if s == nil || s.sink == nil {
		return nil, fmt.Errorf("audit: sink not configured")
	}
	return s.sink.Query(ctx, f, exportLimit, 0)
}
