package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Repository persists and queries billing events.
type Repository interface {
	InsertEvent(ctx context.Context, ev Event) error
	EventsWindow(ctx context.Context, f Filters, limit, offset int) ([]Event, error)
}

// Service records billing events and serves their timeline. A nil repository
// degrades to log-only operation so the billing flow never depends on the
// audit database being reachable.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds the audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Record stores one billing event. Persistence failures are logged and
// swallowed; auditing must never fail a sale.
func (s *Service) Record(ctx context.Context, action, entity, entityID, detail string) {
	ev := Event{
		At:       time.Now().UTC(),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	s.logger.Info("audit event",
		slog.String("action", ev.Action),
		slog.String("entity", ev.Entity),
		slog.String("entity_id", ev.EntityID),
		slog.String("detail", ev.Detail),
	)
	if s.repo == nil {
		return
	}
	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Error("persist audit event", slog.String("action", ev.Action), slog.Any("error", err))
	}
}

// Timeline fetches one page of recorded events, newest first.
func (s *Service) Timeline(ctx context.Context, f Filters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	// Fetch one extra row to learn whether a next page exists.
	rows, err := s.repo.EventsWindow(ctx, f, pageSize+1, offset)
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
