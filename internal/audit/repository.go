package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository stores billing events in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository wraps a pgx pool.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// InsertEvent appends one event to billing_audit.
func (r *PGRepository) InsertEvent(ctx context.Context, ev Event) error {
	const q = `INSERT INTO billing_audit (at, action, entity, entity_id, detail)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, q, ev.At, ev.Action, ev.Entity, ev.EntityID, ev.Detail); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// EventsWindow fetches a slice of the timeline, newest first.
func (r *PGRepository) EventsWindow(ctx context.Context, f Filters, limit, offset int) ([]Event, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT at, action, entity, entity_id, detail FROM billing_audit`)

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.From.IsZero() {
		conds = append(conds, "at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "at <= "+arg(f.To))
	}
	if a := strings.TrimSpace(f.Action); a != "" {
		conds = append(conds, "action = "+arg(a))
	}
	if e := strings.TrimSpace(f.Entity); e != "" {
		conds = append(conds, "entity = "+arg(e))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY at DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.At, &ev.Action, &ev.Entity, &ev.EntityID, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit events: %w", err)
	}
	return events, nil
}
