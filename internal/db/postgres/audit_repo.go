package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// AuditRepository persists connection lifecycle events (spec §3, §4.7, §9)
// for operator visibility. It is purely additive: the in-memory Registry
// remains the single source of truth for Disconnect and Sender.
type AuditRepository struct {
	pool   *pgxpool.Pool
	cipher domain.CryptoService
}

// NewAuditRepository builds an AuditRepository backed by pool. cipher is
// optional: when non-nil, every event's Detail is sealed before insertion
// and opened on read, bound to the event's session ID as associated data
// so a row can't be replayed under a different session.
func NewAuditRepository(pool *pgxpool.Pool, cipher domain.CryptoService) *AuditRepository {
	return &AuditRepository{pool: pool, cipher: cipher}
}

// RecordEvent inserts one audit row. The forwardws callers discard the
// returned error, so an audit failure is neither logged nor propagated
// through the connection lifecycle it describes (spec §3: audit
// persistence never blocks Registry correctness).
func (r *AuditRepository) RecordEvent(ctx context.Context, event domain.AuditEvent) error {
	detail := event.Detail
	if r.cipher != nil && detail != "" {
		sealed, err := r.cipher.Encrypt(ctx, []byte(detail), event.SessionID[:])
		if err != nil {
			return fmt.Errorf("postgres: seal audit detail: %w", err)
		}
		detail = sealed
	}

	query := `
		INSERT INTO connection_audit (session_id, event, path_class, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, event.SessionID, event.Event, event.PathClass, detail, event.Occurred)
	if err != nil {
		return fmt.Errorf("postgres: record audit event: %w", err)
	}
	return nil
}

// AuditFilter narrows ListEvents to a subset of the audit trail for the
// admin API's future log views.
type AuditFilter struct {
	SessionID *domain.SessionID
	Event     string
	Limit     int
	Offset    int
}

// auditRow mirrors connection_audit's columns for pgx.RowToStructByName.
type auditRow struct {
	SessionID  domain.SessionID `db:"session_id"`
	Event      string           `db:"event"`
	PathClass  string           `db:"path_class"`
	Detail     string           `db:"detail"`
	OccurredAt time.Time        `db:"occurred_at"`
}

// ListEvents returns audit rows matching filter, most recent first. Limit
// is clamped to [1, 200]; a non-positive value defaults to 50.
func (r *AuditRepository) ListEvents(ctx context.Context, filter AuditFilter) ([]domain.AuditEvent, error) {
	query := `SELECT session_id, event, path_class, detail, occurred_at FROM connection_audit WHERE 1=1`
	var args []any
	argCount := 1

	if filter.SessionID != nil {
		query += fmt.Sprintf(" AND session_id = $%d", argCount)
		args = append(args, *filter.SessionID)
		argCount++
	}
	if filter.Event != "" {
		query += fmt.Sprintf(" AND event = $%d", argCount)
		args = append(args, filter.Event)
		argCount++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	} else if limit > 200 {
		limit = 200
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list audit events: %w", err)
	}
	defer rows.Close()

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[auditRow])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan audit events: %w", err)
	}

	events := make([]domain.AuditEvent, 0, len(collected))
	for _, row := range collected {
		detail := row.Detail
		if r.cipher != nil && detail != "" {
			opened, err := r.cipher.Decrypt(ctx, detail, row.SessionID[:])
			if err != nil {
				return nil, fmt.Errorf("postgres: open audit detail for session %s: %w", row.SessionID, err)
			}
			detail = string(opened)
		}

		events = append(events, domain.AuditEvent{
			SessionID: row.SessionID,
			Event:     row.Event,
			PathClass: row.PathClass,
			Detail:    detail,
			Occurred:  row.OccurredAt,
		})
	}
	return events, nil
}

var _ domain.AuditRepository = (*AuditRepository)(nil)
