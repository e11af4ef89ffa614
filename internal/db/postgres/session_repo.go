package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// SessionRepository persists a read-model snapshot of currently open
// sessions (SPEC_FULL.md "Session snapshot repository"), so an operator
// restarting the admin dashboard doesn't lose visibility into what was
// connected. It is never consulted for Disconnect or Sender correctness;
// the in-memory Registry remains authoritative for that (spec §3).
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository builds a SessionRepository backed by db.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type sessionSnapshotRow struct {
	ID          domain.SessionID `db:"id"`
	PathClass   string           `db:"path_class"`
	ConnectedAt time.Time        `db:"connected_at"`
}

// Upsert records or refreshes one session's snapshot row.
func (r *SessionRepository) Upsert(ctx context.Context, snap domain.SessionSnapshot) error {
	query := `
		INSERT INTO session_snapshots (id, path_class, connected_at)
		VALUES (:id, :path_class, :connected_at)
		ON CONFLICT (id) DO UPDATE SET path_class = EXCLUDED.path_class
	`
	row := sessionSnapshotRow{ID: snap.ID, PathClass: snap.PathClass, ConnectedAt: snap.ConnectedAt}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("postgres: upsert session snapshot: %w", err)
	}
	return nil
}

// Delete removes a session's snapshot row once it has disconnected.
func (r *SessionRepository) Delete(ctx context.Context, id domain.SessionID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete session snapshot: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the snapshot table's contents with snaps,
// for the periodic full-resync path (SPEC_FULL.md's session snapshot
// worker).
func (r *SessionRepository) ReplaceAll(ctx context.Context, snaps []domain.SessionSnapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin snapshot replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_snapshots`); err != nil {
		return fmt.Errorf("postgres: clear session snapshots: %w", err)
	}

	for _, snap := range snaps {
		query := `INSERT INTO session_snapshots (id, path_class, connected_at) VALUES (:id, :path_class, :connected_at)`
		row := sessionSnapshotRow{ID: snap.ID, PathClass: snap.PathClass, ConnectedAt: snap.ConnectedAt}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("postgres: insert session snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit snapshot replace: %w", err)
	}
	return nil
}

// List returns every currently snapshotted session.
func (r *SessionRepository) List(ctx context.Context) ([]domain.SessionSnapshot, error) {
	var rows []sessionSnapshotRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, path_class, connected_at FROM session_snapshots ORDER BY connected_at DESC`); err != nil {
		return nil, fmt.Errorf("postgres: list session snapshots: %w", err)
	}

	snaps := make([]domain.SessionSnapshot, 0, len(rows))
	for _, row := range rows {
		snaps = append(snaps, domain.SessionSnapshot{ID: row.ID, PathClass: row.PathClass, ConnectedAt: row.ConnectedAt})
	}
	return snaps, nil
}
