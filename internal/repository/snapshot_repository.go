package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-course-api/internal/models"
)

const defaultSnapshotLimit = 50

// SnapshotRepository persists archived term documents in term_snapshots.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotSchema = `CREATE TABLE IF NOT EXISTS term_snapshots (
	id UUID PRIMARY KEY,
	term_code TEXT NOT NULL,
	course_count INTEGER NOT NULL,
	document TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_term_snapshots_term_created ON term_snapshots (term_code, created_at DESC)`

// EnsureSchema creates the term_snapshots table when missing.
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("ensure term_snapshots schema: %w", err)
	}
	return nil
}

// Create inserts a snapshot row, filling the id and timestamp when empty.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *models.TermSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO term_snapshots (id, term_code, course_count, document, created_at)
VALUES (:id, :term_code, :course_count, :document, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("create term snapshot: %w", err)
	}
	return nil
}

// GetByID returns a snapshot including its document.
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*models.TermSnapshot, error) {
	const query = `SELECT id, term_code, course_count, document, created_at FROM term_snapshots WHERE id = $1`
	var snapshot models.TermSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, id); err != nil {
		return nil, fmt.Errorf("get term snapshot: %w", err)
	}
	return &snapshot, nil
}

// List returns the newest snapshots without their documents, optionally
// restricted to one term code.
func (r *SnapshotRepository) List(ctx context.Context, termCode string, limit int) ([]models.TermSnapshot, error) {
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	query := `SELECT id, term_code, course_count, created_at FROM term_snapshots`
	args := make([]interface{}, 0, 2)
	if termCode != "" {
		query += ` WHERE term_code = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, termCode, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}
	snapshots := make([]models.TermSnapshot, 0)
	if err := r.db.SelectContext(ctx, &snapshots, query, args...); err != nil {
		return nil, fmt.Errorf("list term snapshots: %w", err)
	}
	return snapshots, nil
}
