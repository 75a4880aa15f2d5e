package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/uraniaedu/urania-api/internal/models"
)

// DraftRepository manages timetable drafts.
type DraftRepository struct {
	db *sqlx.DB
}

// NewDraftRepository builds repository.
func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a draft in DRAFT status and returns its id.
func (r *DraftRepository) Create(ctx context.Context, name string) (int64, error) {
	const query = `INSERT INTO timetable_drafts (name, status, total_lessons, placed_lessons, quality_score, created_at, updated_at)
VALUES ($1, $2, 0, 0, 0, $3, $3) RETURNING id`
	var id int64
	now := time.Now().UTC()
	if err := r.db.QueryRowxContext(ctx, query, name, models.DraftStatusDraft, now).Scan(&id); err != nil {
		return 0, fmt.Errorf("create timetable draft: %w", err)
	}
	return id, nil
}

// FindByID returns a draft. sql.ErrNoRows propagates when missing.
func (r *DraftRepository) FindByID(ctx context.Context, id int64) (*models.TimetableDraft, error) {
	const query = `SELECT id, name, status, total_lessons, placed_lessons, pendencies, quality_score, created_at, updated_at
FROM timetable_drafts WHERE id = $1`
	var draft models.TimetableDraft
	if err := r.db.GetContext(ctx, &draft, query, id); err != nil {
		return nil, err
	}
	return &draft, nil
}

// UpdateStatus moves a draft to a new lifecycle status.
func (r *DraftRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id int64, status models.DraftStatus) error {
	const query = `UPDATE timetable_drafts SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update draft status: %w", err)
	}
	return nil
}

// UpdateStats rewrites the generation statistics of a draft.
func (r *DraftRepository) UpdateStats(ctx context.Context, exec sqlx.ExtContext, id int64, status models.DraftStatus, total, placed int, pendencies types.JSONText, score int) error {
	const query = `UPDATE timetable_drafts
SET status = $1, total_lessons = $2, placed_lessons = $3, pendencies = $4, quality_score = $5, updated_at = $6
WHERE id = $7`
	if _, err := r.exec(exec).ExecContext(ctx, query, status, total, placed, pendencies, score, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update draft stats: %w", err)
	}
	return nil
}
