package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
)

// LessonRepository manages generated lesson assignments.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository builds repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteByDraft removes every lesson of a draft.
func (r *LessonRepository) DeleteByDraft(ctx context.Context, exec sqlx.ExtContext, draftID int64) error {
	const query = `DELETE FROM lesson_assignments WHERE draft_id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, draftID); err != nil {
		return fmt.Errorf("delete lessons for draft %d: %w", draftID, err)
	}
	return nil
}

// InsertBatch appends lessons for a draft. Runs row by row so it can share a
// transaction with the surrounding clear+stats sequence.
func (r *LessonRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, lessons []models.LessonAssignment) error {
	if len(lessons) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `INSERT INTO lesson_assignments (draft_id, class_group_id, subject_id, teacher_id, room_id, day, start_time, end_time, ordinal, created_at)
VALUES (:draft_id, :class_group_id, :subject_id, :teacher_id, :room_id, :day, :start_time, :end_time, :ordinal, :created_at)`

	for i := range lessons {
		lesson := &lessons[i]
		if lesson.CreatedAt.IsZero() {
			lesson.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, lesson); err != nil {
			return fmt.Errorf("insert lesson assignment: %w", err)
		}
	}
	return nil
}

// ListByDraft returns a draft's lessons ordered by class group, day and
// period. A non-zero
// classGroupID narrows to one class group.
func (r *LessonRepository) ListByDraft(ctx context.Context, draftID, classGroupID int64) ([]models.LessonAssignment, error) {
	query := `SELECT id, draft_id, class_group_id, subject_id, teacher_id, room_id, day, start_time, end_time, ordinal, created_at
FROM lesson_assignments WHERE draft_id = $1`
	args := []any{draftID}
	if classGroupID != 0 {
		query += ` AND class_group_id = $2`
		args = append(args, classGroupID)
	}
	query += ` ORDER BY class_group_id ASC, CASE day WHEN 'MON' THEN 1 WHEN 'TUE' THEN 2 WHEN 'WED' THEN 3 WHEN 'THU' THEN 4 WHEN 'FRI' THEN 5 ELSE 6 END, ordinal ASC`

	var lessons []models.LessonAssignment
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons for draft %d: %w", draftID, err)
	}
	return lessons, nil
}
