package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
)

// CurriculumRepository reads the weekly curriculum contracts.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository builds repository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// ListActive returns active curriculum rows ordered by id.
func (r *CurriculumRepository) ListActive(ctx context.Context) ([]models.CurriculumRow, error) {
	const query = `SELECT id, class_group_id, subject_id, teacher_id, lessons_per_week, active, created_at, updated_at
FROM curriculum_rows WHERE active = TRUE ORDER BY id ASC`
	var rows []models.CurriculumRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active curriculum rows: %w", err)
	}
	return rows, nil
}
