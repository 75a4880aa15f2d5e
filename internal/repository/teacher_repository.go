package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
)

// TeacherRepository reads teachers and their workload rules.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository builds repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// ListActive returns active teachers ordered by id.
func (r *TeacherRepository) ListActive(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, name, max_weekly_load, activity_hours, max_consecutive, max_daily, transit_minutes, active, created_at, updated_at
FROM teachers WHERE active = TRUE ORDER BY id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list active teachers: %w", err)
	}
	return teachers, nil
}
