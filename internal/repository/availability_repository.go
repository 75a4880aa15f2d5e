package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
)

// AvailabilityRepository reads teacher availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository builds repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListAll returns every availability row, available or not, grouped by
// teacher.
func (r *AvailabilityRepository) ListAll(ctx context.Context) (map[int64][]models.TeacherAvailability, error) {
	const query = `SELECT id, teacher_id, day, available, start_time, end_time, created_at
FROM teacher_availability ORDER BY teacher_id ASC, id ASC`
	var rows []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list teacher availability: %w", err)
	}
	grouped := make(map[int64][]models.TeacherAvailability)
	for _, row := range rows {
		grouped[row.TeacherID] = append(grouped[row.TeacherID], row)
	}
	return grouped, nil
}
