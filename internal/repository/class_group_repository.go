package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
)

// ClassGroupRepository reads class groups.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository builds repository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

// ListActive returns active class groups ordered by id.
func (r *ClassGroupRepository) ListActive(ctx context.Context) ([]models.ClassGroup, error) {
	const query = `SELECT id, name, shift, active, created_at, updated_at
FROM class_groups WHERE active = TRUE ORDER BY id ASC`
	var groups []models.ClassGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list active class groups: %w", err)
	}
	return groups, nil
}
