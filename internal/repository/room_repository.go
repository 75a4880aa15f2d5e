package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
)

// RoomRepository reads rooms across all sites.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository builds repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListActive returns active rooms on active sites, ordered by id.
func (r *RoomRepository) ListActive(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT r.id, r.name, r.type, r.capacity, r.site_id, r.active, r.created_at
FROM rooms r JOIN sites s ON s.id = r.site_id
WHERE r.active = TRUE AND s.active = TRUE ORDER BY r.id ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list active rooms: %w", err)
	}
	return rooms, nil
}
