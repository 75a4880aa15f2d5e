package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
)

// SiteRepository reads campuses.
type SiteRepository struct {
	db *sqlx.DB
}

// NewSiteRepository builds repository.
func NewSiteRepository(db *sqlx.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// ListActive returns active sites ordered by id.
func (r *SiteRepository) ListActive(ctx context.Context) ([]models.Site, error) {
	const query = `SELECT id, name, active, created_at FROM sites WHERE active = TRUE ORDER BY id ASC`
	var sites []models.Site
	if err := r.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, fmt.Errorf("list active sites: %w", err)
	}
	return sites, nil
}
