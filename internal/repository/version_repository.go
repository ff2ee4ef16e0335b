package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// VersionRepo reads the released client versions table.
type VersionRepo struct{ DB *sql.DB }

func NewVersionRepo(db *sql.DB) *VersionRepo { return &VersionRepo{DB: db} }

// Latest returns the most recently released version.
func (r *VersionRepo) Latest(ctx context.Context) (model.Version, error) {
	var v model.Version
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, version, release_date FROM versions ORDER BY release_date DESC LIMIT 1").
		Scan(&v.ID, &v.Version, &v.ReleaseDate)
	return v, err
}
