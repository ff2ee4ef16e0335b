package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// RatingRepo persists numeric scores and keeps the denormalized
// average_rating column on the service row in step with them.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Create inserts a rating and recomputes the service average in the same
// transaction.  A second rating by the same user on the same service maps to
// ErrConflict.  The duplicate check and the average are query discipline
// only: two concurrent first ratings can race, which is an accepted gap.
func (r *RatingRepo) Create(ctx context.Context, rating *model.Rating) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM ratings WHERE user_id=? AND professional_service_id=? LIMIT 1",
		rating.UserID, rating.ProfessionalServiceID).Scan(&existing)
	if err == nil {
		return ErrConflict
	}
	if err != sql.ErrNoRows {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO ratings (rating, user_id, professional_service_id) VALUES (?,?,?)",
		rating.Rating, rating.UserID, rating.ProfessionalServiceID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rating.ID = uint64(id)

	// AVG sees the row inserted above because it runs inside the same tx.
	if _, err := tx.ExecContext(ctx,
		`UPDATE professional_services
		 SET average_rating = (SELECT AVG(rating) FROM ratings WHERE professional_service_id=?)
		 WHERE id=?`,
		rating.ProfessionalServiceID, rating.ProfessionalServiceID); err != nil {
		return err
	}
	return tx.Commit()
}
