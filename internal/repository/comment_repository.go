package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// CommentRepo persists free-text reviews on services.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment and populates its generated id.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (text, rating, user_id, professional_service_id) VALUES (?,?,?,?)",
		c.Text, c.Rating, c.UserID, c.ProfessionalServiceID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByService returns all comments on a service, newest first.
func (r *CommentRepo) ListByService(ctx context.Context, serviceID uint64) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, text, rating, user_id, professional_service_id
		 FROM comments WHERE professional_service_id=? ORDER BY id DESC`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.Rating, &c.UserID, &c.ProfessionalServiceID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
