package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// MaxServiceImages caps how many images a single service may hold.
const MaxServiceImages = 10

// ImageRepo persists service and profile image rows.  The files themselves
// live on disk; this layer only tracks their public URLs.
type ImageRepo struct{ DB *sql.DB }

func NewImageRepo(db *sql.DB) *ImageRepo { return &ImageRepo{DB: db} }

// CountForService returns how many images a service currently holds.
func (r *ImageRepo) CountForService(ctx context.Context, serviceID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM service_images WHERE service_id=?", serviceID).Scan(&n)
	return n, err
}

// AddServiceImages inserts one row per stored file in a single statement.
// An empty batch is a no-op.
func (r *ImageRepo) AddServiceImages(ctx context.Context, serviceID uint64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	query := "INSERT INTO service_images (url, service_id) VALUES "
	args := make([]any, 0, len(urls)*2)
	for i, u := range urls {
		if i > 0 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, u, serviceID)
	}
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

// GetServiceImage fetches one image row together with the id of the user
// owning the service it belongs to, so handlers can run the ownership guard
// without a second query.
func (r *ImageRepo) GetServiceImage(ctx context.Context, imageID uint64) (model.ServiceImage, uint64, error) {
	var (
		img     model.ServiceImage
		ownerID uint64
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT i.id, i.url, i.service_id, s.professional_id
		 FROM service_images i
		 JOIN professional_services s ON s.id = i.service_id
		 WHERE i.id=? LIMIT 1`, imageID).
		Scan(&img.ID, &img.URL, &img.ServiceID, &ownerID)
	return img, ownerID, err
}

// DeleteServiceImage removes one image row.
func (r *ImageRepo) DeleteServiceImage(ctx context.Context, imageID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM service_images WHERE id=?", imageID)
	return err
}

// ReplaceProfileImage stores a user's avatar, overwriting any previous row.
// Both statements run in one transaction so the user never ends up with two
// avatars or none.
func (r *ImageRepo) ReplaceProfileImage(ctx context.Context, userID uint64, url string) (model.ProfileImage, error) {
	var img model.ProfileImage
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return img, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM profile_images WHERE user_id=?", userID); err != nil {
		return img, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO profile_images (url, user_id) VALUES (?,?)", url, userID)
	if err != nil {
		return img, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return img, err
	}
	img = model.ProfileImage{ID: uint64(id), URL: url, UserID: userID}
	return img, tx.Commit()
}

// GetProfileImage returns the user's current avatar row, if any.
func (r *ImageRepo) GetProfileImage(ctx context.Context, userID uint64) (model.ProfileImage, error) {
	var img model.ProfileImage
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, url, user_id FROM profile_images WHERE user_id=? LIMIT 1", userID).
		Scan(&img.ID, &img.URL, &img.UserID)
	return img, err
}
