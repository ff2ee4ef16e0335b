package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// ServiceRepo provides CRUD operations for professional services and their
// weekly work schedules.  A service and its schedule rows are created in one
// transaction: a failure after the first write rolls back everything, so a
// service is never visible with half its schedule.
type ServiceRepo struct{ DB *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

const serviceColumns = `id, name, description, location, latitude, longitude,
 average_rating, featured, professional_id, subcategory_id`

func scanService(scan func(dest ...any) error) (model.ProfessionalService, error) {
	var s model.ProfessionalService
	err := scan(&s.ID, &s.Name, &s.Description, &s.Location, &s.Latitude,
		&s.Longitude, &s.AverageRating, &s.Featured, &s.ProfessionalID, &s.SubCategoryID)
	return s, err
}

// CreateWithSchedule inserts a service and its optional schedule rows
// atomically.  The generated service id is populated on s and on every
// schedule entry before commit.
func (r *ServiceRepo) CreateWithSchedule(ctx context.Context, s *model.ProfessionalService, schedule []model.WorkSchedule) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after a successful commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO professional_services
		 (name, description, location, latitude, longitude, professional_id, subcategory_id)
		 VALUES (?,?,?,?,?,?,?)`,
		s.Name, s.Description, s.Location, s.Latitude, s.Longitude,
		s.ProfessionalID, s.SubCategoryID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	if len(schedule) > 0 {
		query := "INSERT INTO work_schedules (service_id, weekday, opens_at, closes_at) VALUES "
		args := make([]any, 0, len(schedule)*4)
		for i := range schedule {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?)"
			schedule[i].ServiceID = s.ID
			args = append(args, s.ID, schedule[i].Weekday, schedule[i].OpensAt, schedule[i].ClosesAt)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	s.Schedule = schedule
	return tx.Commit()
}

// GetByID fetches a service with its images and schedule.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.ProfessionalService, error) {
	s, err := scanService(r.DB.QueryRowContext(ctx,
		"SELECT "+serviceColumns+" FROM professional_services WHERE id=? LIMIT 1", id).Scan)
	if err != nil {
		return s, err
	}

	imgRows, err := r.DB.QueryContext(ctx,
		"SELECT id, url, service_id FROM service_images WHERE service_id=? ORDER BY id", id)
	if err != nil {
		return s, err
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var img model.ServiceImage
		if err := imgRows.Scan(&img.ID, &img.URL, &img.ServiceID); err != nil {
			return s, err
		}
		s.Images = append(s.Images, img)
	}
	if err := imgRows.Err(); err != nil {
		return s, err
	}

	schedRows, err := r.DB.QueryContext(ctx,
		"SELECT id, service_id, weekday, opens_at, closes_at FROM work_schedules WHERE service_id=? ORDER BY weekday, opens_at", id)
	if err != nil {
		return s, err
	}
	defer schedRows.Close()
	for schedRows.Next() {
		var w model.WorkSchedule
		if err := schedRows.Scan(&w.ID, &w.ServiceID, &w.Weekday, &w.OpensAt, &w.ClosesAt); err != nil {
			return s, err
		}
		s.Schedule = append(s.Schedule, w)
	}
	return s, schedRows.Err()
}

// ServiceFilter carries the optional listing filters.  Lat/Lon/RangeKM are
// used together; SubCategoryID narrows by browse tree.
type ServiceFilter struct {
	SubCategoryID uint64
	Lat, Lon      float64
	RangeKM       float64
	ByDistance    bool
	Limit, Offset int
}

// List returns one page of services plus the unpaginated total.  The
// distance filter relies on MySQL's ST_Distance_Sphere over the stored
// listing coordinates.
func (r *ServiceRepo) List(ctx context.Context, f ServiceFilter) ([]model.ProfessionalService, int64, error) {
	where := []string{}
	args := []any{}
	if f.SubCategoryID != 0 {
		where = append(where, "subcategory_id = ?")
		args = append(args, f.SubCategoryID)
	}
	if f.ByDistance {
		where = append(where, "ST_Distance_Sphere(point(longitude, latitude), point(?, ?)) <= ? * 1000")
		args = append(args, f.Lon, f.Lat, f.RangeKM)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM professional_services WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit < 1 {
		limit = 15
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+serviceColumns+" FROM professional_services WHERE "+cond+
			" ORDER BY featured DESC, average_rating DESC, id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.ProfessionalService
	for rows.Next() {
		s, err := scanService(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Update rewrites the editable fields of a service owned by ownerID.  A row
// owned by someone else maps to ErrForbidden, a missing row to
// sql.ErrNoRows.
func (r *ServiceRepo) Update(ctx context.Context, id, ownerID uint64, s *model.ProfessionalService) error {
	var current uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT professional_id FROM professional_services WHERE id=? LIMIT 1", id).Scan(&current)
	if err != nil {
		return err
	}
	if current != ownerID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE professional_services
		 SET name=?, description=?, location=?, latitude=?, longitude=?, subcategory_id=?
		 WHERE id=?`,
		s.Name, s.Description, s.Location, s.Latitude, s.Longitude, s.SubCategoryID, id)
	return err
}

// SetFeatured flips the paid placement flag for a service owned by ownerID.
func (r *ServiceRepo) SetFeatured(ctx context.Context, id, ownerID uint64, featured bool) error {
	var current uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT professional_id FROM professional_services WHERE id=? LIMIT 1", id).Scan(&current)
	if err != nil {
		return err
	}
	if current != ownerID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE professional_services SET featured=? WHERE id=?", featured, id)
	return err
}
