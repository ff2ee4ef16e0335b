package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// UserRepo provides persistence for the users table.  Password hashes are
// produced by the caller; this layer only moves rows.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `u.id, u.first_name, u.last_name, u.email, u.password,
 u.receive_promotions, u.apple_id, u.facebook_id, u.google_id, u.is_active,
 u.birth_date, u.role_id, r.name, u.latitude, u.longitude`

// scanUser reads one joined users/roles row.
func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.ReceivePromotions, &u.AppleID, &u.FacebookID, &u.GoogleID, &u.IsActive,
		&u.BirthDate, &u.RoleID, &u.RoleName, &u.Latitude, &u.Longitude)
	return u, err
}

// Create inserts a user and returns its ID.  The email is normalized to
// lower case before insertion so lookups stay case-insensitive.  A unique
// key collision on the email column maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password, receive_promotions,
		 google_id, is_active, birth_date, role_id, latitude, longitude)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		u.FirstName, u.LastName, u.Email, u.Password, u.ReceivePromotions,
		u.GoogleID, u.IsActive, u.BirthDate, u.RoleID, u.Latitude, u.Longitude)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id = u.role_id WHERE u.email=? LIMIT 1",
		email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id=? LIMIT 1",
		id))
}

// UpdateProfile applies the optional profile fields a user may edit about
// themselves.  Nil pointers leave the stored value untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName *string, receivePromotions *bool, lat, lon *float64) error {
	sets := []string{}
	args := []any{}
	if firstName != nil {
		sets = append(sets, "first_name=?")
		args = append(args, *firstName)
	}
	if lastName != nil {
		sets = append(sets, "last_name=?")
		args = append(args, *lastName)
	}
	if receivePromotions != nil {
		sets = append(sets, "receive_promotions=?")
		args = append(args, *receivePromotions)
	}
	if lat != nil {
		sets = append(sets, "latitude=?")
		args = append(args, *lat)
	}
	if lon != nil {
		sets = append(sets, "longitude=?")
		args = append(args, *lon)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	return err
}

// UpdateRole moves a user onto another role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, roleID uint8) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET role_id=? WHERE id=?", roleID, id)
	return err
}

// SetActive flips the suspension flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET password=? WHERE id=?", hash, id)
	return err
}

// SetGoogleID backfills or corrects the stored Google identifier after a
// verified social login.
func (r *UserRepo) SetGoogleID(ctx context.Context, id uint64, googleID string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET google_id=? WHERE id=?", googleID, id)
	return err
}

// SetBirthDate completes a social profile.  Used once: the handler rejects
// the call when a birth date is already present.
func (r *UserRepo) SetBirthDate(ctx context.Context, id uint64, birthDate time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET birth_date=? WHERE id=?", birthDate, id)
	return err
}
