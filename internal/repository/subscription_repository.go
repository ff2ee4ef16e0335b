package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// SubscriptionRepo persists plan purchases.  A user holds at most one
// subscription row by query discipline: purchasing after expiry rewrites the
// existing row instead of inserting a second one.  This is not backed by a
// uniqueness constraint, so concurrent purchases could still create
// duplicates; flagged, not fixed.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// ListTypes returns the purchasable plans.
func (r *SubscriptionRepo) ListTypes(ctx context.Context) ([]model.SubscriptionType, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, price FROM subscription_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SubscriptionType
	for rows.Next() {
		var t model.SubscriptionType
		if err := rows.Scan(&t.ID, &t.Name, &t.Price); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetType fetches one plan by id.
func (r *SubscriptionRepo) GetType(ctx context.Context, id uint64) (model.SubscriptionType, error) {
	var t model.SubscriptionType
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, price FROM subscription_types WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Name, &t.Price)
	return t, err
}

// GetByUser returns the user's subscription row regardless of whether it is
// still active.
func (r *SubscriptionRepo) GetByUser(ctx context.Context, userID uint64) (model.Subscription, error) {
	var s model.Subscription
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, start_date, end_date, user_id, subscription_type_id
		 FROM subscriptions WHERE user_id=? LIMIT 1`, userID).
		Scan(&s.ID, &s.StartDate, &s.EndDate, &s.UserID, &s.SubscriptionTypeID)
	return s, err
}

// HasActive reports whether the user holds a subscription whose end date
// lies in the future.
func (r *SubscriptionRepo) HasActive(ctx context.Context, userID uint64) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM subscriptions WHERE user_id=? AND end_date > ? LIMIT 1",
		userID, time.Now().UTC()).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Purchase gives the user a year of the requested plan.  An active
// subscription maps to ErrConflict; an expired row is renewed in place;
// otherwise a new row is inserted.  The returned subscription reflects the
// committed state.
func (r *SubscriptionRepo) Purchase(ctx context.Context, userID, typeID uint64) (model.Subscription, error) {
	now := time.Now().UTC()
	end := now.AddDate(1, 0, 0)
	out := model.Subscription{
		StartDate:          now,
		EndDate:            end,
		UserID:             userID,
		SubscriptionTypeID: typeID,
	}

	existing, err := r.GetByUser(ctx, userID)
	switch {
	case err == sql.ErrNoRows:
		res, err := r.DB.ExecContext(ctx,
			`INSERT INTO subscriptions (start_date, end_date, user_id, subscription_type_id)
			 VALUES (?,?,?,?)`, now, end, userID, typeID)
		if err != nil {
			return out, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return out, err
		}
		out.ID = uint64(id)
		return out, nil
	case err != nil:
		return out, err
	}

	if existing.EndDate.After(now) {
		return out, ErrConflict
	}
	// Expired: renew the existing row in place.
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE subscriptions SET start_date=?, end_date=?, subscription_type_id=? WHERE id=?",
		now, end, typeID, existing.ID); err != nil {
		return out, err
	}
	out.ID = existing.ID
	return out, nil
}
