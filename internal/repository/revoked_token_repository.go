package repository

import (
	"context"
	"database/sql"
	"strings"
)

// RevokedTokenRepo persists tokens surrendered at logout (single
// 'token_hash' column).  Nothing in the verification path reads this table;
// it is an audit trail of ended sessions.
type RevokedTokenRepo struct{ DB *sql.DB }

func NewRevokedTokenRepo(db *sql.DB) *RevokedTokenRepo { return &RevokedTokenRepo{DB: db} }

// Store inserts a revoked token hash row.  Revoking the same token twice is
// a no-op rather than an error.
func (r *RevokedTokenRepo) Store(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO revoked_tokens (token_hash, revoked_at) VALUES (?, NOW())",
		tokenHash)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return nil
	}
	return err
}
