package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditStore appends auth events (signup, login, logout, verify) to the
// auth_audit table. Failures are the caller's to ignore; auditing never
// blocks the main flow.
type AuditStore struct {
	pool *pgxpool.Pool
}

func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

func (s *AuditStore) Record(ctx context.Context, userID, email, action, ip, userAgent string, metadata map[string]any) error {
	if s == nil || s.pool == nil {
		return nil
	}
	md, _ := json.Marshal(metadata)
	var uid, em any
	if userID != "" {
		uid = userID
	}
	if email != "" {
		em = email
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auth_audit (user_id, email, action, ip, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uid, em, action, ip, userAgent, md)
	return err
}
