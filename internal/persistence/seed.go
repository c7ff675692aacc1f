package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
)

type seedUser struct {
	name     string
	email    string
	mobile   string
	password string
}

var demoUsers = []seedUser{
	{name: "Peter", email: "peter@example.com", mobile: "298479284", password: "changeme"},
	{name: "John", email: "john@example.com", mobile: "998479284", password: "changeme"},
	{name: "Jason", email: "jason@example.com", mobile: "398479285", password: "changeme"},
}

// SeedDemoUsers inserts a few demo accounts for local development.
// ON CONFLICT keeps the operation idempotent across restarts.
func SeedDemoUsers(ctx context.Context, pool *pgxpool.Pool, bcryptCost int, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping seed")
		return nil
	}

	const query = `
        INSERT INTO users (name, email, mobile, password_hash, role, is_active)
        VALUES ($1, $2, $3, $4, $5, TRUE)
        ON CONFLICT (email) DO NOTHING`

	inserted := 0
	for _, u := range demoUsers {
		hash, err := auth.HashPassword(u.password, bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		cmd, err := pool.Exec(ctx, query, u.name, u.email, u.mobile, hash, domain.RoleCustomer)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
		inserted += int(cmd.RowsAffected())
	}

	logger.Info("demo users seeded", zap.Int("inserted", inserted))
	return nil
}
