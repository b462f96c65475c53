package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avral/gatehouse/internal/auth"
	"github.com/avral/gatehouse/internal/logger"
)

// Fixed identities created on first start.
const (
	seedAdminUsername = "admin"
	seedAdminPassword = "admin123"
	seedUserUsername  = "user"
	seedUserPassword  = "password"
)

// seed inserts the fixed admin and demo identities when absent.
func (s *Store) seed(ctx context.Context) error {
	seeds := []struct {
		username string
		password string
		isAdmin  bool
	}{
		{seedAdminUsername, seedAdminPassword, true},
		{seedUserUsername, seedUserPassword, false},
	}

	for _, sd := range seeds {
		var existing string
		err := s.db.QueryRowContext(ctx,
			`SELECT username FROM users WHERE username = ?`, sd.username).Scan(&existing)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking seed user %q: %w", sd.username, err)
		}

		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?)`,
			sd.username, auth.HashPassword(sd.password), sd.isAdmin); err != nil {
			return fmt.Errorf("seeding user %q: %w", sd.username, err)
		}
		logger.Info("Seeded account %s (admin: %t)", sd.username, sd.isAdmin)
	}
	return nil
}
