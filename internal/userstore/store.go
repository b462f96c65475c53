// Package userstore is the SQLite-backed credential store: one users table
// holding (username, password hash, admin flag) records.
package userstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/avral/gatehouse/internal/auth"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrUserExists       = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
)

// User is a credential record as exposed to callers. The password hash
// stays inside the package.
type User struct {
	Username string
	IsAdmin  bool
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path. The
// returned handle is long-lived and pooled by database/sql; callers own
// Close.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// busy_timeout and foreign_keys are per-connection settings; a single
	// pooled connection keeps them in force for every query.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // concurrent readers during writes
		"PRAGMA busy_timeout=5000",  // wait 5s when the database is locked
		"PRAGMA synchronous=NORMAL", // balance of safety and speed
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize runs pending schema migrations and seeds the fixed accounts.
// Safe to call on every process start.
func (s *Store) Initialize(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return s.seed(ctx)
}

// Verify checks a username/password pair. Empty inputs, an unknown user
// and a wrong password all report (false, false); callers cannot tell the
// cases apart.
func (s *Store) Verify(ctx context.Context, username, password string) (ok bool, isAdmin bool, err error) {
	if username == "" || password == "" {
		return false, false, nil
	}

	var storedHash string
	var admin bool
	row := s.db.QueryRowContext(ctx,
		`SELECT password, is_admin FROM users WHERE username = ?`, username)
	if err := row.Scan(&storedHash, &admin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("looking up user %q: %w", username, err)
	}

	if !auth.CheckPassword(password, storedHash) {
		return false, false, nil
	}
	return true, admin, nil
}

// Create inserts a new credential record. The insert runs in a
// transaction and is read back before commit to confirm persistence; any
// storage fault rolls the transaction back.
func (s *Store) Create(ctx context.Context, username, password string, isAdmin bool) error {
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT username FROM users WHERE username = ?`, username).Scan(&existing)
	switch {
	case err == nil:
		return ErrUserExists
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking for existing user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?)`,
		username, auth.HashPassword(password), isAdmin); err != nil {
		return fmt.Errorf("inserting user %q: %w", username, err)
	}

	// Read the row back before committing.
	var confirm string
	if err := tx.QueryRowContext(ctx,
		`SELECT username FROM users WHERE username = ?`, username).Scan(&confirm); err != nil {
		return fmt.Errorf("confirming user %q: %w", username, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user %q: %w", username, err)
	}
	return nil
}

// UpdatePassword overwrites the stored hash for an existing username.
func (s *Store) UpdatePassword(ctx context.Context, username, newPassword string) error {
	if username == "" || newPassword == "" {
		return ErrEmptyCredentials
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = ? WHERE username = ?`,
		auth.HashPassword(newPassword), username)
	if err != nil {
		return fmt.Errorf("updating password for %q: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating password for %q: %w", username, err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListOthers returns every record except the fixed admin identity, in
// store order. Callers must not depend on the order.
func (s *Store) ListOthers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, is_admin FROM users WHERE username != ?`, seedAdminUsername)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.IsAdmin); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
