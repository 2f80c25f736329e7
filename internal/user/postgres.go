package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists users and their federated identities in
// Postgres. Email uniqueness is enforced by a unique index over
// LOWER(email), so concurrent creates with the same address cannot
// both succeed.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER(TRIM($1))
	`, email))
	if err != nil {
		return User{}, err
	}
	return s.attachIdentities(ctx, u)
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
	if err != nil {
		return User{}, err
	}
	return s.attachIdentities(ctx, u)
}

func (s *PostgresStore) Create(ctx context.Context, u User) (User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var saved User
	var hash sql.NullString
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, TRIM($2), $3)
		RETURNING id, name, email, password_hash, created_at, updated_at
	`, u.Name, u.Email, nullString(u.PasswordHash)).Scan(
		&saved.ID, &saved.Name, &saved.Email, &hash, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	if hash.Valid {
		saved.PasswordHash = &hash.String
	}

	for provider, subject := range u.FederatedIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO identities (user_id, provider, provider_user_id)
			VALUES ($1, $2, $3)
		`, saved.ID, provider, subject)
		if err != nil {
			return User{}, fmt.Errorf("failed to create identity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("failed to commit user create: %w", err)
	}

	saved.FederatedIDs = u.FederatedIDs
	return saved, nil
}

func (s *PostgresStore) scanUser(row *sql.Row) (User, error) {
	var u User
	var hash sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if hash.Valid {
		u.PasswordHash = &hash.String
	}
	return u, nil
}

func (s *PostgresStore) attachIdentities(ctx context.Context, u User) (User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, provider_user_id
		FROM identities
		WHERE user_id = $1
	`, u.ID)
	if err != nil {
		return User{}, fmt.Errorf("failed to get identities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var provider, subject string
		if err := rows.Scan(&provider, &subject); err != nil {
			return User{}, fmt.Errorf("failed to scan identity: %w", err)
		}
		if u.FederatedIDs == nil {
			u.FederatedIDs = map[string]string{}
		}
		u.FederatedIDs[provider] = subject
	}
	if err := rows.Err(); err != nil {
		return User{}, fmt.Errorf("failed to read identities: %w", err)
	}
	return u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
