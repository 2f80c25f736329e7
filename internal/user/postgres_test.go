package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userColumns() []string {
	return []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}
}

func TestPostgresStore_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at, updated_at")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(id.String(), "Alice", "a@x.com", "bcrypt-digest", now, now))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT provider, provider_user_id")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"provider", "provider_user_id"}).
			AddRow("google", "sub-123"))

	store := NewPostgresStore(db)
	u, err := store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Alice", u.Name)
	require.NotNil(t, u.PasswordHash)
	assert.Equal(t, "bcrypt-digest", *u.PasswordHash)
	assert.Equal(t, map[string]string{"google": "sub-123"}, u.FederatedIDs)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at, updated_at")).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns()))

	store := NewPostgresStore(db)
	_, err = store.GetByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetByID_NullPasswordHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at, updated_at")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(id.String(), "Fed User", "fed@x.com", nil, now, now))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT provider, provider_user_id")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"provider", "provider_user_id"}))

	store := NewPostgresStore(db)
	u, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)

	assert.Nil(t, u.PasswordHash)
	assert.Empty(t, u.FederatedIDs)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Now()
	hash := "bcrypt-digest"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Alice", "a@x.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(id.String(), "Alice", "a@x.com", hash, now, now))
	mock.ExpectCommit()

	store := NewPostgresStore(db)
	saved, err := store.Create(context.Background(), User{
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: &hash,
	})
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_WithFederatedIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Fed User", "fed@x.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(id.String(), "Fed User", "fed@x.com", nil, now, now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).
		WithArgs(id, "google", "sub-123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewPostgresStore(db)
	saved, err := store.Create(context.Background(), User{
		Name:         "Fed User",
		Email:        "fed@x.com",
		FederatedIDs: map[string]string{"google": "sub-123"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"google": "sub-123"}, saved.FederatedIDs)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	hash := "bcrypt-digest"
	store := NewPostgresStore(db)
	_, err = store.Create(context.Background(), User{
		Name:         "Mallory",
		Email:        "a@x.com",
		PasswordHash: &hash,
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	require.NoError(t, mock.ExpectationsWereMet())
}
