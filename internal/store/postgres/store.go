package postgres

import (
	"context"
	"crypto/cipher"
	"errors"
	"fmt"

	"solace-backend/internal/models"
	"solace-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

// PostgresStore persists users and conversation messages.
// When aead is non-nil, message content is encrypted at rest (see
// store_messages.go); user rows are stored as-is.
type PostgresStore struct {
	db   *pgxpool.Pool
	aead cipher.AEAD
}

// NewPostgresStore creates a store backed by the given pool. aead may be nil,
// in which case message content is stored in plaintext.
func NewPostgresStore(db *pgxpool.Pool, aead cipher.AEAD) *PostgresStore {
	return &PostgresStore{db: db, aead: aead}
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1`

	user := &models.User{}
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Errorf("[PostgresStore] GetUserByEmail: failed to query user for email %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	return user, nil
}

// CreateUser inserts a new user record into the database.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, hashed_password)
		VALUES ($1, $2, $3)`
	// created_at and updated_at have database defaults (NOW())

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// 23505 is unique_violation (duplicate email)
			log.Errorf("[PostgresStore] CreateUser: PostgreSQL error inserting %s: Code=%s, Message=%s", user.Email, pgErr.Code, pgErr.Message)
		} else {
			log.Errorf("[PostgresStore] CreateUser: failed to insert %s: %v", user.Email, err)
		}
		return fmt.Errorf("database error creating user: %w", err)
	}

	log.Printf("[PostgresStore] CreateUser: inserted user ID %s for email %s", user.ID, user.Email)
	return nil
}
