package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/t-azam747/SecureRelief-sub003/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrWalletTaken  = errors.New("wallet already registered")
)

const (
	uniqueViolation  = "23505"
	emailConstraint  = "users_email_key"
	walletConstraint = "users_wallet_address_key"
	userColumns      = `id, name, email, password_hash, wallet_address, role, status, nonce, nonce_issued_at, created_at, updated_at`
)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, name, email, password_hash, wallet_address, role, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.WalletAddress,
		user.Role,
		user.Status,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return ErrEmailTaken
		case walletConstraint:
			return ErrWalletTaken
		}
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// FindByWallet matches addresses case-insensitively.
func (r *UserRepository) FindByWallet(ctx context.Context, address string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(wallet_address) = lower($1)`
	return scanUser(r.db.QueryRow(ctx, query, address))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// SetNonce replaces the user's nonce; a nil nonce clears it.
func (r *UserRepository) SetNonce(ctx context.Context, id string, nonce *string) (models.User, error) {
	const query = `
		UPDATE users
		SET nonce = $2,
		    nonce_issued_at = CASE WHEN $2::text IS NULL THEN NULL ELSE NOW() END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, nonce))
}

// ConsumeNonce clears the nonce only if it still equals nonce. It reports
// false when another caller consumed or replaced it first.
func (r *UserRepository) ConsumeNonce(ctx context.Context, id string, nonce string) (bool, error) {
	const query = `
		UPDATE users
		SET nonce = NULL, nonce_issued_at = NULL, updated_at = NOW()
		WHERE id = $1 AND nonce = $2
	`
	cmd, err := r.db.Exec(ctx, query, id, nonce)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	const query = `
		UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearStaleNonces drops nonces issued before cutoff and returns how many.
func (r *UserRepository) ClearStaleNonces(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
		UPDATE users
		SET nonce = NULL, nonce_issued_at = NULL, updated_at = NOW()
		WHERE nonce IS NOT NULL AND nonce_issued_at < $1
	`
	cmd, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.WalletAddress,
		&user.Role,
		&user.Status,
		&user.Nonce,
		&user.NonceIssuedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
