package repository

import (
	"context"
	"errors"
	"fmt"

	"nuggies/database"
	"nuggies/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `user_id, balance, last_claim_date, created_at, updated_at`

// GetByUserID retrieves an account by the owner's Discord ID
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByUserIDForUpdate retrieves an account and holds its row lock until the
// surrounding transaction finishes
func (r *AccountRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE user_id = $1 FOR UPDATE`
	return r.getOne(ctx, query, userID)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, userID int64) (*models.Account, error) {
	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.LastClaimDate,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}

	return &account, nil
}

// CreateIfAbsent inserts the account. When a row for the user already exists
// nothing is written and false is returned.
func (r *AccountRepository) CreateIfAbsent(ctx context.Context, account *models.Account) (bool, error) {
	query := `
		INSERT INTO users (user_id, balance, last_claim_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, account.UserID, account.Balance, account.LastClaimDate).Scan(
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create account %d: %w", account.UserID, err)
	}

	return true, nil
}

// Update writes balance and last claim date
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE users
		SET balance = $1, last_claim_date = $2, updated_at = NOW()
		WHERE user_id = $3
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, account.Balance, account.LastClaimDate, account.UserID).Scan(&account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("account %d not found", account.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.UserID, err)
	}

	return nil
}
