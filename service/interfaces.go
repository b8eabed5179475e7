package service

import (
	"context"

	"nuggies/events"
	"nuggies/models"
)

// AccountRepository defines the interface for ledger row access
type AccountRepository interface {
	// GetByUserID retrieves an account, returning nil when none exists
	GetByUserID(ctx context.Context, userID int64) (*models.Account, error)

	// GetByUserIDForUpdate retrieves an account and locks its row until the transaction ends
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Account, error)

	// CreateIfAbsent inserts the account unless a row already exists; reports whether it inserted
	CreateIfAbsent(ctx context.Context, account *models.Account) (bool, error)

	// Update persists balance and last claim date
	Update(ctx context.Context, account *models.Account) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns the most recent balance history for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases buffered events
	Commit() error

	// Rollback rolls back the transaction; a no-op after Commit
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// EconomyService defines the nugget economy operations
type EconomyService interface {
	// ClaimDaily grants the once-per-calendar-day reward, creating the account on first use
	ClaimDaily(ctx context.Context, userID int64) (*models.ClaimResult, error)

	// GetBalance returns the balance or ErrAccountNotFound
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// PlaySlots spends the ante and settles one spin
	PlaySlots(ctx context.Context, userID int64) (*models.SlotResult, error)

	// History returns recent ledger movements, newest first
	History(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}
