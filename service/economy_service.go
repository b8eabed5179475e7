package service

import (
	"context"
	"fmt"
	"time"

	"nuggies/models"

	log "github.com/sirupsen/logrus"
)

type economyService struct {
	uowFactory UnitOfWorkFactory
	locks      *UserLocks
	rng        Rand
	clock      Clock
}

// EconomyOption customizes the economy service
type EconomyOption func(*economyService)

// WithRand replaces the randomness source
func WithRand(r Rand) EconomyOption {
	return func(s *economyService) { s.rng = r }
}

// WithClock replaces the claim-day clock
func WithClock(c Clock) EconomyOption {
	return func(s *economyService) { s.clock = c }
}

// WithUserLocks shares a lock table with other services
func WithUserLocks(l *UserLocks) EconomyOption {
	return func(s *economyService) { s.locks = l }
}

// NewEconomyService creates the economy engine. Without options it uses the
// global random source and rolls claim days over at midnight Europe/Berlin.
func NewEconomyService(uowFactory UnitOfWorkFactory, opts ...EconomyOption) EconomyService {
	s := &economyService{
		uowFactory: uowFactory,
		locks:      NewUserLocks(),
		rng:        DefaultRand,
		clock:      NewDefaultClock(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *economyService) ClaimDaily(ctx context.Context, userID int64) (*models.ClaimResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	today := s.clock.Today()
	accounts := uow.AccountRepository()

	account, err := accounts.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account == nil {
		reward := drawDailyReward(s.rng)
		account = &models.Account{
			UserID:        userID,
			Balance:       reward,
			LastClaimDate: &today,
		}

		created, err := accounts.CreateIfAbsent(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}

		if created {
			if err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
				UserID:          userID,
				BalanceBefore:   0,
				BalanceAfter:    reward,
				ChangeAmount:    reward,
				TransactionType: models.TransactionTypeFirstClaim,
				TransactionMetadata: map[string]any{
					"claim_date": today.Format(time.DateOnly),
				},
			}); err != nil {
				return nil, err
			}

			if err := uow.Commit(); err != nil {
				return nil, fmt.Errorf("failed to commit transaction: %w", err)
			}

			log.WithFields(log.Fields{
				"userID": userID,
				"reward": reward,
			}).Info("Created nuggetbox on first claim")

			return &models.ClaimResult{
				Amount:     reward,
				NewBalance: reward,
				FirstTime:  true,
			}, nil
		}

		// Another process created the row first; continue against it
		account, err = accounts.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return nil, fmt.Errorf("account %d vanished after concurrent create", userID)
		}
	}

	if account.ClaimedOn(today) {
		return &models.ClaimResult{
			NewBalance:     account.Balance,
			AlreadyClaimed: true,
		}, nil
	}

	reward := drawDailyReward(s.rng)
	oldBalance := account.Balance
	account.Balance += reward
	account.LastClaimDate = &today

	if err := accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   oldBalance,
		BalanceAfter:    account.Balance,
		ChangeAmount:    reward,
		TransactionType: models.TransactionTypeDailyClaim,
		TransactionMetadata: map[string]any{
			"claim_date": today.Format(time.DateOnly),
		},
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ClaimResult{
		Amount:     reward,
		NewBalance: account.Balance,
	}, nil
}

func (s *economyService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, ErrAccountNotFound
	}

	return account.Balance, nil
}

func (s *economyService) PlaySlots(ctx context.Context, userID int64) (*models.SlotResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Balance < SlotAnte {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, account.Balance, SlotAnte)
	}

	outcome := SpinSlots(s.rng)
	oldBalance := account.Balance
	account.Balance = oldBalance - SlotAnte + outcome.Payout

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   oldBalance,
		BalanceAfter:    account.Balance,
		ChangeAmount:    account.Balance - oldBalance,
		TransactionType: models.TransactionTypeSlots,
		TransactionMetadata: map[string]any{
			"reels":  []models.Symbol{outcome.Reels[0], outcome.Reels[1], outcome.Reels[2]},
			"tier":   outcome.Tier,
			"payout": outcome.Payout,
		},
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":     userID,
		"tier":       outcome.Tier,
		"payout":     outcome.Payout,
		"newBalance": account.Balance,
	}).Debug("Settled slot spin")

	return &models.SlotResult{
		Outcome:    outcome,
		Ante:       SlotAnte,
		OldBalance: oldBalance,
		NewBalance: account.Balance,
	}, nil
}

func (s *economyService) History(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return history, nil
}
