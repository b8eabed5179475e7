package service

import (
	"context"
	"fmt"

	"nuggies/events"
	"nuggies/models"
)

// RecordBalanceChange records a balance history entry and queues the matching
// event on the unit of work. Every ledger mutation goes through here.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Delivered only after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	if history.TransactionType == models.TransactionTypeFirstClaim {
		uow.EventBus().Publish(events.AccountCreatedEvent{
			UserID:         history.UserID,
			InitialBalance: history.BalanceAfter,
		})
	}

	return nil
}
