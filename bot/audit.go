package bot

import (
	"context"

	log "github.com/sirupsen/logrus"

	"nuggies/events"
)

// subscribeAudit logs every committed ledger mutation
func subscribeAudit(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(_ context.Context, event events.Event) {
		e, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"user_id":          e.UserID,
			"transaction_type": e.TransactionType,
			"change":           e.ChangeAmount,
			"old_balance":      e.OldBalance,
			"new_balance":      e.NewBalance,
		}).Info("Balance changed")
	})

	bus.Subscribe(events.EventTypeAccountCreated, func(_ context.Context, event events.Event) {
		if e, ok := event.(events.AccountCreatedEvent); ok {
			log.WithFields(log.Fields{
				"user_id": e.UserID,
				"balance": e.InitialBalance,
			}).Info("Nuggetbox opened")
		}
	})
}
