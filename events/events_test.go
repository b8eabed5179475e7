package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nuggies/models"
)

func TestTransactionalBus_FlushDeliversToMainBus(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			received <- balanceEvent
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      5,
		NewBalance:      255,
		TransactionType: models.TransactionTypeSlots,
		ChangeAmount:    250,
	}
	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	transactionalBus.Flush()
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered after flush")
	}
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan Event, 1)
	mainBus.Subscribe(EventTypeAccountCreated, func(ctx context.Context, event Event) {
		received <- event
	})

	transactionalBus.Publish(AccountCreatedEvent{UserID: 1, InitialBalance: 7})
	transactionalBus.Discard()
	transactionalBus.Flush()

	select {
	case ev := <-received:
		t.Fatalf("discarded event was delivered: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		close(done)
	})

	require.NotPanics(t, func() {
		bus.Emit(context.Background(), BalanceChangeEvent{UserID: 1})
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran")
	}
}
