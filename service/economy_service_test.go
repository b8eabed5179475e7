package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nuggies/events"
	"nuggies/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type economyMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	accounts  *MockAccountRepository
	history   *MockBalanceHistoryRepository
	publisher *MockEventPublisher
}

func newEconomyMocks() *economyMocks {
	m := &economyMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		accounts:  new(MockAccountRepository),
		history:   new(MockBalanceHistoryRepository),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.accounts, m.history, m.publisher)
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *economyMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
	m.history.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestEconomyService_ClaimDaily_FirstTime(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	clock := newFixedClock(2024, time.March, 10)

	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t, 9)), WithClock(clock))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.accounts.On("GetByUserIDForUpdate", ctx, int64(123456)).Return(nil, nil)
	m.accounts.On("CreateIfAbsent", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.UserID == 123456 &&
			a.Balance == 10 &&
			a.LastClaimDate != nil &&
			a.LastClaimDate.Equal(clock.Today())
	})).Return(true, nil)

	m.history.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 123456 &&
			h.BalanceBefore == 0 &&
			h.BalanceAfter == 10 &&
			h.ChangeAmount == 10 &&
			h.TransactionType == models.TransactionTypeFirstClaim
	})).Return(nil)

	m.publisher.On("Publish", events.BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      0,
		NewBalance:      10,
		TransactionType: models.TransactionTypeFirstClaim,
		ChangeAmount:    10,
	}).Return()
	m.publisher.On("Publish", events.AccountCreatedEvent{UserID: 123456, InitialBalance: 10}).Return()

	result, err := service.ClaimDaily(ctx, 123456)

	require.NoError(t, err)
	assert.Equal(t, &models.ClaimResult{Amount: 10, NewBalance: 10, FirstTime: true}, result)
	m.assertExpectations(t)
}

func TestEconomyService_ClaimDaily_AlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	clock := newFixedClock(2024, time.March, 10)
	today := clock.Today()

	// No rand draws are expected; an empty script fails the test on any call
	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t)), WithClock(clock))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(123456)).Return(&models.Account{
		UserID:        123456,
		Balance:       42,
		LastClaimDate: &today,
	}, nil)

	result, err := service.ClaimDaily(ctx, 123456)

	require.NoError(t, err)
	assert.True(t, result.AlreadyClaimed)
	assert.Equal(t, int64(42), result.NewBalance)
	assert.Zero(t, result.Amount)
	m.uow.AssertNotCalled(t, "Commit")
	m.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestEconomyService_ClaimDaily_NextDay(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	clock := newFixedClock(2024, time.March, 11)
	yesterday := clock.Today().AddDate(0, 0, -1)

	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t, 14)), WithClock(clock))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(123456)).Return(&models.Account{
		UserID:        123456,
		Balance:       42,
		LastClaimDate: &yesterday,
	}, nil)
	m.accounts.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Balance == 57 && a.ClaimedOn(clock.Today())
	})).Return(nil)
	m.history.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.BalanceBefore == 42 && h.BalanceAfter == 57 && h.TransactionType == models.TransactionTypeDailyClaim
	})).Return(nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.ClaimDaily(ctx, 123456)

	require.NoError(t, err)
	assert.Equal(t, &models.ClaimResult{Amount: 15, NewBalance: 57}, result)
	m.assertExpectations(t)
}

func TestEconomyService_ClaimDaily_LostCreateRace(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	clock := newFixedClock(2024, time.March, 10)
	today := clock.Today()

	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t, 3)), WithClock(clock))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(7)).Return(nil, nil).Once()
	m.accounts.On("CreateIfAbsent", ctx, mock.Anything).Return(false, nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(7)).Return(&models.Account{
		UserID:        7,
		Balance:       6,
		LastClaimDate: &today,
	}, nil).Once()

	result, err := service.ClaimDaily(ctx, 7)

	require.NoError(t, err)
	assert.True(t, result.AlreadyClaimed)
	assert.Equal(t, int64(6), result.NewBalance)
	m.uow.AssertNotCalled(t, "Commit")
	m.assertExpectations(t)
}

func TestEconomyService_ClaimDaily_UpdateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	clock := newFixedClock(2024, time.March, 11)
	yesterday := clock.Today().AddDate(0, 0, -1)

	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t, 0)), WithClock(clock))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(1)).Return(&models.Account{
		UserID: 1, Balance: 3, LastClaimDate: &yesterday,
	}, nil)
	m.accounts.On("Update", ctx, mock.Anything).Return(errors.New("connection reset"))

	result, err := service.ClaimDaily(ctx, 1)

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "connection reset")
	m.uow.AssertNotCalled(t, "Commit")
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	m.assertExpectations(t)
}

func TestEconomyService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("existing account", func(t *testing.T) {
		m := newEconomyMocks()
		service := NewEconomyService(m.factory)

		m.uow.On("Begin", ctx).Return(nil)
		m.uow.On("Rollback").Return(nil)
		m.accounts.On("GetByUserID", ctx, int64(5)).Return(&models.Account{UserID: 5, Balance: 77}, nil)

		balance, err := service.GetBalance(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(77), balance)
		m.assertExpectations(t)
	})

	t.Run("no account", func(t *testing.T) {
		m := newEconomyMocks()
		service := NewEconomyService(m.factory)

		m.uow.On("Begin", ctx).Return(nil)
		m.uow.On("Rollback").Return(nil)
		m.accounts.On("GetByUserID", ctx, int64(5)).Return(nil, nil)

		_, err := service.GetBalance(ctx, 5)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		m.assertExpectations(t)
	})
}

func TestEconomyService_PlaySlots_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t)))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(9)).Return(&models.Account{UserID: 9, Balance: 4}, nil)

	result, err := service.PlaySlots(ctx, 9)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	m.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestEconomyService_PlaySlots_NoAccount(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t)))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(9)).Return(nil, nil)

	_, err := service.PlaySlots(ctx, 9)

	assert.ErrorIs(t, err, ErrAccountNotFound)
	m.assertExpectations(t)
}

func TestEconomyService_PlaySlots_ExactAnteJackpot(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()

	// roll 1, gem
	service := NewEconomyService(m.factory, WithRand(newScriptedRand(t, 0, 29)))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("GetByUserIDForUpdate", ctx, int64(9)).Return(&models.Account{UserID: 9, Balance: 5}, nil)
	m.accounts.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Balance == 250
	})).Return(nil)
	m.history.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.BalanceBefore == 5 &&
			h.BalanceAfter == 250 &&
			h.ChangeAmount == 245 &&
			h.TransactionType == models.TransactionTypeSlots &&
			h.TransactionMetadata["tier"] == models.SlotTierJackpot
	})).Return(nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.PlaySlots(ctx, 9)

	require.NoError(t, err)
	assert.Equal(t, models.SlotTierJackpot, result.Outcome.Tier)
	assert.Equal(t, int64(5), result.OldBalance)
	assert.Equal(t, int64(250), result.NewBalance)
	assert.Equal(t, SlotAnte, result.Ante)
	m.assertExpectations(t)
}

func TestEconomyService_History(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory)

	entries := []*models.BalanceHistory{{UserID: 1, TransactionType: models.TransactionTypeSlots}}
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.history.On("GetByUser", ctx, int64(1), 10).Return(entries, nil)

	got, err := service.History(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	m.assertExpectations(t)
}
