package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"nuggies/events"
	"nuggies/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetByUserID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing account", func(t *testing.T) {
		account, err := repo.GetByUserID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("existing account", func(t *testing.T) {
		day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		created, err := repo.CreateIfAbsent(ctx, testutil.CreateTestAccountClaimedOn(111, 12, day))
		require.NoError(t, err)
		require.True(t, created)

		account, err := repo.GetByUserID(ctx, 111)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, int64(12), account.Balance)
		require.NotNil(t, account.LastClaimDate)
		assert.True(t, account.ClaimedOn(day))
	})
}

func TestAccountRepository_CreateIfAbsent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	created, err := repo.CreateIfAbsent(ctx, testutil.CreateTestAccount(222, 7))
	require.NoError(t, err)
	assert.True(t, created)

	// A second insert leaves the original row untouched
	created, err = repo.CreateIfAbsent(ctx, testutil.CreateTestAccount(222, 100))
	require.NoError(t, err)
	assert.False(t, created)

	account, err := repo.GetByUserID(ctx, 222)
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.Balance)
	assert.Nil(t, account.LastClaimDate)
}

func TestAccountRepository_CreateIfAbsent_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(balance int64) {
			defer wg.Done()
			created, err := repo.CreateIfAbsent(ctx, testutil.CreateTestAccount(333, balance))
			assert.NoError(t, err)
			results <- created
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	createdCount := 0
	for created := range results {
		if created {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)
}

func TestAccountRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount(444, 10)
	_, err := repo.CreateIfAbsent(ctx, account)
	require.NoError(t, err)

	day := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	account.Balance = 25
	account.LastClaimDate = &day
	require.NoError(t, repo.Update(ctx, account))

	stored, err := repo.GetByUserID(ctx, 444)
	require.NoError(t, err)
	assert.Equal(t, int64(25), stored.Balance)
	assert.True(t, stored.ClaimedOn(day))

	t.Run("negative balance rejected", func(t *testing.T) {
		account.Balance = -1
		assert.Error(t, repo.Update(ctx, account))
	})

	t.Run("missing account", func(t *testing.T) {
		err := repo.Update(ctx, testutil.CreateTestAccount(445, 1))
		assert.Error(t, err)
	})
}

func TestAccountRepository_GetByUserIDForUpdate_SerializesTransactions(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	_, err := NewAccountRepository(testDB.DB).CreateIfAbsent(ctx, testutil.CreateTestAccount(450, 20))
	require.NoError(t, err)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	first := factory.Create()
	require.NoError(t, first.Begin(ctx))
	defer first.Rollback()

	locked, err := first.AccountRepository().GetByUserIDForUpdate(ctx, 450)
	require.NoError(t, err)
	require.NotNil(t, locked)

	type read struct {
		balance int64
		err     error
	}
	second := make(chan read, 1)
	go func() {
		uow := factory.Create()
		if err := uow.Begin(ctx); err != nil {
			second <- read{err: err}
			return
		}
		defer uow.Rollback()
		account, err := uow.AccountRepository().GetByUserIDForUpdate(ctx, 450)
		if err != nil {
			second <- read{err: err}
			return
		}
		second <- read{balance: account.Balance}
	}()

	select {
	case r := <-second:
		t.Fatalf("second transaction read the row while it was locked: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	locked.Balance = 15
	require.NoError(t, first.AccountRepository().Update(ctx, locked))
	require.NoError(t, first.Commit())

	select {
	case r := <-second:
		require.NoError(t, r.err)
		assert.Equal(t, int64(15), r.balance)
	case <-time.After(5 * time.Second):
		t.Fatal("second transaction never acquired the row")
	}
}
