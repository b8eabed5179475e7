package service

import (
	"context"
	"maps"
	"sync"
	"testing"
	"time"

	"nuggies/events"
	"nuggies/models"

	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws and fails the test on an out-of-range value
type scriptedRand struct {
	t      *testing.T
	values []int
	next   int
}

func newScriptedRand(t *testing.T, values ...int) *scriptedRand {
	return &scriptedRand{t: t, values: values}
}

func (r *scriptedRand) IntN(n int) int {
	require.Less(r.t, r.next, len(r.values), "rand exhausted")
	v := r.values[r.next]
	r.next++
	require.GreaterOrEqual(r.t, v, 0)
	require.Less(r.t, v, n, "scripted value out of range for IntN(%d)", n)
	return v
}

// maxRand always draws the top of the range; stateless so safe across goroutines
type maxRand struct{}

func (maxRand) IntN(n int) int { return n - 1 }

type fixedClock struct {
	mu  sync.Mutex
	day time.Time
}

func newFixedClock(y int, m time.Month, d int) *fixedClock {
	return &fixedClock{day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Today() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

func (c *fixedClock) advance(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = c.day.AddDate(0, 0, days)
}

// memoryLedger is an in-memory UnitOfWorkFactory. Writes are staged per unit
// of work and applied on commit; it does no row locking of its own.
type memoryLedger struct {
	mu       sync.Mutex
	accounts map[int64]models.Account
	history  []*models.BalanceHistory
	events   []events.Event
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{accounts: make(map[int64]models.Account)}
}

func (l *memoryLedger) Create() UnitOfWork {
	return &memoryUnitOfWork{ledger: l}
}

func (l *memoryLedger) account(userID int64) (models.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[userID]
	return a, ok
}

func (l *memoryLedger) historyFor(userID int64) []*models.BalanceHistory {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.BalanceHistory
	for _, h := range l.history {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out
}

type memoryUnitOfWork struct {
	ledger  *memoryLedger
	begun   bool
	staged  map[int64]models.Account
	history []*models.BalanceHistory
	events  []events.Event
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	u.begun = true
	u.staged = make(map[int64]models.Account)
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	u.ledger.mu.Lock()
	defer u.ledger.mu.Unlock()
	maps.Copy(u.ledger.accounts, u.staged)
	u.ledger.history = append(u.ledger.history, u.history...)
	u.ledger.events = append(u.ledger.events, u.events...)
	u.begun = false
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	u.begun = false
	u.staged = nil
	u.history = nil
	u.events = nil
	return nil
}

func (u *memoryUnitOfWork) AccountRepository() AccountRepository { return memoryAccounts{u} }

func (u *memoryUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return memoryHistory{u}
}

func (u *memoryUnitOfWork) EventBus() EventPublisher { return memoryPublisher{u} }

type memoryAccounts struct{ u *memoryUnitOfWork }

func (r memoryAccounts) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	if a, ok := r.u.staged[userID]; ok {
		return &a, nil
	}
	if a, ok := r.u.ledger.account(userID); ok {
		return &a, nil
	}
	return nil, nil
}

func (r memoryAccounts) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	return r.GetByUserID(ctx, userID)
}

func (r memoryAccounts) CreateIfAbsent(ctx context.Context, account *models.Account) (bool, error) {
	if existing, _ := r.GetByUserID(ctx, account.UserID); existing != nil {
		return false, nil
	}
	r.u.staged[account.UserID] = *account
	return true, nil
}

func (r memoryAccounts) Update(ctx context.Context, account *models.Account) error {
	if account.Balance < 0 {
		return errNegativeBalance
	}
	r.u.staged[account.UserID] = *account
	return nil
}

type memoryHistory struct{ u *memoryUnitOfWork }

func (r memoryHistory) Record(ctx context.Context, history *models.BalanceHistory) error {
	r.u.history = append(r.u.history, history)
	return nil
}

func (r memoryHistory) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	all := r.u.ledger.historyFor(userID)
	var out []*models.BalanceHistory
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

type memoryPublisher struct{ u *memoryUnitOfWork }

func (p memoryPublisher) Publish(e events.Event) { p.u.events = append(p.u.events, e) }

type constError string

func (e constError) Error() string { return string(e) }

const errNegativeBalance = constError("balance would go negative")
