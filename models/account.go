package models

import (
	"time"
)

// Account is a user's nugget ledger row
type Account struct {
	UserID        int64      `db:"user_id"`
	Balance       int64      `db:"balance"`
	LastClaimDate *time.Time `db:"last_claim_date"` // civil date, stored at UTC midnight
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// ClaimedOn reports whether the last claim happened on the given civil date.
func (a *Account) ClaimedOn(day time.Time) bool {
	if a.LastClaimDate == nil {
		return false
	}
	y1, m1, d1 := a.LastClaimDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ClaimResult is the outcome of a daily claim attempt
type ClaimResult struct {
	Amount         int64
	NewBalance     int64
	AlreadyClaimed bool
	FirstTime      bool
}
