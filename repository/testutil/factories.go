package testutil

import (
	"time"

	"nuggies/models"
)

// CreateTestAccount creates an account that has never claimed
func CreateTestAccount(userID int64, balance int64) *models.Account {
	return &models.Account{
		UserID:  userID,
		Balance: balance,
	}
}

// CreateTestAccountClaimedOn creates an account whose last claim was on day
func CreateTestAccountClaimedOn(userID int64, balance int64, day time.Time) *models.Account {
	account := CreateTestAccount(userID, balance)
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	account.LastClaimDate = &d
	return account
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   20,
		BalanceAfter:    15,
		ChangeAmount:    -5,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
