package service

import "errors"

var (
	// ErrAccountNotFound means the user has never claimed and has no nuggetbox.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds means the balance is below the slot ante.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
