package entity

import "errors"

// Ledger operation failures. Services wrap these with context before
// returning them; callers match with errors.Is.
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrPriceNotFound      = errors.New("price not available for symbol")
)
