package wallet

import "errors"

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrInvalidAmount  = errors.New("invalid amount")
)
