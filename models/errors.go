package models

import "errors"

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrTransactionNotFound is returned when a transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrValidation marks user-correctable input errors.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientPayment is returned when cash received does not cover the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
)
