package domain

import "errors"

var (
	ErrPaymentNotCompleted = errors.New("payment was not completed")
	ErrPaymentMismatch     = errors.New("captured amount does not match the order total")
	ErrPaymentUnavailable  = errors.New("payment provider unavailable")
)
