package domain

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoCredits       = errors.New("no credits remaining")
	ErrBusy            = errors.New("request already in flight")
	ErrNoPlan          = errors.New("no plan selected")
	ErrUnknownPlan     = errors.New("unknown plan")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrUpgradeFailed   = errors.New("plan upgrade failed")
	ErrInvalidInput    = errors.New("invalid input")
)
