package services

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrPaymentProvider = errors.New("payment provider error")
	ErrStore           = errors.New("store error")
)
