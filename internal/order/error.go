package order

import "errors"

var (
	ErrValidationUnmet    = errors.New("required customer information missing")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrPersistenceFailure = errors.New("order could not be saved")
	ErrDuplicateOrder     = errors.New("order already exists")
)
