package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	//一意制約違反
	ErrDuplicateOrderNumber    = errors.New("duplicate order number")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)
