package repository

import (
	"errors"
	"fmt"

	repo "orderdesk/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation = "23505"

	constraintOrderNumber    = "uq_orders_order_number"
	constraintIdempotencyKey = "uq_orders_user_idempotency"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// First系のエラーをrepo.ErrNotFoundに寄せる
func notFoundOr(err error) error {
	if isNotFound(err) {
		return repo.ErrNotFound
	}
	return err
}

// 注文の一意制約違反を番兵エラーに変換
func translateOrderConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintOrderNumber:
		return fmt.Errorf("%w: %s", repo.ErrDuplicateOrderNumber, pgErr.Detail)
	case constraintIdempotencyKey:
		return repo.ErrDuplicateIdempotencyKey
	}
	return err
}
