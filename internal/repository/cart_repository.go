package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)

	//ACTIVEカートを行ロック(FOR UPDATE)して取得。確定処理の排他境界。
	LockActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)

	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error

	//単品・パッケージの明細を全削除
	Clear(ctx context.Context, cartID int64) error
}
