package repository

import (
	"context"
	"time"

	"orderdesk/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page              int
	Limit             int
	Status            string
	ReservationStatus string
	DiningDate        *time.Time
	UserID            *int64
	From              *time.Time
	To                *time.Time
}

type OrderRepository interface {
	//明細込みで取得
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//ヘッダのみ、行ロック付き
	LockByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	// 採番済みのorderを保存しIDを埋める。
	// order_number重複はErrDuplicateOrderNumber、冪等キー重複はErrDuplicateIdempotencyKey。
	// 失敗してもトランザクションは使い続けられる（SAVEPOINTで巻き戻す）。
	Create(ctx context.Context, order *model.Order) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)

	//テーブル・日付ごとのpending予約
	ListPendingReservations(ctx context.Context, tableID int64, diningDate time.Time) ([]model.Order, error)

	//超過候補のpending予約をFOR UPDATE SKIP LOCKEDで取得
	LockOverdueReservations(ctx context.Context, now time.Time, limit int) ([]model.Order, error)

	//予約系の列だけ更新
	SaveReservation(ctx context.Context, order model.Order) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
