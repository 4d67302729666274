package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

// 配送先住所の窓口。注文時はコピーを取るだけ。
type AddressRepository interface {
	//作成後はIDの埋まったaddressを返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//住所IDから1件取得。無ければErrNotFound
	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
}
