package usecase

import "time"

// 入力チェックはvalidatorパッケージが実装する。
// 失敗時はNewValidationErrorで項目ごとのメッセージを返す。
type OrderValidator interface {
	// dine_inなら解釈済みの利用日（TIME_ZONE基準の0時）を返す
	ValidatePlaceOrder(in PlaceOrderInput) (time.Time, error)
	ValidateAvailability(q AvailabilityQuery) (time.Time, error)
}

type CartValidator interface {
	ValidateAddItem(in AddCartItemInput) error
	ValidateAddPackage(in AddCartPackageInput) error
}
