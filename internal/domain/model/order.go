package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// 受け取り方法
type ServiceMethod string

const (
	ServiceDelivery ServiceMethod = "delivery"
	ServicePickup   ServiceMethod = "pickup"
	ServiceDineIn   ServiceMethod = "dine_in"
)

func (s ServiceMethod) Valid() bool {
	switch s {
	case ServiceDelivery, ServicePickup, ServiceDineIn:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentEWallet PaymentMethod = "ewallet"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentEWallet:
		return true
	}
	return false
}

// 決済は外部。ここではフラグだけ保存する。
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid:
		return true
	}
	return false
}

type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber    string      `gorm:"type:varchar(40);not null;uniqueIndex:uq_orders_order_number" json:"order_number"`
	UserID         int64       `gorm:"not null;index;uniqueIndex:uq_orders_user_idempotency,priority:1" json:"user_id"`
	CartID         int64       `gorm:"not null" json:"cart_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IdempotencyKey *string     `gorm:"type:varchar(255);uniqueIndex:uq_orders_user_idempotency,priority:2" json:"-"`

	ServiceMethod ServiceMethod `gorm:"type:varchar(20);not null" json:"service_method"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	//金額は呼び出し側の値（確定時に明細と突き合わせ済み）
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_fee"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	PromoCode    string     `gorm:"type:varchar(50)" json:"promo_code"`
	Instructions string     `gorm:"type:text" json:"instructions"`
	PickupTime   *time.Time `json:"pickup_time"`

	//配送先スナップショット
	AddressID        *int64 `json:"address_id"`
	DeliveryName     string `gorm:"type:varchar(255)" json:"delivery_name"`
	DeliveryPhone    string `gorm:"type:varchar(30)" json:"delivery_phone"`
	DeliveryAddress  string `gorm:"type:text" json:"delivery_address"`
	DeliveryBuilding string `gorm:"type:varchar(255)" json:"delivery_building"`
	DeliveryFloor    string `gorm:"type:varchar(50)" json:"delivery_floor"`

	//予約（dine_inのみ）
	TableID              *int64            `gorm:"index" json:"table_id"`
	TableCode            string            `gorm:"type:varchar(20)" json:"table_code"`
	GuestCount           int               `gorm:"not null;default:0" json:"guest_count"`
	DiningDate           *time.Time        `gorm:"type:date;index" json:"dining_date"`
	TimeSlotID           *int64            `json:"time_slot_id"`
	CheckInTime          *time.Time        `json:"check_in_time"`
	CheckOutTime         *time.Time        `json:"check_out_time"`
	ReservationStatus    ReservationStatus `gorm:"type:varchar(20);index" json:"reservation_status"`
	AutoExtendCount      int               `gorm:"not null;default:0" json:"auto_extend_count"`
	TotalExtendedMinutes int               `gorm:"not null;default:0" json:"total_extended_minutes"`
	CheckedInAt          *time.Time        `json:"checked_in_at"`
	CheckedOutAt         *time.Time        `json:"checked_out_at"`
	CancelledAt          *time.Time        `json:"cancelled_at"`
	OverdueFlaggedAt     *time.Time        `json:"overdue_flagged_at"`

	Items        []OrderItem        `gorm:"foreignKey:OrderID" json:"items"`
	PackageItems []OrderPackageItem `gorm:"foreignKey:OrderID" json:"package_items"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// テーブルを必要とする注文か
func (o Order) RequiresTable() bool {
	return o.ServiceMethod == ServiceDineIn && o.TableID != nil && o.ReservationStatus != ReservationNone
}
