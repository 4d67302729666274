package usecase

import (
	"time"

	"orderdesk/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	ID               int64               `json:"id"`
	DishID           int64               `json:"dish_id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	BasePrice        decimal.Decimal     `json:"base_price"`
	PromotionalPrice decimal.NullDecimal `json:"promotional_price"`
	UnitPrice        decimal.Decimal     `json:"unit_price"`
	ModifiersTotal   decimal.Decimal     `json:"modifiers_total"`
	Quantity         int64               `json:"quantity"`
	LineTotal        decimal.Decimal     `json:"line_total"`
	Addons           model.Modifiers     `json:"addons"`
	Variants         model.Modifiers     `json:"variants"`
}

type OrderPackageOutput struct {
	ID               int64               `json:"id"`
	PackageID        int64               `json:"package_id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	BasePrice        decimal.Decimal     `json:"base_price"`
	PromotionalPrice decimal.NullDecimal `json:"promotional_price"`
	UnitPrice        decimal.Decimal     `json:"unit_price"`
	ModifiersTotal   decimal.Decimal     `json:"modifiers_total"`
	Quantity         int64               `json:"quantity"`
	LineTotal        decimal.Decimal     `json:"line_total"`
	Dishes           model.PackageDishes `json:"dishes"`
}

type DeliveryOutput struct {
	AddressID *int64 `json:"address_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Building  string `json:"building"`
	Floor     string `json:"floor"`
}

type ReservationOutput struct {
	TableID              int64                   `json:"table_id"`
	TableCode            string                  `json:"table_code"`
	GuestCount           int                     `json:"guest_count"`
	DiningDate           string                  `json:"dining_date"`
	TimeSlotID           *int64                  `json:"time_slot_id"`
	CheckInTime          *time.Time              `json:"check_in_time"`
	CheckOutTime         *time.Time              `json:"check_out_time"`
	Status               model.ReservationStatus `json:"status"`
	AutoExtendCount      int                     `json:"auto_extend_count"`
	TotalExtendedMinutes int                     `json:"total_extended_minutes"`
	CheckedInAt          *time.Time              `json:"checked_in_at"`
	CheckedOutAt         *time.Time              `json:"checked_out_at"`
	CancelledAt          *time.Time              `json:"cancelled_at"`
	OverdueFlaggedAt     *time.Time              `json:"overdue_flagged_at"`
}

type OrderOutput struct {
	ID            int64               `json:"id"`
	OrderNumber   string              `json:"order_number"`
	UserID        int64               `json:"user_id"`
	Status        string              `json:"status"`
	ServiceMethod model.ServiceMethod `json:"service_method"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	DeliveryFee   decimal.Decimal     `json:"delivery_fee"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	PromoCode     string              `json:"promo_code,omitempty"`
	Instructions  string              `json:"instructions,omitempty"`
	PickupTime    *time.Time          `json:"pickup_time,omitempty"`

	Delivery    *DeliveryOutput    `json:"delivery,omitempty"`
	Reservation *ReservationOutput `json:"reservation,omitempty"`

	Items    []OrderItemOutput    `json:"items"`
	Packages []OrderPackageOutput `json:"packages"`

	CreatedAt time.Time `json:"created_at"`
}

func toOrderOutput(o model.Order, items []model.OrderItem, pkgs []model.OrderPackageItem) OrderOutput {
	out := OrderOutput{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        string(o.Status),
		ServiceMethod: o.ServiceMethod,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Discount:      o.Discount,
		Total:         o.Total,
		PromoCode:     o.PromoCode,
		Instructions:  o.Instructions,
		PickupTime:    o.PickupTime,
		Items:         make([]OrderItemOutput, 0, len(items)),
		Packages:      make([]OrderPackageOutput, 0, len(pkgs)),
		CreatedAt:     o.CreatedAt,
	}

	if o.ServiceMethod == model.ServiceDelivery {
		out.Delivery = &DeliveryOutput{
			AddressID: o.AddressID,
			Name:      o.DeliveryName,
			Phone:     o.DeliveryPhone,
			Address:   o.DeliveryAddress,
			Building:  o.DeliveryBuilding,
			Floor:     o.DeliveryFloor,
		}
	}

	if o.TableID != nil {
		r := &ReservationOutput{
			TableID:              *o.TableID,
			TableCode:            o.TableCode,
			GuestCount:           o.GuestCount,
			TimeSlotID:           o.TimeSlotID,
			CheckInTime:          o.CheckInTime,
			CheckOutTime:         o.CheckOutTime,
			Status:               o.ReservationStatus,
			AutoExtendCount:      o.AutoExtendCount,
			TotalExtendedMinutes: o.TotalExtendedMinutes,
			CheckedInAt:          o.CheckedInAt,
			CheckedOutAt:         o.CheckedOutAt,
			CancelledAt:          o.CancelledAt,
			OverdueFlaggedAt:     o.OverdueFlaggedAt,
		}
		if o.DiningDate != nil {
			r.DiningDate = o.DiningDate.Format(time.DateOnly)
		}
		out.Reservation = r
	}

	for _, it := range items {
		out.Items = append(out.Items, OrderItemOutput{
			ID:               it.ID,
			DishID:           it.DishID,
			Name:             it.Name,
			Description:      it.Description,
			BasePrice:        it.BasePrice,
			PromotionalPrice: it.PromotionalPrice,
			UnitPrice:        it.UnitPrice,
			ModifiersTotal:   it.ModifiersTotal,
			Quantity:         it.Quantity,
			LineTotal:        it.LineTotal,
			Addons:           it.Addons,
			Variants:         it.Variants,
		})
	}
	for _, p := range pkgs {
		out.Packages = append(out.Packages, OrderPackageOutput{
			ID:               p.ID,
			PackageID:        p.PackageID,
			Name:             p.Name,
			Description:      p.Description,
			BasePrice:        p.BasePrice,
			PromotionalPrice: p.PromotionalPrice,
			UnitPrice:        p.UnitPrice,
			ModifiersTotal:   p.ModifiersTotal,
			Quantity:         p.Quantity,
			LineTotal:        p.LineTotal,
			Dishes:           p.Dishes,
		})
	}
	return out
}
