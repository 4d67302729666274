package validator

import (
	"strings"
	"time"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/usecase"

	"github.com/shopspring/decimal"
)

const (
	maxIdempotencyKey = 255
	maxPromoCode      = 50
	maxInstructions   = 1000
	maxPartySize      = 50
)

// 項目ごとのエラーを集める
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return usecase.NewValidationError(f)
}

type orderValidator struct {
	loc *time.Location
}

// Usecaseは interface を依存注入
func NewOrderValidator(loc *time.Location) usecase.OrderValidator {
	if loc == nil {
		loc = time.UTC
	}
	return &orderValidator{loc: loc}
}

func (v *orderValidator) ValidatePlaceOrder(in usecase.PlaceOrderInput) (time.Time, error) {
	f := fieldErrors{}

	method := model.ServiceMethod(in.ServiceMethod)
	if !method.Valid() {
		f.add("service_method", "must be delivery, pickup or dine_in")
	}
	if !model.PaymentMethod(in.PaymentMethod).Valid() {
		f.add("payment_method", "must be cash, card or ewallet")
	}
	if !model.PaymentStatus(in.PaymentStatus).Valid() {
		f.add("payment_status", "must be unpaid or paid")
	}

	checkMoney(f, "subtotal", in.Subtotal)
	checkMoney(f, "delivery_fee", in.DeliveryFee)
	checkMoney(f, "discount", in.Discount)
	checkMoney(f, "total", in.Total)

	if len(strings.TrimSpace(in.IdempotencyKey)) > maxIdempotencyKey {
		f.add("idempotency_key", "must be at most 255 characters")
	}
	if len(in.PromoCode) > maxPromoCode {
		f.add("promo_code", "must be at most 50 characters")
	}
	if len(in.Instructions) > maxInstructions {
		f.add("instructions", "must be at most 1000 characters")
	}

	var diningDate time.Time
	switch method {
	case model.ServiceDelivery:
		if in.AddressID == nil || *in.AddressID <= 0 {
			f.add("address_id", "is required for delivery")
		}
		rejectTableFields(f, in)
	case model.ServicePickup:
		rejectAddress(f, in)
		rejectTableFields(f, in)
	case model.ServiceDineIn:
		rejectAddress(f, in)
		if in.TableID == nil || *in.TableID <= 0 {
			f.add("table_id", "is required for dine_in")
		}
		if in.TimeSlotID == nil || *in.TimeSlotID <= 0 {
			f.add("time_slot_id", "is required for dine_in")
		}
		if in.GuestCount < 1 || in.GuestCount > maxPartySize {
			f.add("guest_count", "must be between 1 and 50")
		}
		d, ok := v.parseDate(in.DiningDate)
		if !ok {
			f.add("dining_date", "must be YYYY-MM-DD")
		}
		diningDate = d
	}

	if err := f.err(); err != nil {
		return time.Time{}, err
	}
	return diningDate, nil
}

func (v *orderValidator) ValidateAvailability(q usecase.AvailabilityQuery) (time.Time, error) {
	f := fieldErrors{}

	d, ok := v.parseDate(q.Date)
	if !ok {
		f.add("date", "must be YYYY-MM-DD")
	}
	if q.TimeSlotID <= 0 {
		f.add("time_slot_id", "is required")
	}
	if q.PartySize < 1 || q.PartySize > maxPartySize {
		f.add("party_size", "must be between 1 and 50")
	}

	if err := f.err(); err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// TIME_ZONEの0時として解釈
func (v *orderValidator) parseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), v.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func checkMoney(f fieldErrors, field string, d decimal.Decimal) {
	if d.IsNegative() {
		f.add(field, "must not be negative")
		return
	}
	//小数は2桁まで
	if !d.Equal(d.Round(2)) {
		f.add(field, "must have at most 2 decimal places")
	}
}

func rejectAddress(f fieldErrors, in usecase.PlaceOrderInput) {
	if in.AddressID != nil {
		f.add("address_id", "is only allowed for delivery")
	}
}

func rejectTableFields(f fieldErrors, in usecase.PlaceOrderInput) {
	if in.TableID != nil {
		f.add("table_id", "is only allowed for dine_in")
	}
	if in.TimeSlotID != nil {
		f.add("time_slot_id", "is only allowed for dine_in")
	}
	if strings.TrimSpace(in.DiningDate) != "" {
		f.add("dining_date", "is only allowed for dine_in")
	}
}
