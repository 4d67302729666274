package model

// 予約状態。注文の列として持つ。
type ReservationStatus string

const (
	ReservationNone      ReservationStatus = ""
	ReservationPending   ReservationStatus = "pending"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationCompleted, ReservationCancelled:
		return true
	case ReservationNone:
		return false
	}
	return false
}

// 終端状態か
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationCompleted, ReservationCancelled:
		return true
	case ReservationPending, ReservationNone:
		return false
	}
	return false
}
