package reservation

import "orderdesk/internal/domain/model"

// テーブル1卓の判定結果
type Availability struct {
	Table            model.Table
	Status           model.AvailabilityStatus
	UnderMaintenance bool
	HasConflict      bool
}

func (a Availability) Available() bool {
	return a.Status == model.AvailabilityAvailable
}

// その日のpending予約と突き合わせて1卓を判定
func Evaluate(table model.Table, pending []model.Order, want Interval) Availability {
	a := Availability{
		Table:            table,
		UnderMaintenance: table.UnderMaintenance,
		HasConflict:      ConflictsWith(want, pending, 0),
	}

	switch {
	case a.UnderMaintenance:
		a.Status = model.AvailabilityMaintenance
	case a.HasConflict:
		a.Status = model.AvailabilityOccupied
	default:
		a.Status = model.AvailabilityAvailable
	}
	return a
}
