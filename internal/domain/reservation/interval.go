// 予約の占有ルール。空き判定・注文確定・スイープで共通に使う。
package reservation

import (
	"time"

	"orderdesk/internal/domain/model"
)

// 半開区間 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// 端が接するだけ（a.End == b.Start）は重ならない
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// 日付＋枠の時刻をlocの壁時計で組み立てる（夏時間の日も時刻がずれない）
func Window(date time.Time, start, end time.Duration, loc *time.Location) Interval {
	return Interval{Start: wallClock(date, start, loc), End: wallClock(date, end, loc)}
}

func wallClock(date time.Time, offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc)
}

// 予定の退店時刻＋延長分
func EffectiveCheckOut(o model.Order) time.Time {
	if o.CheckOutTime == nil {
		return time.Time{}
	}
	return o.CheckOutTime.Add(time.Duration(o.TotalExtendedMinutes) * time.Minute)
}

// 注文がテーブルを押さえている区間
func Occupied(o model.Order) (Interval, bool) {
	if o.CheckInTime == nil || o.CheckOutTime == nil {
		return Interval{}, false
	}
	return Interval{Start: *o.CheckInTime, End: EffectiveCheckOut(o)}, true
}

// 他のpending予約と重なるか（selfIDは除く）
func ConflictsWith(want Interval, others []model.Order, selfID int64) bool {
	for _, o := range others {
		if o.ID == selfID || o.ReservationStatus != model.ReservationPending {
			continue
		}
		held, ok := Occupied(o)
		if !ok {
			continue
		}
		if held.Overlaps(want) {
			return true
		}
	}
	return false
}
