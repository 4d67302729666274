package model

import (
	"fmt"
	"time"
)

// 時間枠（例 10:00-11:00）。管理者が登録し、重ならない前提。
type TimeSlot struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StartTime string    `gorm:"type:varchar(5);not null;uniqueIndex:uq_time_slots_range,priority:1" json:"start_time"`
	EndTime   string    `gorm:"type:varchar(5);not null;uniqueIndex:uq_time_slots_range,priority:2" json:"end_time"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

const clockLayout = "15:04"

// 0時からのオフセットで返す
func (s TimeSlot) Bounds() (time.Duration, time.Duration, error) {
	start, err := parseClock(s.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("time slot %d start: %w", s.ID, err)
	}
	end, err := parseClock(s.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("time slot %d end: %w", s.ID, err)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("time slot %d ends before it starts", s.ID)
	}
	return start, end, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
