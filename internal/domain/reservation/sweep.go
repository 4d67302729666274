package reservation

import (
	"time"

	"orderdesk/internal/domain/model"
)

type Decision int

const (
	DecisionNone Decision = iota
	DecisionExtend
	DecisionFlag
)

func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return "none"
	case DecisionExtend:
		return "extend"
	case DecisionFlag:
		return "flag"
	}
	return "unknown"
}

// スイープで1件をどうするか。
// 延長は「延長後の終了がまだ先」かつ「同じテーブルの他の予約と重ならない」ときだけ。
// それ以外はフラグを1度だけ立てる。どちらの後もDecisionNoneになる。
func Decide(o model.Order, sameTable []model.Order, now time.Time) Decision {
	if !IsOverdue(o, now) || o.OverdueFlaggedAt != nil {
		return DecisionNone
	}

	if CanExtend(o) {
		next, ok := ExtendedInterval(o)
		if ok && !now.After(next.End) && !ConflictsWith(next, sameTable, o.ID) {
			return DecisionExtend
		}
	}
	return DecisionFlag
}

// 手動対応フラグ（1度だけ）
func Flag(o *model.Order, now time.Time) {
	if o.OverdueFlaggedAt == nil {
		o.OverdueFlaggedAt = &now
	}
}
