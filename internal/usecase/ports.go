package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/lucsky/cuid"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// EventPublisher はコミット後に呼ぶ（失敗してもロールバックしない）
type EventPublisher interface {
	Publish(ctx context.Context, name, key string, payload any) error
}

type OrderNumberGenerator interface {
	Next(now time.Time) string
}

// ORD-<yymmddHHMM>-<cuid slug>
type cuidOrderNumbers struct {
	loc *time.Location
}

func NewOrderNumberGenerator(loc *time.Location) OrderNumberGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return cuidOrderNumbers{loc: loc}
}

func (g cuidOrderNumbers) Next(now time.Time) string {
	return "ORD-" + now.In(g.loc).Format("0601021504") + "-" + strings.ToUpper(cuid.Slug())
}
