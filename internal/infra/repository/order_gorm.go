package repository

import (
	"context"
	"fmt"
	"time"

	"orderdesk/internal/domain/model"
	repo "orderdesk/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderCreateSavepoint = "order_create"

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("PackageItems", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, notFoundOr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) LockByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, notFoundOr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}
	return items, total, nil
}

// 明細は別途CreateBulkで入れる。Tx内でのみ呼ぶ（SAVEPOINTを使う）。
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.SavePoint(orderCreateSavepoint).Error; err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		//制約違反でTxが壊れないように巻き戻す
		if rbErr := db.RollbackTo(orderCreateSavepoint).Error; rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w (create: %v)", rbErr, err)
		}
		order.ID = 0
		return translateOrderConflict(err)
	}
	return nil
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error
	if isNotFound(err) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) ListPendingReservations(ctx context.Context, tableID int64, diningDate time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND dining_date = ? AND reservation_status = ?",
			tableID, diningDate.Format(time.DateOnly), model.ReservationPending).
		Order("check_in_time asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// 他のスイープが掴んでいる行は飛ばす
func (r *OrderGormRepository) LockOverdueReservations(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("reservation_status = ? AND overdue_flagged_at IS NULL", model.ReservationPending).
		Where("check_out_time + make_interval(mins => total_extended_minutes) < ?", now).
		Order("check_out_time asc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderGormRepository) SaveReservation(ctx context.Context, o model.Order) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":                 o.Status,
			"reservation_status":     o.ReservationStatus,
			"auto_extend_count":      o.AutoExtendCount,
			"total_extended_minutes": o.TotalExtendedMinutes,
			"checked_in_at":          o.CheckedInAt,
			"checked_out_at":         o.CheckedOutAt,
			"cancelled_at":           o.CancelledAt,
			"overdue_flagged_at":     o.OverdueFlaggedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ReservationStatus != "" {
		q = q.Where("reservation_status = ?", f.ReservationStatus)
	}
	if f.DiningDate != nil {
		q = q.Where("dining_date = ?", f.DiningDate.Format(time.DateOnly))
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}
	return items, total, nil
}
