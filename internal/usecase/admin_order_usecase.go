package usecase

import (
	"context"
	"log/slog"

	"orderdesk/internal/domain/model"
	repo "orderdesk/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	log       *slog.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, log *slog.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, log: log}
}

type AdminOrderList struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// 注文一覧（予約状態・利用日で絞り込める）
func (u *AdminOrderUsecase) List(ctx context.Context, actor Actor, f repo.AdminOrderListFilter) (AdminOrderList, error) {
	if err := requireAdmin(actor); err != nil {
		return AdminOrderList{}, err
	}

	// page/limitの最低限チェック
	fields := map[string]string{}
	if f.Page < 1 {
		fields["page"] = "must be >= 1"
	}
	if f.Limit < 1 || f.Limit > 100 {
		fields["limit"] = "must be between 1 and 100"
	}
	if f.ReservationStatus != "" && !model.ReservationStatus(f.ReservationStatus).Valid() {
		fields["reservation_status"] = "must be pending, completed or cancelled"
	}
	if len(fields) > 0 {
		return AdminOrderList{}, NewValidationError(fields)
	}

	out := AdminOrderList{Page: f.Page, Limit: f.Limit}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return u.dbError(ctx, "list admin orders", err)
		}
		out.Total = total

		out.Orders = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			oo, err := loadOrderOutput(ctx, r, o)
			if err != nil {
				return u.dbError(ctx, "list order items", err)
			}
			out.Orders = append(out.Orders, oo)
		}
		return nil
	})
	if err != nil {
		return AdminOrderList{}, err
	}
	return out, nil
}

// 注文ごとの予約操作履歴
func (u *AdminOrderUsecase) AuditTrail(ctx context.Context, actor Actor, orderID int64) ([]model.AuditLog, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, NewValidationError(map[string]string{"id": "must be positive"})
	}

	resource := model.AuditResourceOrder
	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		ResourceType: &resource,
		ResourceID:   &orderID,
		Limit:        200,
	})
	if err != nil {
		return nil, u.dbError(ctx, "list audit logs", err)
	}
	return logs, nil
}

func (u *AdminOrderUsecase) dbError(ctx context.Context, step string, err error) error {
	u.log.ErrorContext(ctx, "admin order db error", slog.String("step", step), slog.Any("error", err))
	return NewError(ErrTransactionFailed, "db error")
}
