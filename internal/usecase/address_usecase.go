package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"orderdesk/internal/domain/model"
	repo "orderdesk/internal/repository"
)

type AddressCreateInput struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	Building    string `json:"building"`
	Floor       string `json:"floor"`
	IsDefault   bool   `json:"is_default"`
}

type AddressUsecase struct {
	addresses repo.AddressRepository
	clock     Clock
	log       *slog.Logger
}

func NewAddressUsecase(addresses repo.AddressRepository, clock Clock, log *slog.Logger) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, clock: clock, log: log}
}

func (u *AddressUsecase) List(ctx context.Context, actor Actor) ([]model.Address, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, err := u.addresses.ListByUserID(ctx, actor.UserID)
	if err != nil {
		u.log.ErrorContext(ctx, "list addresses failed", slog.Int64("user_id", actor.UserID), slog.Any("error", err))
		return nil, NewError(ErrTransactionFailed, "db error")
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, actor Actor, in AddressCreateInput) (model.Address, error) {
	if err := requireActor(actor); err != nil {
		return model.Address{}, err
	}

	//入力チェック
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(in.AddressLine) == "" {
		fields["address_line"] = "required"
	}
	if len(in.Phone) > 30 {
		fields["phone"] = "must be at most 30 characters"
	}
	if len(fields) > 0 {
		return model.Address{}, NewValidationError(fields)
	}

	now := u.clock.Now()
	created, err := u.addresses.Create(ctx, model.Address{
		UserID:      actor.UserID,
		Name:        strings.TrimSpace(in.Name),
		Phone:       in.Phone,
		AddressLine: strings.TrimSpace(in.AddressLine),
		Building:    in.Building,
		Floor:       in.Floor,
		IsDefault:   in.IsDefault,
		CreatedAt:   now.UTC().Truncate(time.Microsecond),
		UpdatedAt:   now.UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		u.log.ErrorContext(ctx, "create address failed", slog.Int64("user_id", actor.UserID), slog.Any("error", err))
		return model.Address{}, NewError(ErrTransactionFailed, "db error")
	}
	return created, nil
}
