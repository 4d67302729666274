package repository

import (
	"context"
	"errors"

	"orderdesk/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	//無ければErrUserNotFound
	FindByID(ctx context.Context, userID int64) (*model.User, error)
}
