package usecase

import "orderdesk/internal/domain/model"

// Actor は検証済みトークンから作る呼び出し元。
type Actor struct {
	UserID int64
	Role   model.Role
}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// 本人か管理者
func (a Actor) CanAccess(ownerID int64) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

func requireActor(a Actor) error {
	if !a.Authenticated() {
		return NewError(ErrUnauthenticated, "")
	}
	return nil
}

func requireAdmin(a Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return NewError(ErrUnauthorized, "admin only")
	}
	return nil
}
