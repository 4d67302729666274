package model

import "time"

// 予約の状態変更など。
type AuditAction string

const (
	AuditActionCheckIn  AuditAction = "RESERVATION_CHECK_IN"
	AuditActionCheckOut AuditAction = "RESERVATION_CHECK_OUT"
	AuditActionCancel   AuditAction = "RESERVATION_CANCEL"
	AuditActionExtend   AuditAction = "RESERVATION_EXTEND"
	//自動延長できず、手動対応が必要になった
	AuditActionOverdue AuditAction = "RESERVATION_OVERDUE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
// スイープなどシステム起因の操作はActorUserIDが0。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`
	BeforeJSON   string            `gorm:"type:text" json:"before_json"`
	AfterJSON    string            `gorm:"type:text" json:"after_json"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}
