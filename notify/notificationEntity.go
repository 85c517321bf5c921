package notify

import (
	"adminboard/bizerror"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	TypeSystem       = "SYSTEM"
	TypeBusiness     = "BUSINESS"
	TypeAnnouncement = "ANNOUNCEMENT"
)

type Notification struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId" gorm:"index:idx_user_read"`

	Title   string `json:"title"`
	Content string `json:"content" gorm:"type:text"`
	Type    string `json:"type"`
	Read    bool   `json:"read" gorm:"index:idx_user_read"`

	CreateTime time.Time `json:"createTime"`
}

type AnnouncementCreation struct {
	Title   string `json:"title" binding:"required,lte=128"`
	Content string `json:"content" binding:"required"`
}

type NotificationList struct {
	Data  []Notification `json:"data"`
	Total int            `json:"total"`

	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// NormalizeType validates the category against the fixed enum. A blank
// category falls back to SYSTEM.
func NormalizeType(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return TypeSystem, nil
	}
	switch t {
	case TypeSystem, TypeBusiness, TypeAnnouncement:
		return t, nil
	}
	return "", bizerror.ErrInvalidNotificationType
}
