package notify

import (
	"adminboard/account"
	"adminboard/bizerror"
	"adminboard/common"
	"adminboard/persistence"
	"adminboard/session"
	"context"
	"encoding/json"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var notificationIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

// PushRegistry is the live-channel directory the dispatcher pushes through.
// It is injected so dispatcher tests can swap in a recording fake.
type PushRegistry interface {
	IsOnline(userId types.ID) bool
	SendToUser(userId types.ID, payload []byte)
}

// WsMessage is the channel payload envelope: type "init" carries the unread
// backlog right after a handshake, type "notification" a single live push.
type WsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Dispatcher struct {
	Registry PushRegistry
}

func NewDispatcher(registry PushRegistry) *Dispatcher {
	return &Dispatcher{Registry: registry}
}

// SendToUser persists the notification first, then pushes it to the user's
// live channels when any are open. The record is durable before any push is
// attempted: losing the push never loses the notification.
func (d *Dispatcher) SendToUser(ctx context.Context, userId types.ID, title, content, rawType string) (*Notification, error) {
	normalizedType, err := NormalizeType(rawType)
	if err != nil {
		return nil, err
	}

	n := Notification{
		ID: common.NextId(notificationIdWorker), UserID: userId,
		Title: title, Content: content, Type: normalizedType,
		Read: false, CreateTime: time.Now(),
	}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Create(&n).Error; err != nil {
		return nil, err
	}

	d.pushToUser(userId, &n)
	return &n, nil
}

// Announce persists one ANNOUNCEMENT notification per user and pushes to the
// users currently online. O(users) writes, acceptable for a rare
// administrator-triggered operation.
func (d *Dispatcher) Announce(ctx context.Context, secCtx *session.Context, creation *AnnouncementCreation) error {
	if secCtx == nil {
		return bizerror.ErrUnauthenticated
	}

	userIds, err := account.ListUserIdsFunc(ctx)
	if err != nil {
		return err
	}
	for _, userId := range userIds {
		if _, err := d.SendToUser(ctx, userId, creation.Title, creation.Content, TypeAnnouncement); err != nil {
			return err
		}
	}
	return nil
}

// ListUnread returns the newest unread notifications of the user, up to limit.
func (d *Dispatcher) ListUnread(ctx context.Context, userId types.ID, limit int) ([]Notification, error) {
	if limit < 1 {
		limit = 1
	}
	records := []Notification{}
	err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Where(&Notification{UserID: userId}).Where("`read` = ?", false).
		Order("id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListMyNotifications returns one page of the caller's notifications, newest
// first.
func (d *Dispatcher) ListMyNotifications(ctx context.Context, secCtx *session.Context, page, pageSize int) (*NotificationList, error) {
	if secCtx == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	total := 0
	if err := db.Model(&Notification{}).Where(&Notification{UserID: secCtx.Identity.ID}).
		Count(&total).Error; err != nil {
		return nil, err
	}
	records := []Notification{}
	err := db.Where(&Notification{UserID: secCtx.Identity.ID}).
		Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return &NotificationList{Data: records, Total: total, Page: page, PageSize: pageSize}, nil
}

// MarkRead is idempotent: marking an already-read notification again is a
// no-op. Marking another user's notification fails with ErrForbidden.
func (d *Dispatcher) MarkRead(ctx context.Context, secCtx *session.Context, notificationId types.ID) error {
	if secCtx == nil {
		return bizerror.ErrUnauthenticated
	}

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	n := Notification{}
	if err := db.Where(&Notification{ID: notificationId}).First(&n).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrNotFound
		}
		return err
	}
	if n.UserID != secCtx.Identity.ID {
		return bizerror.ErrForbidden
	}
	if n.Read {
		return nil
	}
	return db.Model(&Notification{}).Where(&Notification{ID: notificationId}).
		Update("read", true).Error
}

// pushToUser is best effort. The record is already durable, so every failure
// is swallowed after logging: the operation that triggered the notification
// must still succeed.
func (d *Dispatcher) pushToUser(userId types.ID, n *Notification) {
	if d.Registry == nil || !d.Registry.IsOnline(userId) {
		return
	}
	payload, err := json.Marshal(&WsMessage{Type: "notification", Data: n})
	if err != nil {
		common.Log.Warnf("failed to marshal notification %d for push: %v", n.ID, err)
		return
	}
	d.Registry.SendToUser(userId, payload)
}
