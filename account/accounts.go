package account

import (
	"adminboard/bizerror"
	"adminboard/common"
	"adminboard/persistence"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker *sonyflake.Sonyflake

	// function vars are test seams, as well as the boundary the websocket
	// handshake gate and the notification fan-out depend on
	ExistUserFunc   = existUser
	ListUserIdsFunc = listUserIds
)

func init() {
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func FindUserByName(ctx context.Context, name string) (*User, error) {
	user := User{}
	err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Model(&User{}).Where(&User{Name: name}).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrUnknownUser
		}
		return nil, err
	}
	return &user, nil
}

func FindUserById(ctx context.Context, id types.ID) (*User, error) {
	user := User{}
	err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Model(&User{}).Where(&User{ID: id}).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrUnknownUser
		}
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, c *UserCreation) (*UserInfo, error) {
	user := User{ID: common.NextId(userIdWorker), Name: c.Name, Secret: HashSha256(c.Secret), Nickname: c.Nickname}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, nil
}

func existUser(ctx context.Context, id types.ID) (bool, error) {
	var count int
	err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Model(&User{}).Where(&User{ID: id}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func listUserIds(ctx context.Context) ([]types.ID, error) {
	var ids []types.ID
	err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Model(&User{}).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
