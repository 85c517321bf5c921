package account

import (
	"adminboard/authority"
	"adminboard/persistence"
	"context"
	"errors"
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	adminRole = authority.Role{ID: 1, Code: "admin", Name: "Administrator"}

	adminPermissions = []authority.Permission{
		{ID: 1, Code: "user:manage", Name: "User Management"},
		{ID: 2, Code: "role:manage", Name: "Role Management"},
		{ID: 3, Code: "permission:manage", Name: "Permission Management"},
		{ID: 4, Code: "notification:announce", Name: "Announce Notifications"},
	}
)

// DefaultSecurityConfiguration seeds the admin role, its permissions and the
// initial admin account. Idempotent: safe to run on every startup.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	if err := db.Save(&adminRole).Error; err != nil {
		return err
	}
	for i, perm := range adminPermissions {
		if err := db.Save(&perm).Error; err != nil {
			return err
		}
		binding := authority.RolePermissionBinding{
			ID: types.ID(i + 1), RoleID: adminRole.ID, PermissionID: perm.ID,
		}
		if err := db.Save(&binding).Error; err != nil {
			return err
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&admin).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			initialAdminPassword := os.Getenv("INITIAL_ADMIN_PASSWORD")
			if initialAdminPassword == "" {
				initialAdminPassword = "admin123"
			}
			if err := tx.Save(&User{ID: 1, Name: "admin", Secret: HashSha256(initialAdminPassword)}).Error; err != nil {
				return err
			}
		}
		return tx.Save(&authority.UserRoleBinding{ID: 1, UserID: 1, RoleID: adminRole.ID}).Error
	})
}
