package authority

import "github.com/fundwit/go-commons/types"

type Role struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Code string   `json:"code" gorm:"unique_index"`
	Name string   `json:"name"`

	// Deleted marks a soft-deleted role: its bindings stay in place but it no
	// longer contributes permissions.
	Deleted bool `json:"deleted"`
}

type Permission struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Code string   `json:"code" gorm:"unique_index"`
	Name string   `json:"name"`
}

type UserRoleBinding struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	UserID types.ID `json:"userId" gorm:"unique_index:uni_user_role"`
	RoleID types.ID `json:"roleId" gorm:"unique_index:uni_user_role"`
}

type RolePermissionBinding struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	RoleID       types.ID `json:"roleId" gorm:"unique_index:uni_role_perm"`
	PermissionID types.ID `json:"permissionId" gorm:"unique_index:uni_role_perm"`
}

// Permissions is the effective permission-code set of a user.
type Permissions []string

func (p Permissions) HasPermission(code string) bool {
	for _, v := range p {
		if v == code {
			return true
		}
	}
	return false
}
