package authority

import (
	"adminboard/persistence"
	"context"
	"sort"

	"github.com/fundwit/go-commons/types"
)

// PermResolver computes the effective permission set of a user at request
// time. There is deliberately no cross-request cache: role and permission
// edits take effect on the very next check, without re-login.
type PermResolver interface {
	Resolve(ctx context.Context, userId types.ID) (Permissions, error)
}

var ActiveResolver PermResolver = &DbPermResolver{}

// DbPermResolver walks the user-role and role-permission association tables.
type DbPermResolver struct {
}

func (r *DbPermResolver) Resolve(ctx context.Context, userId types.ID) (Permissions, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	var roleIds []types.ID
	if err := db.Model(&UserRoleBinding{}).Where(&UserRoleBinding{UserID: userId}).
		Pluck("role_id", &roleIds).Error; err != nil {
		return nil, err
	}
	if len(roleIds) == 0 {
		return Permissions{}, nil
	}

	var activeRoleIds []types.ID
	if err := db.Model(&Role{}).Where("id IN (?) AND deleted = ?", roleIds, false).
		Pluck("id", &activeRoleIds).Error; err != nil {
		return nil, err
	}
	if len(activeRoleIds) == 0 {
		return Permissions{}, nil
	}

	var permissionIds []types.ID
	if err := db.Model(&RolePermissionBinding{}).Where("role_id IN (?)", activeRoleIds).
		Pluck("permission_id", &permissionIds).Error; err != nil {
		return nil, err
	}
	if len(permissionIds) == 0 {
		return Permissions{}, nil
	}

	var codes []string
	if err := db.Model(&Permission{}).Where("id IN (?)", permissionIds).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return dedupe(codes), nil
}

// LoadRoleCodes returns the codes of the user's active roles, the snapshot
// embedded into access tokens at issuance.
func LoadRoleCodes(ctx context.Context, userId types.ID) ([]string, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	var roleIds []types.ID
	if err := db.Model(&UserRoleBinding{}).Where(&UserRoleBinding{UserID: userId}).
		Pluck("role_id", &roleIds).Error; err != nil {
		return nil, err
	}
	if len(roleIds) == 0 {
		return []string{}, nil
	}
	var codes []string
	if err := db.Model(&Role{}).Where("id IN (?) AND deleted = ?", roleIds, false).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return []string(dedupe(codes)), nil
}

// InMemoryPermResolver serves a fixed permission seed, the lightweight profile
// for demos and frontend smoke tests where no database is around.
type InMemoryPermResolver struct {
	permsByUser map[types.ID]Permissions
}

func NewInMemoryPermResolver(seed map[types.ID][]string) *InMemoryPermResolver {
	permsByUser := map[types.ID]Permissions{}
	for userId, codes := range seed {
		permsByUser[userId] = dedupe(codes)
	}
	return &InMemoryPermResolver{permsByUser: permsByUser}
}

func (r *InMemoryPermResolver) Resolve(ctx context.Context, userId types.ID) (Permissions, error) {
	perms, found := r.permsByUser[userId]
	if !found {
		return Permissions{}, nil
	}
	return perms, nil
}

func dedupe(codes []string) Permissions {
	set := map[string]bool{}
	result := Permissions{}
	for _, code := range codes {
		if code == "" || set[code] {
			continue
		}
		set[code] = true
		result = append(result, code)
	}
	sort.Strings(result)
	return result
}
