package authority_test

import (
	"adminboard/authority"
	"adminboard/persistence"
	"adminboard/testinfra"
	"context"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func beforeEachResolverCase(t *testing.T) *testinfra.TestDatabase {
	testDatabase := testinfra.StartMysqlTestDatabase("adminboard")
	persistence.ActiveDataSourceManager = testDatabase.DS
	err := testDatabase.DS.GormDB(context.Background()).AutoMigrate(
		&authority.Role{}, &authority.Permission{},
		&authority.UserRoleBinding{}, &authority.RolePermissionBinding{}).Error
	Expect(err).To(BeNil())
	return testDatabase
}

func seedResolverFixture(t *testing.T, testDatabase *testinfra.TestDatabase) {
	db := testDatabase.DS.GormDB(context.Background())

	Expect(db.Save(&authority.Role{ID: 10, Code: "editor", Name: "Editor"}).Error).To(BeNil())
	Expect(db.Save(&authority.Role{ID: 11, Code: "auditor", Name: "Auditor"}).Error).To(BeNil())
	Expect(db.Save(&authority.Role{ID: 12, Code: "legacy", Name: "Legacy", Deleted: true}).Error).To(BeNil())

	Expect(db.Save(&authority.Permission{ID: 20, Code: "story:manage", Name: "Story Management"}).Error).To(BeNil())
	Expect(db.Save(&authority.Permission{ID: 21, Code: "story:read", Name: "Story Read"}).Error).To(BeNil())
	Expect(db.Save(&authority.Permission{ID: 22, Code: "user:manage", Name: "User Management"}).Error).To(BeNil())

	// editor: story:manage, story:read; auditor: story:read; legacy (deleted): user:manage
	Expect(db.Save(&authority.RolePermissionBinding{ID: 30, RoleID: 10, PermissionID: 20}).Error).To(BeNil())
	Expect(db.Save(&authority.RolePermissionBinding{ID: 31, RoleID: 10, PermissionID: 21}).Error).To(BeNil())
	Expect(db.Save(&authority.RolePermissionBinding{ID: 32, RoleID: 11, PermissionID: 21}).Error).To(BeNil())
	Expect(db.Save(&authority.RolePermissionBinding{ID: 33, RoleID: 12, PermissionID: 22}).Error).To(BeNil())

	// user 100 holds all three roles, user 101 only the deleted one
	Expect(db.Save(&authority.UserRoleBinding{ID: 40, UserID: 100, RoleID: 10}).Error).To(BeNil())
	Expect(db.Save(&authority.UserRoleBinding{ID: 41, UserID: 100, RoleID: 11}).Error).To(BeNil())
	Expect(db.Save(&authority.UserRoleBinding{ID: 42, UserID: 100, RoleID: 12}).Error).To(BeNil())
	Expect(db.Save(&authority.UserRoleBinding{ID: 43, UserID: 101, RoleID: 12}).Error).To(BeNil())
}

func TestDbPermResolver(t *testing.T) {
	RegisterTestingT(t)

	var testDatabase *testinfra.TestDatabase
	resolver := &authority.DbPermResolver{}

	t.Run("should union and dedupe permissions over all active roles", func(t *testing.T) {
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		testDatabase = beforeEachResolverCase(t)
		seedResolverFixture(t, testDatabase)

		perms, err := resolver.Resolve(context.Background(), 100)
		Expect(err).To(BeNil())
		Expect(perms).To(Equal(authority.Permissions{"story:manage", "story:read"}))
	})

	t.Run("should not grant permissions through a soft-deleted role", func(t *testing.T) {
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		testDatabase = beforeEachResolverCase(t)
		seedResolverFixture(t, testDatabase)

		perms, err := resolver.Resolve(context.Background(), 101)
		Expect(err).To(BeNil())
		Expect(perms).To(Equal(authority.Permissions{}))
	})

	t.Run("should return an empty set for a user without role bindings", func(t *testing.T) {
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		testDatabase = beforeEachResolverCase(t)
		seedResolverFixture(t, testDatabase)

		perms, err := resolver.Resolve(context.Background(), 999)
		Expect(err).To(BeNil())
		Expect(perms).To(Equal(authority.Permissions{}))
	})

	t.Run("should return an empty set for a role without permission bindings", func(t *testing.T) {
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		testDatabase = beforeEachResolverCase(t)
		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Save(&authority.Role{ID: 10, Code: "editor", Name: "Editor"}).Error).To(BeNil())
		Expect(db.Save(&authority.UserRoleBinding{ID: 40, UserID: 100, RoleID: 10}).Error).To(BeNil())

		perms, err := resolver.Resolve(context.Background(), 100)
		Expect(err).To(BeNil())
		Expect(perms).To(Equal(authority.Permissions{}))
	})
}

func TestLoadRoleCodes(t *testing.T) {
	RegisterTestingT(t)

	var testDatabase *testinfra.TestDatabase

	t.Run("should load the codes of active roles only", func(t *testing.T) {
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		testDatabase = beforeEachResolverCase(t)
		seedResolverFixture(t, testDatabase)

		codes, err := authority.LoadRoleCodes(context.Background(), 100)
		Expect(err).To(BeNil())
		Expect(codes).To(Equal([]string{"auditor", "editor"}))

		codes, err = authority.LoadRoleCodes(context.Background(), 101)
		Expect(err).To(BeNil())
		Expect(codes).To(Equal([]string{}))

		codes, err = authority.LoadRoleCodes(context.Background(), 999)
		Expect(err).To(BeNil())
		Expect(codes).To(Equal([]string{}))
	})
}

func TestInMemoryPermResolver(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should serve the seeded permission set", func(t *testing.T) {
		resolver := authority.NewInMemoryPermResolver(map[types.ID][]string{
			100: {"story:read", "story:manage", "story:read"},
		})

		perms, err := resolver.Resolve(context.Background(), 100)
		Expect(err).To(BeNil())
		Expect(perms).To(Equal(authority.Permissions{"story:manage", "story:read"}))
	})

	t.Run("should return an empty set for an unseeded user", func(t *testing.T) {
		resolver := authority.NewInMemoryPermResolver(nil)

		perms, err := resolver.Resolve(context.Background(), 100)
		Expect(err).To(BeNil())
		Expect(perms).To(Equal(authority.Permissions{}))
	})
}
