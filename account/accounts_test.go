package account_test

import (
	"adminboard/account"
	"adminboard/bizerror"
	"adminboard/testinfra"
	"context"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestHashSha256(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should hash passwords stably", func(t *testing.T) {
		Expect(account.HashSha256("admin123")).To(Equal(account.HashSha256("admin123")))
		Expect(account.HashSha256("admin123")).ToNot(Equal(account.HashSha256("admin124")))
		Expect(account.HashSha256("abc123")).To(
			Equal("6ca13d52ca70c883e0f0bb101e425a89e8624de51db2d2392593af6a84118090"))
	})
}

func TestAccounts(t *testing.T) {
	RegisterTestingT(t)

	var testDatabase *testinfra.TestDatabase

	t.Run("should create and find users", func(t *testing.T) {
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		testDatabase = beforeEachSecurityConfigurationCase(t)

		info, err := account.CreateUser(context.Background(),
			&account.UserCreation{Name: "ann", Secret: "abc123", Nickname: "Ann"})
		Expect(err).To(BeNil())
		Expect(info.ID).ToNot(BeZero())
		Expect(info.Name).To(Equal("ann"))

		found, err := account.FindUserByName(context.Background(), "ann")
		Expect(err).To(BeNil())
		Expect(found.ID).To(Equal(info.ID))
		Expect(found.Secret).To(Equal(account.HashSha256("abc123")))
		Expect(found.DisplayName()).To(Equal("Ann"))

		byId, err := account.FindUserById(context.Background(), info.ID)
		Expect(err).To(BeNil())
		Expect(byId.Name).To(Equal("ann"))

		_, err = account.FindUserByName(context.Background(), "nobody")
		Expect(err).To(Equal(bizerror.ErrUnknownUser))
		_, err = account.FindUserById(context.Background(), 404404)
		Expect(err).To(Equal(bizerror.ErrUnknownUser))
	})

	t.Run("should answer user existence and enumerate user ids", func(t *testing.T) {
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		testDatabase = beforeEachSecurityConfigurationCase(t)

		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Save(&account.User{ID: 2, Name: "ann"}).Error).To(BeNil())
		Expect(db.Save(&account.User{ID: 3, Name: "bob"}).Error).To(BeNil())

		exist, err := account.ExistUserFunc(context.Background(), 2)
		Expect(err).To(BeNil())
		Expect(exist).To(BeTrue())
		exist, err = account.ExistUserFunc(context.Background(), 404)
		Expect(err).To(BeNil())
		Expect(exist).To(BeFalse())

		ids, err := account.ListUserIdsFunc(context.Background())
		Expect(err).To(BeNil())
		Expect(ids).To(ConsistOf(types.ID(2), types.ID(3)))
	})
}
