package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/repository"
)

func seed(t *testing.T, r *UserRepository, username, email string) *entity.User {
	t.Helper()
	now := time.Now().UTC()
	u := &entity.User{Username: username, Email: email, Password: "hash", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	r := NewUserRepository()
	a := seed(t, r, "a", "a@x.com")
	b := seed(t, r, "b", "b@x.com")
	assert.Equal(t, a.ID+1, b.ID)
}

func TestCreateRejectsDuplicates(t *testing.T) {
	r := NewUserRepository()
	seed(t, r, "a", "a@x.com")

	err := r.Create(context.Background(), &entity.User{Username: "a", Email: "new@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = r.Create(context.Background(), &entity.User{Username: "new", Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSaveRejectsConflictWithOtherRecord(t *testing.T) {
	r := NewUserRepository()
	seed(t, r, "a", "a@x.com")
	b := seed(t, r, "b", "b@x.com")

	b.Username = "a"
	err := r.Save(context.Background(), b)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestFindReturnsNilForAbsent(t *testing.T) {
	r := NewUserRepository()

	u, err := r.FindByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = r.FindByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = r.FindByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindReturnsCopies(t *testing.T) {
	r := NewUserRepository()
	a := seed(t, r, "a", "a@x.com")

	got, err := r.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	got.Username = "mutated"

	again, err := r.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Username)
}

func TestFindPageSortsAndPaginates(t *testing.T) {
	r := NewUserRepository()
	seed(t, r, "charlie", "charlie@x.com")
	seed(t, r, "alice", "alice@x.com")
	seed(t, r, "bob", "bob@x.com")

	users, total, err := r.FindPage(context.Background(), 0, 2, "username", true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	users, _, err = r.FindPage(context.Background(), 1, 2, "username", true)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "charlie", users[0].Username)

	users, _, err = r.FindPage(context.Background(), 0, 2, "username", false)
	require.NoError(t, err)
	assert.Equal(t, "charlie", users[0].Username)
}

func TestFindPagePastEnd(t *testing.T) {
	r := NewUserRepository()
	seed(t, r, "a", "a@x.com")

	users, total, err := r.FindPage(context.Background(), 5, 10, "id", true)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, int64(1), total)
}

func TestFindPageUnknownSortField(t *testing.T) {
	r := NewUserRepository()

	_, _, err := r.FindPage(context.Background(), 0, 10, "passwordHash", true)
	assert.Error(t, err)
}
