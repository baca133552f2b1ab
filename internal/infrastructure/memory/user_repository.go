// Package memory provides an in-memory UserRepository. It backs the
// service tests and mirrors the Postgres gateway's observable behavior,
// including unique-constraint rejection and sort-field validation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/repository"
)

type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]entity.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]entity.User), nextID: 1}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindPage(_ context.Context, page, size int, sortBy string, ascending bool) ([]entity.User, int64, error) {
	if page < 0 || size <= 0 {
		return nil, 0, fmt.Errorf("invalid page request: page=%d size=%d", page, size)
	}
	less, err := lessFunc(sortBy)
	if err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	all := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if ascending {
			return less(&all[i], &all[j])
		}
		return less(&all[j], &all[i])
	})

	total := int64(len(all))
	start := page * size
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return fmt.Errorf("no user with id %d", u.ID)
	}
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	r.users[u.ID] = *u
	return nil
}

func lessFunc(sortBy string) (func(a, b *entity.User) bool, error) {
	switch sortBy {
	case "id":
		return func(a, b *entity.User) bool { return a.ID < b.ID }, nil
	case "username":
		return func(a, b *entity.User) bool { return strings.Compare(a.Username, b.Username) < 0 }, nil
	case "email":
		return func(a, b *entity.User) bool { return strings.Compare(a.Email, b.Email) < 0 }, nil
	case "firstName":
		return func(a, b *entity.User) bool { return strings.Compare(a.FirstName, b.FirstName) < 0 }, nil
	case "lastName":
		return func(a, b *entity.User) bool { return strings.Compare(a.LastName, b.LastName) < 0 }, nil
	case "active":
		return func(a, b *entity.User) bool { return !a.Active && b.Active }, nil
	case "createdAt":
		return func(a, b *entity.User) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case "updatedAt":
		return func(a, b *entity.User) bool { return a.UpdatedAt.Before(b.UpdatedAt) }, nil
	default:
		return nil, fmt.Errorf("unsupported sort field %q", sortBy)
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
