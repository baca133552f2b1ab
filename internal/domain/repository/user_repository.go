package repository

import (
	"context"
	"errors"

	"userhub/internal/domain/entity"
)

// ErrDuplicate is returned by Create/Save when the store rejects a write
// because of the unique constraints on username or email. Lookup methods
// report an absent record as (nil, nil), not as an error.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository is the persistence gateway for user records.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindPage returns one page of users plus the total record count.
	// sortBy is an entity attribute name (id, username, email, firstName,
	// lastName, active, createdAt, updatedAt); an unknown attribute is an error.
	FindPage(ctx context.Context, page, size int, sortBy string, ascending bool) ([]entity.User, int64, error)
	// Create persists a new user and assigns its ID.
	Create(ctx context.Context, u *entity.User) error
	// Save overwrites an existing user by ID.
	Save(ctx context.Context, u *entity.User) error
}
