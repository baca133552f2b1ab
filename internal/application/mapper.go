package application

import (
	"time"

	"userhub/internal/domain/entity"
)

// UserView is the outward shape of a user. It never carries the password hash.
type UserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Page is the envelope returned by List.
// Direction echoes the caller's input verbatim; only the effective
// ordering is normalized.
type Page struct {
	Content     []UserView `json:"content"`
	CurrentPage int        `json:"currentPage"`
	TotalItems  int64      `json:"totalItems"`
	TotalPages  int        `json:"totalPages"`
	Size        int        `json:"size"`
	First       bool       `json:"first"`
	Last        bool       `json:"last"`
	Sort        string     `json:"sort"`
	Direction   string     `json:"direction"`
}

func toView(u *entity.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toViewList(users []entity.User) []UserView {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, toView(&users[i]))
	}
	return views
}
