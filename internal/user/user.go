package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/user"
)

// User is a registered household member. GroupIDs is only filled by
// GetProfile.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	GroupIDs     []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProfileResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	GroupIDs  []int64   `json:"group_ids"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToProfile() ProfileResponse {
	groupIDs := u.GroupIDs
	if groupIDs == nil {
		groupIDs = []int64{}
	}
	return ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		GroupIDs:  groupIDs,
		CreatedAt: u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
