package dto

import (
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries optional profile fields; absent fields are
// left untouched.
type UpdateProfileRequest struct {
	Name      *string           `json:"name"`
	Contact   *string           `json:"contact"`
	Addresses *[]domain.Address `json:"addresses"`
}

// UserResponse is the public view of an account. The password hash is never
// serialized.
type UserResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.Role      `json:"role"`
	Contact   string           `json:"contact"`
	Addresses []domain.Address `json:"addresses"`
	IsActive  bool             `json:"isActive"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	addresses := user.Addresses
	if addresses == nil {
		addresses = []domain.Address{}
	}
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Contact:   user.Contact,
		Addresses: addresses,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
