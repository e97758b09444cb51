package dto

import "github.com/noah-isme/academy-desk-api/internal/models"

// CreateUserRequest creates a staff account.
type CreateUserRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=64"`
	FullName string          `json:"fullName" validate:"required,max=120"`
	Role     models.UserRole `json:"role" validate:"required,oneof=OWNER ADMIN STAFF"`
	Password string          `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest edits a staff account.
type UpdateUserRequest struct {
	FullName string          `json:"fullName" validate:"required,max=120"`
	Role     models.UserRole `json:"role" validate:"required,oneof=OWNER ADMIN STAFF STUDENT"`
	Active   *bool           `json:"active"`
}
