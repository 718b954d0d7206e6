package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"library-backend/internal/shared/authz"
)

// CreateReaderRequest registers a system user record. Credentials live with
// the external identity provider; only the profile is stored here.
type CreateReaderRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Role     string `json:"role"`
}

func (r CreateReaderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName,
			validation.Required.Error("full name is required"),
			validation.Length(2, 100),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
		),
		validation.Field(&r.Role,
			validation.In(string(authz.RoleReader), string(authz.RoleStaff), string(authz.RoleAdmin)).
				Error("role must be reader, staff or admin"),
		),
	)
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			validation.In(string(authz.RoleReader), string(authz.RoleStaff), string(authz.RoleAdmin)).
				Error("role must be reader, staff or admin"),
		),
	)
}

// ListReadersRequest paginates the user listing.
type ListReadersRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (r *ListReadersRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
}
