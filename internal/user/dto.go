package user

import (
	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/core/common/validation"
)

// CreateUserDTO is used by the seeder; there is no public sign-up endpoint.
type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (d CreateUserDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("email", d.Email).Required().MaxLength(255)
	validator.Field("name", d.Name).Required().MaxLength(100)
	validator.Field("password", d.Password).Required()
	return validator.Validate()
}
