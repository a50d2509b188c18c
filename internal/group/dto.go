package group

import (
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/core/common/validation"
	"github.com/frahmantamala/household-expense/internal/core/period"
)

type CreateGroupDTO struct {
	Name       string `json:"name"`
	ClosingDay int    `json:"closing_day"`
}

// Validate accepts a zero closing day, which means "use the default".
func (d CreateGroupDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", d.Name).Required().MaxLength(100)
	if d.ClosingDay != 0 {
		validator.Field("closing_day", d.ClosingDay).Between(period.MinClosingDay, period.MaxClosingDay, errors.ErrCodeInvalidClosingDay)
	}
	return validator.Validate()
}

type AddMemberDTO struct {
	UserID int64 `json:"user_id"`
}

func (d AddMemberDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("user_id", d.UserID).Required()
	return validator.Validate()
}

type UpdateClosingDayDTO struct {
	ClosingDay int `json:"closing_day"`
}

type GroupResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	OwnerID    int64     `json:"owner_id"`
	ClosingDay int       `json:"closing_day"`
	MemberIDs  []int64   `json:"member_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

type CurrentPeriodResponse struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
