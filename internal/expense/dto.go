package expense

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/core/common/validation"
	"github.com/frahmantamala/household-expense/internal/core/split"
)

const MaxMemoLength = 200

// ExpenseDTO is the request body for creating and replacing an expense.
// Only the policy fields matching SplitMethod are read: member_ids for
// equal, ratios for ratio, amounts for amount and bearer_id for full.
type ExpenseDTO struct {
	Amount      int64               `json:"amount"`
	CategoryID  int64               `json:"category_id"`
	PayerID     int64               `json:"payer_id"`
	Date        string              `json:"date"`
	SplitMethod string              `json:"split_method"`
	MemberIDs   []int64             `json:"member_ids,omitempty"`
	Ratios      []split.RatioEntry  `json:"ratios,omitempty"`
	Amounts     []split.AmountEntry `json:"amounts,omitempty"`
	BearerID    int64               `json:"bearer_id,omitempty"`
	Memo        string              `json:"memo"`
}

func (d ExpenseDTO) Validate() *errors.AppError {
	if err := validation.ValidateExpenseAmount(d.Amount); err != nil {
		return err
	}
	if err := validation.ValidateExpenseDate(d.Date); err != nil {
		return err
	}

	validator := validation.NewValidator()
	validator.Field("category_id", d.CategoryID).Required()
	validator.Field("payer_id", d.PayerID).Required()
	validator.Field("split_method", d.SplitMethod).Required().Custom(func(v interface{}) *errors.AppError {
		if !split.Method(v.(string)).Valid() {
			return errors.NewValidationFieldError("split_method", fmt.Sprintf("unknown split method %q", v), errors.ErrCodeInvalidSplitMethod)
		}
		return nil
	})
	validator.Field("memo", d.Memo).Custom(func(v interface{}) *errors.AppError {
		if len([]rune(v.(string))) > MaxMemoLength {
			return errors.NewValidationFieldError("memo", fmt.Sprintf("memo must not exceed %d characters", MaxMemoLength), errors.ErrCodeInvalidMemo)
		}
		return nil
	})
	return validator.Validate()
}

// Policy builds the split policy. Call after Validate.
func (d ExpenseDTO) Policy() (split.Policy, error) {
	return split.PolicyFromMethod(split.Method(d.SplitMethod), d.MemberIDs, d.Ratios, d.Amounts, d.BearerID)
}

type ExpenseResponse struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	Amount      int64     `json:"amount"`
	CategoryID  int64     `json:"category_id"`
	PayerID     int64     `json:"payer_id"`
	Date        string    `json:"date"`
	SplitMethod string    `json:"split_method"`
	Memo        string    `json:"memo"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Splits      []Split   `json:"splits"`
}

type ExpenseListResponse struct {
	Year      int               `json:"year"`
	Month     int               `json:"month"`
	Label     string            `json:"label"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Total     int64             `json:"total"`
	Expenses  []ExpenseResponse `json:"expenses"`
}
