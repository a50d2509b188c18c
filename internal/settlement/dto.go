package settlement

import (
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/core/balance"
	"github.com/frahmantamala/household-expense/internal/core/common/validation"
)

type CreateSettlementDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (d CreateSettlementDTO) Validate() *errors.AppError {
	return validation.ValidateYearMonth(d.Year, d.Month)
}

type PaymentResponse struct {
	ID           int64      `json:"id"`
	FromMemberID int64      `json:"from_member_id"`
	ToMemberID   int64      `json:"to_member_id"`
	Amount       int64      `json:"amount"`
	IsPaid       bool       `json:"is_paid"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
}

type SettlementResponse struct {
	ID          int64             `json:"id"`
	GroupID     int64             `json:"group_id"`
	Label       string            `json:"label"`
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	Status      string            `json:"status"`
	CreatedBy   int64             `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	SettledAt   *time.Time        `json:"settled_at,omitempty"`
	Outstanding int               `json:"outstanding"`
	Payments    []PaymentResponse `json:"payments"`
}

type SettlementListResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
}

// Preview is a live recomputation of a period. SettlementID is set when the
// period has already been confirmed.
type Preview struct {
	Year             int                     `json:"year"`
	Month            int                     `json:"month"`
	Label            string                  `json:"label"`
	StartDate        string                  `json:"start_date"`
	EndDate          string                  `json:"end_date"`
	Balances         []balance.MemberBalance `json:"balances"`
	Payments         []balance.Transfer      `json:"payments"`
	SettlementID     *int64                  `json:"settlement_id"`
	SettlementStatus *string                 `json:"settlement_status"`
	ExpenseCount     int                     `json:"expense_count"`
	TotalExpenses    int64                   `json:"total_expenses"`
	TransferVolume   int64                   `json:"transfer_volume"`
}

type MarkPaidResult struct {
	Success      bool `json:"success"`
	AllCompleted bool `json:"all_completed"`
	AlreadyPaid  bool `json:"already_paid"`
}
