package expense

import (
	"time"

	"github.com/frahmantamala/household-expense/internal/core/balance"
	expenseDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/household-expense/internal/core/period"
	"github.com/frahmantamala/household-expense/internal/core/split"
)

type Split struct {
	MemberID int64 `json:"member_id"`
	Amount   int64 `json:"amount"`
}

// Expense is one payment made on behalf of the household. Its splits always
// sum to Amount.
type Expense struct {
	ID          int64
	GroupID     int64
	Amount      int64
	CategoryID  int64
	PayerID     int64
	Date        time.Time
	SplitMethod split.Method
	Memo        string
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Splits      []Split
}

func (e *Expense) DateString() string {
	return e.Date.Format(period.DateLayout)
}

func (e *Expense) ToResponse() ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Amount:      e.Amount,
		CategoryID:  e.CategoryID,
		PayerID:     e.PayerID,
		Date:        e.DateString(),
		SplitMethod: string(e.SplitMethod),
		Memo:        e.Memo,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Splits:      e.Splits,
	}
}

func splitsFromShares(shares []split.Share) []Split {
	out := make([]Split, len(shares))
	for i, sh := range shares {
		out[i] = Split{MemberID: sh.MemberID, Amount: sh.Amount}
	}
	return out
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	row := &expenseDatamodel.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Amount:      e.Amount,
		CategoryID:  e.CategoryID,
		PayerID:     e.PayerID,
		Date:        e.Date,
		SplitMethod: string(e.SplitMethod),
		Memo:        e.Memo,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Splits:      make([]expenseDatamodel.ExpenseSplit, len(e.Splits)),
	}
	for i, sp := range e.Splits {
		row.Splits[i] = expenseDatamodel.ExpenseSplit{ExpenseID: e.ID, MemberID: sp.MemberID, Amount: sp.Amount}
	}
	return row
}

func FromDataModel(row *expenseDatamodel.Expense) *Expense {
	e := &Expense{
		ID:          row.ID,
		GroupID:     row.GroupID,
		Amount:      row.Amount,
		CategoryID:  row.CategoryID,
		PayerID:     row.PayerID,
		Date:        period.Normalize(row.Date),
		SplitMethod: split.Method(row.SplitMethod),
		Memo:        row.Memo,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Splits:      make([]Split, len(row.Splits)),
	}
	for i, sp := range row.Splits {
		e.Splits[i] = Split{MemberID: sp.MemberID, Amount: sp.Amount}
	}
	return e
}

// toBalanceInputs flattens expenses into the aggregator's input shape.
func toBalanceInputs(rows []*expenseDatamodel.Expense) ([]balance.Expense, []balance.Split) {
	expenses := make([]balance.Expense, 0, len(rows))
	var splits []balance.Split
	for _, row := range rows {
		expenses = append(expenses, balance.Expense{ID: row.ID, Amount: row.Amount, PayerID: row.PayerID})
		for _, sp := range row.Splits {
			splits = append(splits, balance.Split{ExpenseID: row.ID, MemberID: sp.MemberID, Amount: sp.Amount})
		}
	}
	return expenses, splits
}
