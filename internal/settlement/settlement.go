package settlement

import (
	"time"

	settlementDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/settlement"
	"github.com/frahmantamala/household-expense/internal/core/period"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSettled Status = "settled"
	// StatusReopened is written by administrative tooling only. A reopened
	// period is editable again.
	StatusReopened Status = "reopened"
)

// Locks reports whether a settlement in this status freezes its period.
func (s Status) Locks() bool {
	return s != StatusReopened
}

type Payment struct {
	ID           int64
	SettlementID int64
	FromMemberID int64
	ToMemberID   int64
	Amount       int64
	IsPaid       bool
	PaidAt       *time.Time
}

// Settlement is the confirmed transfer plan for one group period.
type Settlement struct {
	ID          int64
	GroupID     int64
	PeriodStart string
	PeriodEnd   string
	Status      Status
	CreatedBy   int64
	CreatedAt   time.Time
	SettledAt   *time.Time
	Payments    []Payment
}

// Outstanding counts the payments not yet confirmed.
func (s *Settlement) Outstanding() int {
	n := 0
	for _, p := range s.Payments {
		if !p.IsPaid {
			n++
		}
	}
	return n
}

func (s *Settlement) ToResponse() SettlementResponse {
	resp := SettlementResponse{
		ID:          s.ID,
		GroupID:     s.GroupID,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		Status:      string(s.Status),
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		SettledAt:   s.SettledAt,
		Outstanding: s.Outstanding(),
		Payments:    make([]PaymentResponse, len(s.Payments)),
	}
	if end, err := period.ParseDate(s.PeriodEnd); err == nil {
		resp.Label = period.Label(end.Year(), int(end.Month()))
	}
	for i, p := range s.Payments {
		resp.Payments[i] = PaymentResponse{
			ID:           p.ID,
			FromMemberID: p.FromMemberID,
			ToMemberID:   p.ToMemberID,
			Amount:       p.Amount,
			IsPaid:       p.IsPaid,
			PaidAt:       p.PaidAt,
		}
	}
	return resp
}

func ToDataModel(s *Settlement) *settlementDatamodel.Settlement {
	row := &settlementDatamodel.Settlement{
		ID:          s.ID,
		GroupID:     s.GroupID,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		Status:      string(s.Status),
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		SettledAt:   s.SettledAt,
		Payments:    make([]settlementDatamodel.SettlementPayment, len(s.Payments)),
	}
	for i, p := range s.Payments {
		row.Payments[i] = settlementDatamodel.SettlementPayment{
			ID:           p.ID,
			SettlementID: s.ID,
			FromMemberID: p.FromMemberID,
			ToMemberID:   p.ToMemberID,
			Amount:       p.Amount,
			IsPaid:       p.IsPaid,
			PaidAt:       p.PaidAt,
		}
	}
	return row
}

func FromDataModel(row *settlementDatamodel.Settlement) *Settlement {
	s := &Settlement{
		ID:          row.ID,
		GroupID:     row.GroupID,
		PeriodStart: row.PeriodStart,
		PeriodEnd:   row.PeriodEnd,
		Status:      Status(row.Status),
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		SettledAt:   row.SettledAt,
		Payments:    make([]Payment, len(row.Payments)),
	}
	for i, p := range row.Payments {
		s.Payments[i] = paymentFromDataModel(&p)
	}
	return s
}

func paymentFromDataModel(p *settlementDatamodel.SettlementPayment) Payment {
	return Payment{
		ID:           p.ID,
		SettlementID: p.SettlementID,
		FromMemberID: p.FromMemberID,
		ToMemberID:   p.ToMemberID,
		Amount:       p.Amount,
		IsPaid:       p.IsPaid,
		PaidAt:       p.PaidAt,
	}
}
