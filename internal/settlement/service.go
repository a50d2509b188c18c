package settlement

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/core/balance"
	"github.com/frahmantamala/household-expense/internal/core/common/validation"
	settlementDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/settlement"
	"github.com/frahmantamala/household-expense/internal/core/events"
	"github.com/frahmantamala/household-expense/internal/core/period"
	"github.com/frahmantamala/household-expense/internal/group"
)

// Repository persists settlements and their payments. Create reports a
// duplicate (group, period_start) as errors.ErrSettlementExists.
type Repository interface {
	Create(ctx context.Context, s *settlementDatamodel.Settlement) error
	GetByID(ctx context.Context, id int64) (*settlementDatamodel.Settlement, error)
	GetByPeriod(ctx context.Context, groupID int64, periodStart string) (*settlementDatamodel.Settlement, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*settlementDatamodel.Settlement, error)
	GetPayment(ctx context.Context, paymentID int64) (*settlementDatamodel.SettlementPayment, error)
	MarkPaymentPaid(ctx context.Context, paymentID, settlementID int64, paidAt time.Time) (PaidOutcome, error)
}

// PaidOutcome is the result of the mark-paid transaction. Flipped is false
// when another request confirmed the payment first.
type PaidOutcome struct {
	Flipped      bool
	AllCompleted bool
}

type GroupDirectory interface {
	Load(ctx context.Context, groupID int64) (*group.Group, error)
	RequireMember(ctx context.Context, groupID, userID int64) error
}

// ExpenseReader supplies one period's expenses and splits.
type ExpenseReader interface {
	PeriodActivity(ctx context.Context, groupID int64, p period.Period) ([]balance.Expense, []balance.Split, error)
}

type Service struct {
	repo      Repository
	groups    GroupDirectory
	expenses  ExpenseReader
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, groups GroupDirectory, expenses ExpenseReader, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		groups:    groups,
		expenses:  expenses,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateSettlement confirms the period (year, month). A period can be
// confirmed once; a second attempt fails with ErrSettlementExists.
func (s *Service) CreateSettlement(ctx context.Context, callerID, groupID int64, year, month int) (*Settlement, error) {
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	g, err := s.groups.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(callerID) {
		return nil, errors.ErrNotGroupMember
	}
	if !g.IsOwner(callerID) {
		s.logger.Warn("settlement creation denied", "group_id", groupID, "caller_id", callerID)
		return nil, errors.ErrNotGroupOwner
	}

	p := g.PeriodFor(year, month)
	existing, err := s.repo.GetByPeriod(ctx, groupID, p.StartString())
	if err != nil {
		s.logger.Error("failed to look up settlement", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to look up settlement", err)
	}
	if existing != nil {
		return nil, alreadyConfirmed(existing.ID, p)
	}

	balances, transfers, _, err := s.compute(ctx, g, p)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	st := &Settlement{
		GroupID:     groupID,
		PeriodStart: p.StartString(),
		PeriodEnd:   p.EndString(),
		Status:      StatusPending,
		CreatedBy:   callerID,
		CreatedAt:   now,
		Payments:    make([]Payment, len(transfers)),
	}
	for i, t := range transfers {
		st.Payments[i] = Payment{FromMemberID: t.FromMemberID, ToMemberID: t.ToMemberID, Amount: t.Amount}
	}
	if len(transfers) == 0 {
		st.Status = StatusSettled
		st.SettledAt = &now
	}

	row := ToDataModel(st)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, errors.ErrSettlementExists) {
			s.logger.Warn("concurrent settlement creation lost", "group_id", groupID, "period_start", st.PeriodStart)
			return nil, alreadyConfirmed(0, p)
		}
		s.logger.Error("failed to create settlement", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to create settlement", err)
	}
	created := FromDataModel(row)

	s.logger.Info("settlement created",
		"settlement_id", created.ID,
		"group_id", groupID,
		"period_start", created.PeriodStart,
		"status", created.Status,
		"payments", len(created.Payments),
		"members", len(balances))

	s.publish(ctx, events.NewSettlementCreatedEvent(created.ID, groupID, created.PeriodStart, string(created.Status), len(created.Payments), callerID))
	if created.Status == StatusSettled {
		s.publish(ctx, events.NewSettlementCompletedEvent(created.ID, groupID, now))
	}
	return created, nil
}

// MarkPaymentPaid lets the recipient confirm a transfer. Confirming an
// already paid payment succeeds with AlreadyPaid set.
func (s *Service) MarkPaymentPaid(ctx context.Context, callerID, paymentID int64) (*MarkPaidResult, error) {
	pay, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.GetByID(ctx, pay.SettlementID)
	if err != nil {
		return nil, err
	}
	if pay.ToMemberID != callerID {
		s.logger.Warn("payment confirmation denied", "payment_id", paymentID, "caller_id", callerID, "to_member_id", pay.ToMemberID)
		return nil, errors.ErrNotPaymentRecipient
	}
	if pay.IsPaid {
		return &MarkPaidResult{Success: true, AllCompleted: Status(st.Status) == StatusSettled, AlreadyPaid: true}, nil
	}

	now := s.now().UTC()
	outcome, err := s.repo.MarkPaymentPaid(ctx, pay.ID, st.ID, now)
	if err != nil {
		s.logger.Error("failed to mark payment paid", "error", err, "payment_id", paymentID)
		return nil, errors.NewInternalError("failed to mark payment paid", err)
	}
	if !outcome.Flipped {
		return &MarkPaidResult{Success: true, AllCompleted: outcome.AllCompleted, AlreadyPaid: true}, nil
	}

	s.logger.Info("payment marked paid",
		"payment_id", paymentID,
		"settlement_id", st.ID,
		"amount", pay.Amount,
		"all_completed", outcome.AllCompleted)

	s.publish(ctx, events.NewPaymentPaidEvent(pay.ID, st.ID, pay.FromMemberID, pay.ToMemberID, pay.Amount))
	if outcome.AllCompleted {
		s.publish(ctx, events.NewSettlementCompletedEvent(st.ID, st.GroupID, now))
	}
	return &MarkPaidResult{Success: true, AllCompleted: outcome.AllCompleted}, nil
}

// GetPreview recomputes balances and transfers from live data, whether or
// not the period has been confirmed.
func (s *Service) GetPreview(ctx context.Context, callerID, groupID int64, year, month int) (*Preview, error) {
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	g, err := s.groups.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(callerID) {
		return nil, errors.ErrNotGroupMember
	}

	p := g.PeriodFor(year, month)
	balances, transfers, expenses, err := s.compute(ctx, g, p)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		Year:           year,
		Month:          month,
		Label:          period.Label(year, month),
		StartDate:      p.StartString(),
		EndDate:        p.EndString(),
		Balances:       balances,
		Payments:       transfers,
		ExpenseCount:   len(expenses),
		TotalExpenses:  balance.TotalExpenses(expenses),
		TransferVolume: balance.TotalVolume(transfers),
	}
	if preview.Payments == nil {
		preview.Payments = []balance.Transfer{}
	}

	existing, err := s.repo.GetByPeriod(ctx, groupID, p.StartString())
	if err != nil {
		s.logger.Error("failed to look up settlement", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to look up settlement", err)
	}
	if existing != nil {
		id, status := existing.ID, existing.Status
		preview.SettlementID = &id
		preview.SettlementStatus = &status
	}
	return preview, nil
}

// IsPeriodLocked is true when the period has a settlement that is not
// reopened.
func (s *Service) IsPeriodLocked(ctx context.Context, groupID int64, periodStart string) (bool, error) {
	existing, err := s.repo.GetByPeriod(ctx, groupID, periodStart)
	if err != nil {
		return false, err
	}
	return existing != nil && Status(existing.Status).Locks(), nil
}

func (s *Service) GetSettlement(ctx context.Context, callerID, settlementID int64) (*Settlement, error) {
	row, err := s.repo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if err := s.groups.RequireMember(ctx, row.GroupID, callerID); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// ListSettlements returns the group's settlements, newest period first.
func (s *Service) ListSettlements(ctx context.Context, callerID, groupID int64) ([]*Settlement, error) {
	if err := s.groups.RequireMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("failed to list settlements", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to list settlements", err)
	}
	out := make([]*Settlement, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out, nil
}

func (s *Service) compute(ctx context.Context, g *group.Group, p period.Period) ([]balance.MemberBalance, []balance.Transfer, []balance.Expense, error) {
	expenses, splits, err := s.expenses.PeriodActivity(ctx, g.ID, p)
	if err != nil {
		s.logger.Error("failed to load period activity", "error", err, "group_id", g.ID, "period", p.String())
		return nil, nil, nil, errors.NewInternalError("failed to load period expenses", err)
	}
	balances := balance.Aggregate(expenses, splits, g.MemberIDs)
	return balances, balance.MinimizeTransfers(balances), expenses, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func alreadyConfirmed(settlementID int64, p period.Period) *errors.AppError {
	details := map[string]interface{}{
		"period_start": p.StartString(),
		"period_end":   p.EndString(),
	}
	if settlementID != 0 {
		details["settlement_id"] = settlementID
	}
	return errors.ErrSettlementExists.WithDetails(details)
}
