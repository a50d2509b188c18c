package expense

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/core/balance"
	"github.com/frahmantamala/household-expense/internal/core/common/validation"
	expenseDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/household-expense/internal/core/period"
	"github.com/frahmantamala/household-expense/internal/core/split"
	"github.com/frahmantamala/household-expense/internal/group"
)

// Repository persists expenses together with their splits.
type Repository interface {
	Create(ctx context.Context, exp *expenseDatamodel.Expense) error
	GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error)
	Replace(ctx context.Context, exp *expenseDatamodel.Expense) error
	Delete(ctx context.Context, id int64) error
	ListByPeriod(ctx context.Context, groupID int64, start, end time.Time) ([]*expenseDatamodel.Expense, error)
}

type GroupDirectory interface {
	Load(ctx context.Context, groupID int64) (*group.Group, error)
}

type CategoryChecker interface {
	RequireActive(ctx context.Context, id int64) error
}

// PeriodLockChecker reports whether a settled period forbids edits.
type PeriodLockChecker interface {
	IsPeriodLocked(ctx context.Context, groupID int64, periodStart string) (bool, error)
}

// Service handles expense business logic
type Service struct {
	repo       Repository
	groups     GroupDirectory
	categories CategoryChecker
	locks      PeriodLockChecker
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, groups GroupDirectory, categories CategoryChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		groups:     groups,
		categories: categories,
		logger:     logger,
		now:        time.Now,
	}
}

// SetPeriodLockChecker attaches the settlement lifecycle. It is set after
// construction because the settlement service reads expenses from this one.
func (s *Service) SetPeriodLockChecker(locks PeriodLockChecker) {
	s.locks = locks
}

func (s *Service) CreateExpense(ctx context.Context, callerID, groupID int64, dto ExpenseDTO) (*Expense, error) {
	g, err := s.memberGroup(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	date, shares, err := s.prepare(ctx, g, dto)
	if err != nil {
		s.logger.Warn("expense rejected", "error", err, "group_id", groupID, "caller_id", callerID)
		return nil, err
	}

	now := s.now().UTC()
	exp := &Expense{
		GroupID:     groupID,
		Amount:      dto.Amount,
		CategoryID:  dto.CategoryID,
		PayerID:     dto.PayerID,
		Date:        date,
		SplitMethod: split.Method(dto.SplitMethod),
		Memo:        dto.Memo,
		CreatedBy:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Splits:      splitsFromShares(shares),
	}

	row := ToDataModel(exp)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create expense", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to create expense", err)
	}

	s.logger.Info("expense created",
		"expense_id", row.ID,
		"group_id", groupID,
		"amount", exp.Amount,
		"split_method", exp.SplitMethod,
		"date", exp.DateString())

	return FromDataModel(row), nil
}

func (s *Service) GetExpense(ctx context.Context, callerID, expenseID int64) (*Expense, error) {
	row, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberGroup(ctx, callerID, row.GroupID); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// UpdateExpense replaces the expense and its splits. Both the period the
// expense is in now and the period it would move to must be unlocked.
func (s *Service) UpdateExpense(ctx context.Context, callerID, expenseID int64, dto ExpenseDTO) (*Expense, error) {
	row, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	g, err := s.memberGroup(ctx, callerID, row.GroupID)
	if err != nil {
		return nil, err
	}

	_, oldPeriod := g.PeriodOf(row.Date)
	if err := s.ensureUnlocked(ctx, g.ID, oldPeriod); err != nil {
		s.logger.Warn("edit of locked expense refused", "expense_id", expenseID, "period_start", oldPeriod.StartString())
		return nil, err
	}

	date, shares, err := s.prepare(ctx, g, dto)
	if err != nil {
		return nil, err
	}

	exp := FromDataModel(row)
	exp.Amount = dto.Amount
	exp.CategoryID = dto.CategoryID
	exp.PayerID = dto.PayerID
	exp.Date = date
	exp.SplitMethod = split.Method(dto.SplitMethod)
	exp.Memo = dto.Memo
	exp.UpdatedAt = s.now().UTC()
	exp.Splits = splitsFromShares(shares)

	updated := ToDataModel(exp)
	if err := s.repo.Replace(ctx, updated); err != nil {
		if errors.Is(err, errors.ErrExpenseNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update expense", "error", err, "expense_id", expenseID)
		return nil, errors.NewInternalError("failed to update expense", err)
	}

	s.logger.Info("expense updated", "expense_id", expenseID, "group_id", g.ID, "amount", exp.Amount)
	return exp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, callerID, expenseID int64) error {
	row, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}
	g, err := s.memberGroup(ctx, callerID, row.GroupID)
	if err != nil {
		return err
	}

	_, p := g.PeriodOf(row.Date)
	if err := s.ensureUnlocked(ctx, g.ID, p); err != nil {
		s.logger.Warn("delete of locked expense refused", "expense_id", expenseID, "period_start", p.StartString())
		return err
	}

	if err := s.repo.Delete(ctx, expenseID); err != nil {
		if errors.Is(err, errors.ErrExpenseNotFound) {
			return err
		}
		s.logger.Error("failed to delete expense", "error", err, "expense_id", expenseID)
		return errors.NewInternalError("failed to delete expense", err)
	}

	s.logger.Info("expense deleted", "expense_id", expenseID, "group_id", g.ID)
	return nil
}

// ListExpenses returns the expenses of one accounting period, oldest first.
func (s *Service) ListExpenses(ctx context.Context, callerID, groupID int64, year, month int) (*ExpenseListResponse, error) {
	if err := validation.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	g, err := s.memberGroup(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	p := g.PeriodFor(year, month)
	rows, err := s.repo.ListByPeriod(ctx, groupID, p.Start, p.End)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to list expenses", err)
	}

	resp := &ExpenseListResponse{
		Year:      year,
		Month:     month,
		Label:     period.Label(year, month),
		StartDate: p.StartString(),
		EndDate:   p.EndString(),
		Expenses:  make([]ExpenseResponse, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Total += row.Amount
		resp.Expenses = append(resp.Expenses, FromDataModel(row).ToResponse())
	}
	return resp, nil
}

// PeriodActivity feeds the settlement lifecycle with one period's expenses
// and splits. No access check is made here.
func (s *Service) PeriodActivity(ctx context.Context, groupID int64, p period.Period) ([]balance.Expense, []balance.Split, error) {
	rows, err := s.repo.ListByPeriod(ctx, groupID, p.Start, p.End)
	if err != nil {
		return nil, nil, fmt.Errorf("period activity for group %d: %w", groupID, err)
	}
	expenses, splits := toBalanceInputs(rows)
	return expenses, splits, nil
}

func (s *Service) memberGroup(ctx context.Context, callerID, groupID int64) (*group.Group, error) {
	g, err := s.groups.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(callerID) {
		return nil, errors.ErrNotGroupMember
	}
	return g, nil
}

// prepare validates dto against the group and returns the expense date and
// the allocated shares.
func (s *Service) prepare(ctx context.Context, g *group.Group, dto ExpenseDTO) (time.Time, []split.Share, error) {
	if err := dto.Validate(); err != nil {
		return time.Time{}, nil, err
	}
	date, err := period.ParseDate(dto.Date)
	if err != nil {
		return time.Time{}, nil, errors.NewValidationFieldError("date", "date must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}

	if err := s.categories.RequireActive(ctx, dto.CategoryID); err != nil {
		return time.Time{}, nil, err
	}
	if !g.HasMember(dto.PayerID) {
		return time.Time{}, nil, errors.ErrNotGroupMember.WithMessage(fmt.Sprintf("payer %d is not a group member", dto.PayerID))
	}

	policy, err := dto.Policy()
	if err != nil {
		return time.Time{}, nil, err
	}
	members, err := split.ResolveTargetMembers(policy, g.MemberIDs)
	if err != nil {
		return time.Time{}, nil, err
	}
	if amounts, ok := policy.(split.Amount); ok {
		if err := checkAmountEntries(amounts, dto.Amount); err != nil {
			return time.Time{}, nil, err
		}
	}

	_, p := g.PeriodOf(date)
	if err := s.ensureUnlocked(ctx, g.ID, p); err != nil {
		return time.Time{}, nil, err
	}

	shares, err := split.Allocate(dto.Amount, dto.PayerID, policy, members)
	if err != nil {
		return time.Time{}, nil, err
	}
	return date, shares, nil
}

// checkAmountEntries holds explicit amounts to the split invariants: every
// entry non-negative and the entries summing to the expense.
func checkAmountEntries(amounts split.Amount, total int64) error {
	for _, e := range amounts.Entries {
		if e.Amount < 0 {
			return errors.ErrInvalidAmount.
				WithMessage(fmt.Sprintf("split amount for member %d must not be negative", e.MemberID)).
				WithDetails(map[string]int64{"member_id": e.MemberID, "amount": e.Amount})
		}
	}
	if amounts.Sum() != total {
		return errors.ErrAmountSumMismatch.WithDetails(map[string]int64{
			"expected": total,
			"actual":   amounts.Sum(),
		})
	}
	return nil
}

func (s *Service) ensureUnlocked(ctx context.Context, groupID int64, p period.Period) error {
	if s.locks == nil {
		return nil
	}
	locked, err := s.locks.IsPeriodLocked(ctx, groupID, p.StartString())
	if err != nil {
		s.logger.Error("failed to check period lock", "error", err, "group_id", groupID)
		return errors.NewInternalError("failed to check period lock", err)
	}
	if locked {
		return errors.ErrPeriodLocked.WithDetails(map[string]string{
			"period_start": p.StartString(),
			"period_end":   p.EndString(),
		})
	}
	return nil
}
