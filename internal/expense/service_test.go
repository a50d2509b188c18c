package expense_test

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/household-expense/internal"
	expenseDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/household-expense/internal/core/period"
	"github.com/frahmantamala/household-expense/internal/core/split"
	"github.com/frahmantamala/household-expense/internal/expense"
	"github.com/frahmantamala/household-expense/internal/group"
)

// Mock repository for testing
type mockExpenseRepository struct {
	expenses map[int64]*expenseDatamodel.Expense
	nextID   int64
}

func newMockExpenseRepository() *mockExpenseRepository {
	return &mockExpenseRepository{
		expenses: make(map[int64]*expenseDatamodel.Expense),
		nextID:   1,
	}
}

func (m *mockExpenseRepository) Create(ctx context.Context, exp *expenseDatamodel.Expense) error {
	exp.ID = m.nextID
	m.nextID++
	for i := range exp.Splits {
		exp.Splits[i].ExpenseID = exp.ID
	}
	stored := *exp
	m.expenses[exp.ID] = &stored
	return nil
}

func (m *mockExpenseRepository) GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error) {
	exp, ok := m.expenses[id]
	if !ok {
		return nil, errors.ErrExpenseNotFound
	}
	copied := *exp
	return &copied, nil
}

func (m *mockExpenseRepository) Replace(ctx context.Context, exp *expenseDatamodel.Expense) error {
	if _, ok := m.expenses[exp.ID]; !ok {
		return errors.ErrExpenseNotFound
	}
	stored := *exp
	m.expenses[exp.ID] = &stored
	return nil
}

func (m *mockExpenseRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.expenses[id]; !ok {
		return errors.ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *mockExpenseRepository) ListByPeriod(ctx context.Context, groupID int64, start, end time.Time) ([]*expenseDatamodel.Expense, error) {
	var out []*expenseDatamodel.Expense
	for _, exp := range m.expenses {
		if exp.GroupID == groupID && !exp.Date.Before(start) && !exp.Date.After(end) {
			out = append(out, exp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

type stubGroups struct {
	groups map[int64]*group.Group
}

func (s *stubGroups) Load(ctx context.Context, groupID int64) (*group.Group, error) {
	g, ok := s.groups[groupID]
	if !ok {
		return nil, errors.ErrGroupNotFound
	}
	return g, nil
}

type stubCategories struct{}

func (stubCategories) RequireActive(ctx context.Context, id int64) error {
	if id == 1 || id == 2 {
		return nil
	}
	return errors.ErrCategoryNotFound
}

type stubLocks struct {
	locked map[string]bool
}

func (s *stubLocks) IsPeriodLocked(ctx context.Context, groupID int64, periodStart string) (bool, error) {
	return s.locked[periodStart], nil
}

const (
	taro   int64 = 1
	hanako int64 = 2
	jiro   int64 = 3
	alien  int64 = 9
)

var _ = Describe("Expense Service", func() {
	var (
		repo    *mockExpenseRepository
		locks   *stubLocks
		service *expense.Service
		ctx     context.Context
		groupID int64 = 10
	)

	baseDTO := func() expense.ExpenseDTO {
		return expense.ExpenseDTO{
			Amount:      1000,
			CategoryID:  1,
			PayerID:     taro,
			Date:        "2024-01-10",
			SplitMethod: "equal",
			MemberIDs:   []int64{taro, hanako, jiro},
		}
	}

	BeforeEach(func() {
		repo = newMockExpenseRepository()
		locks = &stubLocks{locked: map[string]bool{}}
		groups := &stubGroups{groups: map[int64]*group.Group{
			groupID: {ID: groupID, Name: "Home", OwnerID: taro, ClosingDay: 25, MemberIDs: []int64{taro, hanako, jiro}},
		}}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = expense.NewService(repo, groups, stubCategories{}, slogger)
		service.SetPeriodLockChecker(locks)
		ctx = context.Background()
	})

	Describe("CreateExpense", func() {
		It("allocates an equal split with the remainder to the payer", func() {
			// Given / When
			exp, err := service.CreateExpense(ctx, taro, groupID, baseDTO())

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(exp.ID).To(Equal(int64(1)))
			Expect(exp.Splits).To(Equal([]expense.Split{
				{MemberID: taro, Amount: 334},
				{MemberID: hanako, Amount: 333},
				{MemberID: jiro, Amount: 333},
			}))
			Expect(exp.DateString()).To(Equal("2024-01-10"))
			Expect(exp.CreatedBy).To(Equal(taro))
		})

		It("charges a full split to the bearer only", func() {
			dto := baseDTO()
			dto.SplitMethod = "full"
			dto.MemberIDs = nil
			dto.BearerID = hanako

			exp, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Splits).To(ConsistOf(
				expense.Split{MemberID: taro, Amount: 0},
				expense.Split{MemberID: hanako, Amount: 1000},
				expense.Split{MemberID: jiro, Amount: 0},
			))
		})

		It("accepts an amount split that sums to the expense", func() {
			dto := baseDTO()
			dto.SplitMethod = "amount"
			dto.Amounts = []split.AmountEntry{{MemberID: taro, Amount: 700}, {MemberID: hanako, Amount: 300}}

			exp, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Splits).To(HaveLen(2))
		})

		It("rejects an amount split whose entries do not sum to the expense", func() {
			dto := baseDTO()
			dto.SplitMethod = "amount"
			dto.Amounts = []split.AmountEntry{{MemberID: taro, Amount: 700}, {MemberID: hanako, Amount: 200}}

			_, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).To(MatchError(errors.ErrAmountSumMismatch))
			Expect(repo.expenses).To(BeEmpty())
		})

		It("rejects a negative amount entry even when the entries sum to the expense", func() {
			dto := baseDTO()
			dto.SplitMethod = "amount"
			dto.Amounts = []split.AmountEntry{{MemberID: taro, Amount: dto.Amount + 200}, {MemberID: hanako, Amount: -200}}

			_, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).To(MatchError(errors.ErrInvalidAmount))
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(Equal(map[string]int64{"member_id": hanako, "amount": -200}))
			Expect(repo.expenses).To(BeEmpty())
		})

		It("accepts a zero amount entry", func() {
			dto := baseDTO()
			dto.SplitMethod = "amount"
			dto.Amounts = []split.AmountEntry{{MemberID: taro, Amount: dto.Amount}, {MemberID: hanako, Amount: 0}}

			exp, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Splits).To(ContainElement(expense.Split{MemberID: hanako, Amount: 0}))
		})

		It("rejects a ratio split that does not total 100", func() {
			dto := baseDTO()
			dto.SplitMethod = "ratio"
			dto.Ratios = []split.RatioEntry{{MemberID: taro, Percent: 60}, {MemberID: hanako, Percent: 30}}

			_, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).To(MatchError(errors.ErrRatioSumMismatch))
		})

		It("requires the caller to be a member", func() {
			_, err := service.CreateExpense(ctx, alien, groupID, baseDTO())
			Expect(err).To(MatchError(errors.ErrNotGroupMember))
		})

		It("requires the payer to be a member", func() {
			dto := baseDTO()
			dto.PayerID = alien

			_, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).To(MatchError(errors.ErrNotGroupMember))
		})

		It("rejects split members outside the group", func() {
			dto := baseDTO()
			dto.MemberIDs = []int64{taro, alien}

			_, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).To(MatchError(errors.ErrNotGroupMember))
		})

		It("rejects an empty member selection", func() {
			dto := baseDTO()
			dto.MemberIDs = nil

			_, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).To(MatchError(errors.ErrEmptyMemberSelection))
		})

		It("rejects unknown categories", func() {
			dto := baseDTO()
			dto.CategoryID = 77

			_, err := service.CreateExpense(ctx, taro, groupID, dto)

			Expect(err).To(MatchError(errors.ErrCategoryNotFound))
		})

		DescribeTable("field validation",
			func(mutate func(*expense.ExpenseDTO), field string, code errors.ErrorCode) {
				dto := baseDTO()
				mutate(&dto)

				_, err := service.CreateExpense(ctx, taro, groupID, dto)

				appErr, ok := errors.IsAppError(err)
				Expect(ok).To(BeTrue())
				details, ok := appErr.Details.(errors.ValidationErrors)
				Expect(ok).To(BeTrue())
				Expect(details.Errors).To(ContainElement(SatisfyAll(
					HaveField("Field", field),
					HaveField("Code", string(code)),
				)))
			},
			Entry("zero amount", func(d *expense.ExpenseDTO) { d.Amount = 0 }, "amount", errors.ErrCodeInvalidAmount),
			Entry("negative amount", func(d *expense.ExpenseDTO) { d.Amount = -5 }, "amount", errors.ErrCodeInvalidAmount),
			Entry("malformed date", func(d *expense.ExpenseDTO) { d.Date = "2024/01/10" }, "date", errors.ErrCodeInvalidDate),
			Entry("impossible date", func(d *expense.ExpenseDTO) { d.Date = "2023-02-29" }, "date", errors.ErrCodeInvalidDate),
			Entry("unknown method", func(d *expense.ExpenseDTO) { d.SplitMethod = "shares" }, "split_method", errors.ErrCodeInvalidSplitMethod),
			Entry("long memo", func(d *expense.ExpenseDTO) {
				d.Memo = string(make([]rune, expense.MaxMemoLength+1))
			}, "memo", errors.ErrCodeInvalidMemo),
		)

		It("refuses to add an expense to a settled period", func() {
			locks.locked["2023-12-26"] = true

			_, err := service.CreateExpense(ctx, taro, groupID, baseDTO())

			Expect(err).To(MatchError(errors.ErrPeriodLocked))
		})
	})

	Describe("editing a settled period", func() {
		var expenseID int64

		BeforeEach(func() {
			// Given an expense dated 2024-01-10, in the period 2023-12-26..2024-01-25
			exp, err := service.CreateExpense(ctx, taro, groupID, baseDTO())
			Expect(err).NotTo(HaveOccurred())
			expenseID = exp.ID

			// and a settlement for that period
			locks.locked["2023-12-26"] = true
		})

		It("rejects edits with PERIOD_LOCKED and leaves the expense untouched", func() {
			dto := baseDTO()
			dto.Amount = 2000

			_, err := service.UpdateExpense(ctx, taro, expenseID, dto)

			Expect(err).To(MatchError(errors.ErrPeriodLocked))
			Expect(repo.expenses[expenseID].Amount).To(Equal(int64(1000)))
		})

		It("rejects moving the expense out of the locked period", func() {
			dto := baseDTO()
			dto.Date = "2024-02-01"

			_, err := service.UpdateExpense(ctx, taro, expenseID, dto)

			Expect(err).To(MatchError(errors.ErrPeriodLocked))
		})

		It("rejects deletes with PERIOD_LOCKED", func() {
			err := service.DeleteExpense(ctx, taro, expenseID)

			Expect(err).To(MatchError(errors.ErrPeriodLocked))
			Expect(repo.expenses).To(HaveKey(expenseID))
		})

		It("allows changes again once the period is reopened", func() {
			delete(locks.locked, "2023-12-26")

			Expect(service.DeleteExpense(ctx, taro, expenseID)).To(Succeed())
		})
	})

	Describe("UpdateExpense", func() {
		var expenseID int64

		BeforeEach(func() {
			exp, err := service.CreateExpense(ctx, taro, groupID, baseDTO())
			Expect(err).NotTo(HaveOccurred())
			expenseID = exp.ID
		})

		It("reallocates splits for the new policy", func() {
			dto := baseDTO()
			dto.SplitMethod = "ratio"
			dto.MemberIDs = nil
			dto.Ratios = []split.RatioEntry{{MemberID: taro, Percent: 50}, {MemberID: hanako, Percent: 50}}

			exp, err := service.UpdateExpense(ctx, hanako, expenseID, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Splits).To(Equal([]expense.Split{{MemberID: taro, Amount: 500}, {MemberID: hanako, Amount: 500}}))
			Expect(repo.expenses[expenseID].SplitMethod).To(Equal("ratio"))
			Expect(exp.CreatedBy).To(Equal(taro))
		})

		It("refuses to move an expense into a settled period", func() {
			locks.locked["2024-01-26"] = true
			dto := baseDTO()
			dto.Date = "2024-02-01"

			_, err := service.UpdateExpense(ctx, taro, expenseID, dto)

			Expect(err).To(MatchError(errors.ErrPeriodLocked))
		})

		It("reports a missing expense", func() {
			_, err := service.UpdateExpense(ctx, taro, 404, baseDTO())
			Expect(err).To(MatchError(errors.ErrExpenseNotFound))
		})

		It("hides the expense from non-members", func() {
			_, err := service.GetExpense(ctx, alien, expenseID)
			Expect(err).To(MatchError(errors.ErrNotGroupMember))
		})
	})

	Describe("ListExpenses and PeriodActivity", func() {
		BeforeEach(func() {
			for _, date := range []string{"2024-01-25", "2023-12-26", "2023-12-25", "2024-01-26"} {
				dto := baseDTO()
				dto.Date = date
				_, err := service.CreateExpense(ctx, taro, groupID, dto)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns only the period's expenses in date order", func() {
			resp, err := service.ListExpenses(ctx, hanako, groupID, 2024, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StartDate).To(Equal("2023-12-26"))
			Expect(resp.EndDate).To(Equal("2024-01-25"))
			Expect(resp.Label).To(Equal("2024年1月分"))
			Expect(resp.Total).To(Equal(int64(2000)))
			Expect(resp.Expenses).To(HaveLen(2))
			Expect(resp.Expenses[0].Date).To(Equal("2023-12-26"))
			Expect(resp.Expenses[1].Date).To(Equal("2024-01-25"))
		})

		It("validates year and month", func() {
			_, err := service.ListExpenses(ctx, hanako, groupID, 2024, 13)
			Expect(err).To(HaveOccurred())
		})

		It("feeds flattened expenses and splits to the settlement engine", func() {
			expenses, splits, err := service.PeriodActivity(ctx, groupID, period.Compute(25, 2024, 1))

			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(2))
			Expect(splits).To(HaveLen(6))
		})
	})
})
