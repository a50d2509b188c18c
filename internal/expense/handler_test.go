package expense_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/auth"
	"github.com/frahmantamala/household-expense/internal/core/split"
	"github.com/frahmantamala/household-expense/internal/expense"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubExpenseService struct {
	gotCaller  int64
	gotGroup   int64
	gotExpense int64
	gotYear    int
	gotMonth   int
	gotDTO     expense.ExpenseDTO
	err        error
}

func (s *stubExpenseService) stored(id int64) *expense.Expense {
	return &expense.Expense{
		ID:          id,
		GroupID:     4,
		Amount:      1000,
		CategoryID:  1,
		PayerID:     1,
		Date:        time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
		SplitMethod: split.MethodEqual,
		Splits:      []expense.Split{{MemberID: 1, Amount: 334}, {MemberID: 2, Amount: 333}, {MemberID: 3, Amount: 333}},
	}
}

func (s *stubExpenseService) CreateExpense(ctx context.Context, callerID, groupID int64, dto expense.ExpenseDTO) (*expense.Expense, error) {
	s.gotCaller, s.gotGroup, s.gotDTO = callerID, groupID, dto
	if s.err != nil {
		return nil, s.err
	}
	return s.stored(11), nil
}

func (s *stubExpenseService) GetExpense(ctx context.Context, callerID, expenseID int64) (*expense.Expense, error) {
	s.gotCaller, s.gotExpense = callerID, expenseID
	if s.err != nil {
		return nil, s.err
	}
	return s.stored(expenseID), nil
}

func (s *stubExpenseService) UpdateExpense(ctx context.Context, callerID, expenseID int64, dto expense.ExpenseDTO) (*expense.Expense, error) {
	s.gotCaller, s.gotExpense, s.gotDTO = callerID, expenseID, dto
	if s.err != nil {
		return nil, s.err
	}
	return s.stored(expenseID), nil
}

func (s *stubExpenseService) DeleteExpense(ctx context.Context, callerID, expenseID int64) error {
	s.gotCaller, s.gotExpense = callerID, expenseID
	return s.err
}

func (s *stubExpenseService) ListExpenses(ctx context.Context, callerID, groupID int64, year, month int) (*expense.ExpenseListResponse, error) {
	s.gotCaller, s.gotGroup, s.gotYear, s.gotMonth = callerID, groupID, year, month
	return &expense.ExpenseListResponse{Year: year, Month: month, Label: "2024年12月分", Expenses: []expense.ExpenseResponse{}}, nil
}

var _ = Describe("Expense Handler", func() {
	var (
		svc    *stubExpenseService
		router chi.Router
	)

	serve := func(method, target, body string, userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if userID != 0 {
			req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: userID}))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	errorCode := func(w *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body.Error.Code
	}

	const body = `{"amount":1000,"category_id":1,"payer_id":1,"date":"2024-12-10","split_method":"equal","member_ids":[1,2,3]}`

	BeforeEach(func() {
		svc = &stubExpenseService{}
		handler := expense.NewHandler(svc)
		router = chi.NewRouter()
		router.Post("/groups/{groupID}/expenses", handler.CreateExpense)
		router.Get("/groups/{groupID}/expenses", handler.ListExpenses)
		router.Get("/expenses/{expenseID}", handler.GetExpense)
		router.Put("/expenses/{expenseID}", handler.UpdateExpense)
		router.Delete("/expenses/{expenseID}", handler.DeleteExpense)
	})

	It("creates an expense and returns its splits", func() {
		w := serve(http.MethodPost, "/groups/4/expenses", body, 1)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(svc.gotGroup).To(Equal(int64(4)))
		Expect(svc.gotDTO.MemberIDs).To(Equal([]int64{1, 2, 3}))

		var resp expense.ExpenseResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Date).To(Equal("2024-12-10"))
		Expect(resp.SplitMethod).To(Equal("equal"))
		Expect(resp.Splits).To(HaveLen(3))
	})

	It("requires authentication", func() {
		w := serve(http.MethodPost, "/groups/4/expenses", body, 0)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(svc.gotGroup).To(BeZero())
	})

	It("maps a locked period to 409", func() {
		svc.err = errors.ErrPeriodLocked

		w := serve(http.MethodPut, "/expenses/11", body, 1)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(string(errors.ErrCodePeriodLocked)))
	})

	It("maps an amount mismatch to 400", func() {
		svc.err = errors.ErrAmountSumMismatch

		w := serve(http.MethodPost, "/groups/4/expenses", body, 1)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(errors.ErrCodeAmountSumMismatch)))
	})

	It("lists a period's expenses", func() {
		w := serve(http.MethodGet, "/groups/4/expenses?year=2024&month=12", "", 2)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.gotYear).To(Equal(2024))
		Expect(svc.gotMonth).To(Equal(12))
	})

	It("rejects a non-numeric year", func() {
		w := serve(http.MethodGet, "/groups/4/expenses?year=abc&month=12", "", 2)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.gotGroup).To(BeZero())
	})

	It("maps a missing expense to 404", func() {
		svc.err = errors.ErrExpenseNotFound

		w := serve(http.MethodGet, "/expenses/99", "", 2)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(w)).To(Equal(string(errors.ErrCodeExpenseNotFound)))
	})

	It("deletes with 204", func() {
		w := serve(http.MethodDelete, "/expenses/11", "", 1)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(svc.gotExpense).To(Equal(int64(11)))
	})

	It("hides unexpected errors behind INTERNAL_ERROR", func() {
		svc.err = context.DeadlineExceeded

		w := serve(http.MethodDelete, "/expenses/11", "", 1)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(errorCode(w)).To(Equal(string(errors.ErrCodeInternal)))
	})
})
