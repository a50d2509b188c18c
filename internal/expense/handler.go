package expense

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/household-expense/internal/auth"
	"github.com/frahmantamala/household-expense/internal/transport"
	"github.com/frahmantamala/household-expense/pkg/logger"
)

type ServiceAPI interface {
	CreateExpense(ctx context.Context, callerID, groupID int64, dto ExpenseDTO) (*Expense, error)
	GetExpense(ctx context.Context, callerID, expenseID int64) (*Expense, error)
	UpdateExpense(ctx context.Context, callerID, expenseID int64, dto ExpenseDTO) (*Expense, error)
	DeleteExpense(ctx context.Context, callerID, expenseID int64) error
	ListExpenses(ctx context.Context, callerID, groupID int64, year, month int) (*ExpenseListResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateExpense: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	var dto ExpenseDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	exp, err := h.Service.CreateExpense(r.Context(), user.ID, groupID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, exp.ToResponse())
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ListExpenses: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	year, month, ok := h.YearMonthQuery(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.ListExpenses(r.Context(), user.ID, groupID, year, month)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetExpense: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	expenseID, ok := h.IDParam(w, r, "expenseID")
	if !ok {
		return
	}

	exp, err := h.Service.GetExpense(r.Context(), user.ID, expenseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp.ToResponse())
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("UpdateExpense: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	expenseID, ok := h.IDParam(w, r, "expenseID")
	if !ok {
		return
	}

	var dto ExpenseDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	exp, err := h.Service.UpdateExpense(r.Context(), user.ID, expenseID, dto)
	if err != nil {
		h.Logger.Warn("UpdateExpense: service error", "error", err, "expense_id", expenseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp.ToResponse())
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("DeleteExpense: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	expenseID, ok := h.IDParam(w, r, "expenseID")
	if !ok {
		return
	}

	if err := h.Service.DeleteExpense(r.Context(), user.ID, expenseID); err != nil {
		h.Logger.Warn("DeleteExpense: service error", "error", err, "expense_id", expenseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
