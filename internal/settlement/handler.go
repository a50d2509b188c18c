package settlement

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/household-expense/internal/auth"
	"github.com/frahmantamala/household-expense/internal/transport"
	"github.com/frahmantamala/household-expense/pkg/logger"
)

type ServiceAPI interface {
	CreateSettlement(ctx context.Context, callerID, groupID int64, year, month int) (*Settlement, error)
	MarkPaymentPaid(ctx context.Context, callerID, paymentID int64) (*MarkPaidResult, error)
	GetPreview(ctx context.Context, callerID, groupID int64, year, month int) (*Preview, error)
	GetSettlement(ctx context.Context, callerID, settlementID int64) (*Settlement, error)
	ListSettlements(ctx context.Context, callerID, groupID int64) ([]*Settlement, error)
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

// CreateSettlement handles POST /groups/{groupID}/settlements
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	var dto CreateSettlementDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	st, err := h.Service.CreateSettlement(r.Context(), user.ID, groupID, dto.Year, dto.Month)
	if err != nil {
		h.Logger.Warn("CreateSettlement: service error", "error", err, "group_id", groupID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, st.ToResponse())
}

// GetPreview handles GET /groups/{groupID}/settlements/preview?year=&month=
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
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

	preview, err := h.Service.GetPreview(r.Context(), user.ID, groupID, year, month)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, preview)
}

func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	list, err := h.Service.ListSettlements(r.Context(), user.ID, groupID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := SettlementListResponse{Settlements: make([]SettlementResponse, len(list))}
	for i, st := range list {
		resp.Settlements[i] = st.ToResponse()
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	settlementID, ok := h.IDParam(w, r, "settlementID")
	if !ok {
		return
	}

	st, err := h.Service.GetSettlement(r.Context(), user.ID, settlementID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, st.ToResponse())
}

// MarkPaymentPaid handles PATCH /settlement-payments/{paymentID}/paid
func (h *Handler) MarkPaymentPaid(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	paymentID, ok := h.IDParam(w, r, "paymentID")
	if !ok {
		return
	}

	result, err := h.Service.MarkPaymentPaid(r.Context(), user.ID, paymentID)
	if err != nil {
		h.Logger.Warn("MarkPaymentPaid: service error", "error", err, "payment_id", paymentID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
