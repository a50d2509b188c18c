package group

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/household-expense/internal/auth"
	"github.com/frahmantamala/household-expense/internal/transport"
	"github.com/frahmantamala/household-expense/pkg/logger"
)

type ServiceAPI interface {
	CreateGroup(ctx context.Context, ownerID int64, dto CreateGroupDTO) (*Group, error)
	GetGroup(ctx context.Context, callerID, groupID int64) (*Group, error)
	AddMember(ctx context.Context, callerID, groupID int64, dto AddMemberDTO) (*Group, error)
	RemoveMember(ctx context.Context, callerID, groupID, userID int64) error
	UpdateClosingDay(ctx context.Context, callerID, groupID int64, closingDay int) (*Group, error)
	CurrentPeriod(ctx context.Context, callerID, groupID int64) (*CurrentPeriodResponse, error)
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

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateGroupDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.CreateGroup(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, g.ToResponse())
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	g, err := h.Service.GetGroup(r.Context(), user.ID, groupID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g.ToResponse())
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	var dto AddMemberDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.AddMember(r.Context(), user.ID, groupID, dto)
	if err != nil {
		h.Logger.Warn("AddMember: service error", "error", err, "group_id", groupID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g.ToResponse())
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}
	memberID, ok := h.IDParam(w, r, "userID")
	if !ok {
		return
	}

	if err := h.Service.RemoveMember(r.Context(), user.ID, groupID, memberID); err != nil {
		h.Logger.Warn("RemoveMember: service error", "error", err, "group_id", groupID, "member_id", memberID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateClosingDay(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	var dto UpdateClosingDayDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.UpdateClosingDay(r.Context(), user.ID, groupID, dto.ClosingDay)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g.ToResponse())
}

func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID, ok := h.IDParam(w, r, "groupID")
	if !ok {
		return
	}

	resp, err := h.Service.CurrentPeriod(r.Context(), user.ID, groupID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
