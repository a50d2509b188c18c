package group_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/auth"
	"github.com/frahmantamala/household-expense/internal/group"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubGroupService struct {
	gotCaller  int64
	gotGroup   int64
	gotMember  int64
	gotDay     int
	gotCreate  group.CreateGroupDTO
	removeErr  error
	currentErr error
}

func (s *stubGroupService) sample(id int64) *group.Group {
	return &group.Group{ID: id, Name: "Tanaka", OwnerID: 1, ClosingDay: 25, MemberIDs: []int64{1, 2}}
}

func (s *stubGroupService) CreateGroup(ctx context.Context, ownerID int64, dto group.CreateGroupDTO) (*group.Group, error) {
	s.gotCaller, s.gotCreate = ownerID, dto
	return s.sample(7), nil
}

func (s *stubGroupService) GetGroup(ctx context.Context, callerID, groupID int64) (*group.Group, error) {
	s.gotCaller, s.gotGroup = callerID, groupID
	if callerID != 1 && callerID != 2 {
		return nil, errors.ErrNotGroupMember
	}
	return s.sample(groupID), nil
}

func (s *stubGroupService) AddMember(ctx context.Context, callerID, groupID int64, dto group.AddMemberDTO) (*group.Group, error) {
	s.gotCaller, s.gotGroup, s.gotMember = callerID, groupID, dto.UserID
	g := s.sample(groupID)
	g.MemberIDs = append(g.MemberIDs, dto.UserID)
	return g, nil
}

func (s *stubGroupService) RemoveMember(ctx context.Context, callerID, groupID, userID int64) error {
	s.gotCaller, s.gotGroup, s.gotMember = callerID, groupID, userID
	return s.removeErr
}

func (s *stubGroupService) UpdateClosingDay(ctx context.Context, callerID, groupID int64, closingDay int) (*group.Group, error) {
	s.gotCaller, s.gotGroup, s.gotDay = callerID, groupID, closingDay
	g := s.sample(groupID)
	g.ClosingDay = closingDay
	return g, nil
}

func (s *stubGroupService) CurrentPeriod(ctx context.Context, callerID, groupID int64) (*group.CurrentPeriodResponse, error) {
	if s.currentErr != nil {
		return nil, s.currentErr
	}
	return &group.CurrentPeriodResponse{Year: 2025, Month: 1, Label: "2025年1月分", StartDate: "2024-12-26", EndDate: "2025-01-25"}, nil
}

var _ = Describe("Group Handler", func() {
	var (
		svc    *stubGroupService
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

	BeforeEach(func() {
		svc = &stubGroupService{}
		handler := group.NewHandler(svc)
		router = chi.NewRouter()
		router.Post("/groups", handler.CreateGroup)
		router.Get("/groups/{groupID}", handler.GetGroup)
		router.Post("/groups/{groupID}/members", handler.AddMember)
		router.Delete("/groups/{groupID}/members/{userID}", handler.RemoveMember)
		router.Patch("/groups/{groupID}/closing-day", handler.UpdateClosingDay)
		router.Get("/groups/{groupID}/periods/current", handler.CurrentPeriod)
	})

	It("creates a group owned by the caller", func() {
		w := serve(http.MethodPost, "/groups", `{"name":"Tanaka","closing_day":25}`, 1)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(svc.gotCaller).To(Equal(int64(1)))
		Expect(svc.gotCreate.ClosingDay).To(Equal(25))

		var resp group.GroupResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.ID).To(Equal(int64(7)))
		Expect(resp.MemberIDs).To(Equal([]int64{1, 2}))
	})

	It("rejects an undecodable body", func() {
		w := serve(http.MethodPost, "/groups", `{"name":`, 1)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.gotCaller).To(BeZero())
	})

	It("requires authentication", func() {
		w := serve(http.MethodGet, "/groups/4", "", 0)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("maps a non-member to 403", func() {
		w := serve(http.MethodGet, "/groups/4", "", 9)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("adds a member", func() {
		w := serve(http.MethodPost, "/groups/4/members", `{"user_id":3}`, 1)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.gotGroup).To(Equal(int64(4)))
		Expect(svc.gotMember).To(Equal(int64(3)))
	})

	It("removes a member with 204", func() {
		w := serve(http.MethodDelete, "/groups/4/members/2", "", 1)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(svc.gotMember).To(Equal(int64(2)))
	})

	It("refuses to remove the owner", func() {
		svc.removeErr = errors.ErrCannotRemoveOwner

		w := serve(http.MethodDelete, "/groups/4/members/1", "", 1)

		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("rejects a non-numeric member id", func() {
		w := serve(http.MethodDelete, "/groups/4/members/me", "", 1)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.gotGroup).To(BeZero())
	})

	It("updates the closing day", func() {
		w := serve(http.MethodPatch, "/groups/4/closing-day", `{"closing_day":10}`, 1)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.gotDay).To(Equal(10))
	})

	It("returns the current period", func() {
		w := serve(http.MethodGet, "/groups/4/periods/current", "", 2)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp group.CurrentPeriodResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Label).To(Equal("2025年1月分"))
		Expect(resp.StartDate).To(Equal("2024-12-26"))
	})

	It("maps a missing group to 404", func() {
		svc.currentErr = errors.ErrGroupNotFound

		w := serve(http.MethodGet, "/groups/4/periods/current", "", 2)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
