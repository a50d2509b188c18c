package settlement_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/auth"
	"github.com/frahmantamala/household-expense/internal/settlement"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeService struct {
	createErr   error
	markResult  *settlement.MarkPaidResult
	markErr     error
	gotCaller   int64
	gotGroup    int64
	gotYear     int
	gotMonth    int
	gotPayment  int64
	previewResp *settlement.Preview
}

func (f *fakeService) CreateSettlement(ctx context.Context, callerID, groupID int64, year, month int) (*settlement.Settlement, error) {
	f.gotCaller, f.gotGroup, f.gotYear, f.gotMonth = callerID, groupID, year, month
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &settlement.Settlement{ID: 9, GroupID: groupID, PeriodStart: "2024-11-26", PeriodEnd: "2024-12-25", Status: settlement.StatusSettled}, nil
}

func (f *fakeService) MarkPaymentPaid(ctx context.Context, callerID, paymentID int64) (*settlement.MarkPaidResult, error) {
	f.gotCaller, f.gotPayment = callerID, paymentID
	return f.markResult, f.markErr
}

func (f *fakeService) GetPreview(ctx context.Context, callerID, groupID int64, year, month int) (*settlement.Preview, error) {
	f.gotCaller, f.gotGroup, f.gotYear, f.gotMonth = callerID, groupID, year, month
	return f.previewResp, nil
}

func (f *fakeService) GetSettlement(ctx context.Context, callerID, settlementID int64) (*settlement.Settlement, error) {
	return nil, errors.ErrSettlementNotFound
}

func (f *fakeService) ListSettlements(ctx context.Context, callerID, groupID int64) ([]*settlement.Settlement, error) {
	return nil, nil
}

var _ = Describe("Settlement Handler", func() {
	var (
		svc    *fakeService
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

	BeforeEach(func() {
		svc = &fakeService{}
		handler := settlement.NewHandler(svc)
		router = chi.NewRouter()
		router.Post("/groups/{groupID}/settlements", handler.CreateSettlement)
		router.Get("/groups/{groupID}/settlements/preview", handler.GetPreview)
		router.Get("/settlements/{settlementID}", handler.GetSettlement)
		router.Patch("/settlement-payments/{paymentID}/paid", handler.MarkPaymentPaid)
	})

	It("creates a settlement for the authenticated owner", func() {
		w := serve(http.MethodPost, "/groups/5/settlements", `{"year":2024,"month":12}`, 1)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(svc.gotCaller).To(Equal(int64(1)))
		Expect(svc.gotGroup).To(Equal(int64(5)))
		Expect(svc.gotMonth).To(Equal(12))

		var resp settlement.SettlementResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal("settled"))
		Expect(resp.Label).To(Equal("2024年12月分"))
		Expect(resp.Payments).To(BeEmpty())
	})

	It("maps a duplicate settlement to 409", func() {
		svc.createErr = errors.ErrSettlementExists

		w := serve(http.MethodPost, "/groups/5/settlements", `{"year":2024,"month":12}`, 1)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(string(errors.ErrCodeSettlementExists)))
	})

	It("validates the body before calling the service", func() {
		w := serve(http.MethodPost, "/groups/5/settlements", `{"year":2024,"month":13}`, 1)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.gotGroup).To(BeZero())
	})

	It("requires authentication", func() {
		w := serve(http.MethodPost, "/groups/5/settlements", `{"year":2024,"month":12}`, 0)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("reads the preview period from the query string", func() {
		svc.previewResp = &settlement.Preview{Year: 2024, Month: 12}

		w := serve(http.MethodGet, "/groups/5/settlements/preview?year=2024&month=12", "", 2)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.gotYear).To(Equal(2024))
	})

	It("rejects a preview without a month", func() {
		w := serve(http.MethodGet, "/groups/5/settlements/preview?year=2024", "", 2)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(errors.ErrCodeValidationFailed)))
	})

	It("rejects a non-numeric payment id", func() {
		w := serve(http.MethodPatch, "/settlement-payments/abc/paid", "", 2)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns the mark-paid result", func() {
		svc.markResult = &settlement.MarkPaidResult{Success: true, AllCompleted: true}

		w := serve(http.MethodPatch, "/settlement-payments/12/paid", "", 2)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.gotPayment).To(Equal(int64(12)))
		var result settlement.MarkPaidResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.AllCompleted).To(BeTrue())
	})

	It("maps a wrong recipient to 403", func() {
		svc.markErr = errors.ErrNotPaymentRecipient

		w := serve(http.MethodPatch, "/settlement-payments/12/paid", "", 3)

		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(w)).To(Equal(string(errors.ErrCodeNotPaymentRecipient)))
	})

	It("maps a missing settlement to 404", func() {
		w := serve(http.MethodGet, "/settlements/3", "", 2)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
