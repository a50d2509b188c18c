package settlement_test

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/household-expense/internal/core/events"
	"github.com/frahmantamala/household-expense/internal/settlement"
	"github.com/frahmantamala/household-expense/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AuditHandler", func() {
	var (
		buf     *bytes.Buffer
		handler *settlement.AuditHandler
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		handler = settlement.NewAuditHandler(slog.New(slog.NewTextHandler(buf, nil)))
	})

	It("logs a confirmed settlement", func() {
		event := events.NewSettlementCreatedEvent(3, 5, "2024-11-26", "pending", 2, 1)

		Expect(handler.HandleSettlementCreated(context.Background(), event)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("audit: settlement confirmed"))
		Expect(buf.String()).To(ContainSubstring("settlement_id=3"))
		Expect(buf.String()).To(ContainSubstring("payment_count=2"))
	})

	It("logs through the request logger carried by the context", func() {
		reqBuf := &bytes.Buffer{}
		ctx := logger.Attach(context.Background(), slog.New(slog.NewTextHandler(reqBuf, nil)))
		ctx = logger.With(ctx, "traceID", "trace-42")

		Expect(handler.HandlePaymentPaid(ctx, events.NewPaymentPaidEvent(9, 3, 2, 1, 400))).To(Succeed())
		Expect(reqBuf.String()).To(ContainSubstring("traceID=trace-42"))
		Expect(reqBuf.String()).To(ContainSubstring("payment_id=9"))
		Expect(buf.String()).To(BeEmpty())
	})

	It("rejects an event of the wrong type", func() {
		err := handler.HandleSettlementCompleted(context.Background(), events.NewPaymentPaidEvent(9, 3, 2, 1, 400))
		Expect(err).To(MatchError(ContainSubstring("expected SettlementCompletedEvent")))
	})

	It("receives events published on the bus", func() {
		bus := events.NewEventBus(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		handler.RegisterEventHandlers(bus)
		buf.Reset()

		Expect(bus.Publish(context.Background(), events.NewSettlementCompletedEvent(3, 5, time.Now()))).To(Succeed())
		bus.Wait()

		Expect(buf.String()).To(ContainSubstring("audit: settlement completed"))
	})
})
