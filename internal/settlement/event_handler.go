package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/household-expense/internal/core/events"
	"github.com/frahmantamala/household-expense/pkg/logger"
)

// AuditHandler writes settlement lifecycle events to the log.
type AuditHandler struct {
	logger *slog.Logger
}

func NewAuditHandler(logger *slog.Logger) *AuditHandler {
	return &AuditHandler{logger: logger}
}

// requestLogger keeps the trace and user ids of the request that published
// the event.
func (h *AuditHandler) requestLogger(ctx context.Context) *slog.Logger {
	return logger.FromOr(ctx, h.logger)
}

func (h *AuditHandler) HandleSettlementCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.SettlementCreatedEvent)
	if !ok {
		h.logger.Error("invalid event type for settlement created handler", "event_type", event.EventType())
		return fmt.Errorf("expected SettlementCreatedEvent, got %T", event)
	}

	h.requestLogger(ctx).Info("audit: settlement confirmed",
		"settlement_id", e.SettlementID,
		"group_id", e.GroupID,
		"period_start", e.PeriodStart,
		"status", e.Status,
		"payment_count", e.PaymentCount,
		"created_by", e.CreatedBy,
		"event_id", e.EventID())
	return nil
}

func (h *AuditHandler) HandlePaymentPaid(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentPaidEvent)
	if !ok {
		h.logger.Error("invalid event type for payment paid handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentPaidEvent, got %T", event)
	}

	h.requestLogger(ctx).Info("audit: settlement payment confirmed",
		"payment_id", e.PaymentID,
		"settlement_id", e.SettlementID,
		"from_member_id", e.FromMemberID,
		"to_member_id", e.ToMemberID,
		"amount", e.Amount,
		"event_id", e.EventID())
	return nil
}

func (h *AuditHandler) HandleSettlementCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.SettlementCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for settlement completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected SettlementCompletedEvent, got %T", event)
	}

	h.requestLogger(ctx).Info("audit: settlement completed",
		"settlement_id", e.SettlementID,
		"group_id", e.GroupID,
		"settled_at", e.SettledAt,
		"event_id", e.EventID())
	return nil
}

func (h *AuditHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeSettlementCreated, h.HandleSettlementCreated)
	eventBus.Subscribe(events.EventTypePaymentPaid, h.HandlePaymentPaid)
	eventBus.Subscribe(events.EventTypeSettlementCompleted, h.HandleSettlementCompleted)

	h.logger.Info("settlement event handlers registered",
		"handlers", []string{
			events.EventTypeSettlementCreated,
			events.EventTypePaymentPaid,
			events.EventTypeSettlementCompleted,
		})
}
