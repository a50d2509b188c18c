package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/household-expense/internal/core/events"
	"github.com/frahmantamala/household-expense/internal/settlement"
	"github.com/frahmantamala/household-expense/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Inspect the settlement event flow without touching the database`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample settlement event",
	Long: `Publish a sample settlement event to an in-process bus with the audit
subscriber attached. Accepted types: settlement.created, settlement.payment_paid,
settlement.completed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var (
	eventSettlementID int64
	eventGroupID      int64
)

func sampleEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeSettlementCreated:
		return events.NewSettlementCreatedEvent(eventSettlementID, eventGroupID, time.Now().Format("2006-01-02"), string(settlement.StatusPending), 1, 1), nil
	case events.EventTypePaymentPaid:
		return events.NewPaymentPaidEvent(1, eventSettlementID, 2, 1, 1000), nil
	case events.EventTypeSettlementCompleted:
		return events.NewSettlementCompletedEvent(eventSettlementID, eventGroupID, time.Now()), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

func publishSampleEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	event, err := sampleEvent(eventType)
	if err != nil {
		return err
	}

	eventBus := events.NewEventBus(lg)
	settlement.NewAuditHandler(lg).RegisterEventHandlers(eventBus)

	lg.Info("publishing sample event", "event_type", event.EventType(), "event_id", event.EventID())
	if err := eventBus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	lg.Info("sample event handled")
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventSettlementID, "settlement-id", 1, "settlement id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventGroupID, "group-id", 1, "group id carried by the event")

	eventCmd.AddCommand(publishEventCmd)
}
