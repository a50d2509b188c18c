package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSettlementCreated   = "settlement.created"
	EventTypeSettlementCompleted = "settlement.completed"
	EventTypePaymentPaid         = "settlement.payment_paid"
)

type SettlementCreatedEvent struct {
	BaseEvent
	SettlementID int64  `json:"settlement_id"`
	GroupID      int64  `json:"group_id"`
	PeriodStart  string `json:"period_start"`
	Status       string `json:"status"`
	PaymentCount int    `json:"payment_count"`
	CreatedBy    int64  `json:"created_by"`
}

func NewSettlementCreatedEvent(settlementID, groupID int64, periodStart, status string, paymentCount int, createdBy int64) *SettlementCreatedEvent {
	return &SettlementCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSettlementCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"settlement_id": settlementID,
				"group_id":      groupID,
				"period_start":  periodStart,
				"status":        status,
				"payment_count": paymentCount,
				"created_by":    createdBy,
			},
		},
		SettlementID: settlementID,
		GroupID:      groupID,
		PeriodStart:  periodStart,
		Status:       status,
		PaymentCount: paymentCount,
		CreatedBy:    createdBy,
	}
}

type SettlementCompletedEvent struct {
	BaseEvent
	SettlementID int64     `json:"settlement_id"`
	GroupID      int64     `json:"group_id"`
	SettledAt    time.Time `json:"settled_at"`
}

func NewSettlementCompletedEvent(settlementID, groupID int64, settledAt time.Time) *SettlementCompletedEvent {
	return &SettlementCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSettlementCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"settlement_id": settlementID,
				"group_id":      groupID,
				"settled_at":    settledAt,
			},
		},
		SettlementID: settlementID,
		GroupID:      groupID,
		SettledAt:    settledAt,
	}
}

type PaymentPaidEvent struct {
	BaseEvent
	PaymentID    int64 `json:"payment_id"`
	SettlementID int64 `json:"settlement_id"`
	FromMemberID int64 `json:"from_member_id"`
	ToMemberID   int64 `json:"to_member_id"`
	Amount       int64 `json:"amount"`
}

func NewPaymentPaidEvent(paymentID, settlementID, fromMemberID, toMemberID, amount int64) *PaymentPaidEvent {
	return &PaymentPaidEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentPaid,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"settlement_id":  settlementID,
				"from_member_id": fromMemberID,
				"to_member_id":   toMemberID,
				"amount":         amount,
			},
		},
		PaymentID:    paymentID,
		SettlementID: settlementID,
		FromMemberID: fromMemberID,
		ToMemberID:   toMemberID,
		Amount:       amount,
	}
}
