package postgres

import (
	"context"
	stdErrors "errors"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	settlementDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/settlement"
	"github.com/frahmantamala/household-expense/internal/settlement"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementRepository expects a gorm.DB opened with TranslateError so that
// unique violations surface as gorm.ErrDuplicatedKey.
type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) settlement.Repository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) Create(ctx context.Context, s *settlementDatamodel.Settlement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.ErrSettlementExists
			}
			return err
		}
		if len(s.Payments) == 0 {
			return nil
		}
		for i := range s.Payments {
			s.Payments[i].SettlementID = s.ID
		}
		return tx.Create(&s.Payments).Error
	})
}

func (r *SettlementRepository) GetByID(ctx context.Context, id int64) (*settlementDatamodel.Settlement, error) {
	var s settlementDatamodel.Settlement
	err := r.db.WithContext(ctx).
		Preload("Payments", orderPayments).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSettlementNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByPeriod returns nil, nil when the period has no settlement.
func (r *SettlementRepository) GetByPeriod(ctx context.Context, groupID int64, periodStart string) (*settlementDatamodel.Settlement, error) {
	var s settlementDatamodel.Settlement
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND period_start = ?", groupID, periodStart).
		First(&s).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettlementRepository) ListByGroup(ctx context.Context, groupID int64) ([]*settlementDatamodel.Settlement, error) {
	var list []*settlementDatamodel.Settlement
	err := r.db.WithContext(ctx).
		Preload("Payments", orderPayments).
		Where("group_id = ?", groupID).
		Order("period_start DESC").
		Find(&list).Error
	return list, err
}

func (r *SettlementRepository) GetPayment(ctx context.Context, paymentID int64) (*settlementDatamodel.SettlementPayment, error) {
	var p settlementDatamodel.SettlementPayment
	if err := r.db.WithContext(ctx).First(&p, paymentID).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// MarkPaymentPaid flips the payment and, when it was the last unpaid one,
// settles the parent in the same transaction.
func (r *SettlementRepository) MarkPaymentPaid(ctx context.Context, paymentID, settlementID int64, paidAt time.Time) (settlement.PaidOutcome, error) {
	var outcome settlement.PaidOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&settlementDatamodel.SettlementPayment{}).
			Where("id = ? AND is_paid = ?", paymentID, false).
			Updates(map[string]interface{}{"is_paid": true, "paid_at": paidAt})
		if res.Error != nil {
			return res.Error
		}
		outcome.Flipped = res.RowsAffected > 0

		var unpaid int64
		if err := tx.Model(&settlementDatamodel.SettlementPayment{}).
			Where("settlement_id = ? AND is_paid = ?", settlementID, false).
			Count(&unpaid).Error; err != nil {
			return err
		}
		if unpaid > 0 {
			return nil
		}
		outcome.AllCompleted = true

		return tx.Model(&settlementDatamodel.Settlement{}).
			Where("id = ? AND status = ?", settlementID, string(settlement.StatusPending)).
			Updates(map[string]interface{}{"status": string(settlement.StatusSettled), "settled_at": paidAt}).Error
	})
	return outcome, err
}

func orderPayments(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
