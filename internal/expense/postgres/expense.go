package postgres

import (
	"context"
	stdErrors "errors"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	expenseDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/household-expense/internal/expense"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpenseRepository implements the expense.Repository interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

// Create inserts the expense and its splits in one transaction.
func (r *ExpenseRepository) Create(ctx context.Context, exp *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(exp).Error; err != nil {
			return err
		}
		return insertSplits(tx, exp)
	})
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error) {
	var exp expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Preload("Splits", orderSplits).
		Where("id = ?", id).
		First(&exp).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrExpenseNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// Replace overwrites the expense columns and swaps its split rows.
func (r *ExpenseRepository) Replace(ctx context.Context, exp *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&expenseDatamodel.Expense{}).
			Where("id = ?", exp.ID).
			Updates(map[string]interface{}{
				"amount":       exp.Amount,
				"category_id":  exp.CategoryID,
				"payer_id":     exp.PayerID,
				"date":         exp.Date,
				"split_method": exp.SplitMethod,
				"memo":         exp.Memo,
				"updated_at":   exp.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrExpenseNotFound
		}

		if err := tx.Where("expense_id = ?", exp.ID).Delete(&expenseDatamodel.ExpenseSplit{}).Error; err != nil {
			return err
		}
		return insertSplits(tx, exp)
	})
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", id).Delete(&expenseDatamodel.ExpenseSplit{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&expenseDatamodel.Expense{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrExpenseNotFound
		}
		return nil
	})
}

// ListByPeriod returns the group's expenses dated within [start, end],
// ordered by date then id, with splits loaded.
func (r *ExpenseRepository) ListByPeriod(ctx context.Context, groupID int64, start, end time.Time) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Preload("Splits", orderSplits).
		Where("group_id = ? AND date >= ? AND date <= ?", groupID, start, end).
		Order("date ASC, id ASC").
		Find(&expenses).Error
	return expenses, err
}

func insertSplits(tx *gorm.DB, exp *expenseDatamodel.Expense) error {
	if len(exp.Splits) == 0 {
		return nil
	}
	for i := range exp.Splits {
		exp.Splits[i].ID = 0
		exp.Splits[i].ExpenseID = exp.ID
	}
	return tx.Create(&exp.Splits).Error
}

func orderSplits(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
