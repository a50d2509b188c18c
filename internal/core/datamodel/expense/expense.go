package expense

import "time"

type Expense struct {
	ID          int64          `gorm:"primaryKey"`
	GroupID     int64          `gorm:"column:group_id;not null;index:idx_expenses_group_date,priority:1"`
	Amount      int64          `gorm:"column:amount;not null"`
	CategoryID  int64          `gorm:"column:category_id;not null"`
	PayerID     int64          `gorm:"column:payer_id;not null"`
	Date        time.Time      `gorm:"column:date;type:date;not null;index:idx_expenses_group_date,priority:2"`
	SplitMethod string         `gorm:"column:split_method;not null"`
	Memo        string         `gorm:"column:memo"`
	CreatedBy   int64          `gorm:"column:created_by;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	Splits      []ExpenseSplit `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
}

func (Expense) TableName() string {
	return "expenses"
}

type ExpenseSplit struct {
	ID        int64 `gorm:"primaryKey"`
	ExpenseID int64 `gorm:"column:expense_id;not null;uniqueIndex:ux_expense_splits_member,priority:1"`
	MemberID  int64 `gorm:"column:member_id;not null;uniqueIndex:ux_expense_splits_member,priority:2"`
	Amount    int64 `gorm:"column:amount;not null"`
}

func (ExpenseSplit) TableName() string {
	return "expense_splits"
}
