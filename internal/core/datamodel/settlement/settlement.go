package settlement

import "time"

// Settlement period bounds are YYYY-MM-DD strings; period_start is the
// uniqueness key within a group.
type Settlement struct {
	ID          int64               `gorm:"primaryKey"`
	GroupID     int64               `gorm:"column:group_id;not null;uniqueIndex:ux_settlements_group_period,priority:1"`
	PeriodStart string              `gorm:"column:period_start;size:10;not null;uniqueIndex:ux_settlements_group_period,priority:2"`
	PeriodEnd   string              `gorm:"column:period_end;size:10;not null"`
	Status      string              `gorm:"column:status;not null"`
	CreatedBy   int64               `gorm:"column:created_by;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	SettledAt   *time.Time          `gorm:"column:settled_at"`
	Payments    []SettlementPayment `gorm:"foreignKey:SettlementID;constraint:OnDelete:CASCADE"`
}

func (Settlement) TableName() string {
	return "settlements"
}

type SettlementPayment struct {
	ID           int64      `gorm:"primaryKey"`
	SettlementID int64      `gorm:"column:settlement_id;not null;index"`
	FromMemberID int64      `gorm:"column:from_member_id;not null"`
	ToMemberID   int64      `gorm:"column:to_member_id;not null"`
	Amount       int64      `gorm:"column:amount;not null"`
	IsPaid       bool       `gorm:"column:is_paid;not null;default:false"`
	PaidAt       *time.Time `gorm:"column:paid_at"`
}

func (SettlementPayment) TableName() string {
	return "settlement_payments"
}
