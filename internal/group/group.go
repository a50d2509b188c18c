package group

import (
	"time"

	groupDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/group"
	"github.com/frahmantamala/household-expense/internal/core/period"
)

// Group is a household sharing expenses. MemberIDs is ordered by join time,
// so the owner always comes first.
type Group struct {
	ID         int64
	Name       string
	OwnerID    int64
	ClosingDay int
	MemberIDs  []int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (g *Group) IsOwner(userID int64) bool {
	return g.OwnerID == userID
}

func (g *Group) HasMember(userID int64) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PeriodFor returns the accounting period (year, month) in this group.
func (g *Group) PeriodFor(year, month int) period.Period {
	return period.Compute(g.ClosingDay, year, month)
}

// PeriodOf returns the period owning date under the group's closing day.
func (g *Group) PeriodOf(date time.Time) (period.YearMonth, period.Period) {
	ym := period.ForDate(date, g.ClosingDay)
	return ym, g.PeriodFor(ym.Year, ym.Month)
}

func (g *Group) ToResponse() GroupResponse {
	return GroupResponse{
		ID:         g.ID,
		Name:       g.Name,
		OwnerID:    g.OwnerID,
		ClosingDay: g.ClosingDay,
		MemberIDs:  g.MemberIDs,
		CreatedAt:  g.CreatedAt,
	}
}

func ToDataModel(g *Group) *groupDatamodel.Group {
	return &groupDatamodel.Group{
		ID:         g.ID,
		Name:       g.Name,
		OwnerID:    g.OwnerID,
		ClosingDay: g.ClosingDay,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

func FromDataModel(g *groupDatamodel.Group, memberIDs []int64) *Group {
	return &Group{
		ID:         g.ID,
		Name:       g.Name,
		OwnerID:    g.OwnerID,
		ClosingDay: g.ClosingDay,
		MemberIDs:  memberIDs,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}
