package category

import (
	"time"

	categoryDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/category"
)

// Category labels an expense. Categories are shared by every household and
// are never deleted; retired ones are deactivated so old expenses keep
// resolving.
type Category struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

func newCategory(name, description string, now time.Time) *Category {
	return &Category{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (c *Category) toDataModel() *categoryDatamodel.ExpenseCategory {
	return &categoryDatamodel.ExpenseCategory{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromDataModel(row *categoryDatamodel.ExpenseCategory) *Category {
	return &Category{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
