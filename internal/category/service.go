package category

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	categoryDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	ListActive(ctx context.Context) ([]*categoryDatamodel.ExpenseCategory, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.ExpenseCategory, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.ExpenseCategory, error)
	Create(ctx context.Context, category *categoryDatamodel.ExpenseCategory) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCategories(ctx context.Context) ([]CategoryResponse, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		return nil, errors.NewInternalError("failed to list categories", err)
	}

	responses := make([]CategoryResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, fromDataModel(row).ToResponse())
	}

	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses, nil
}

// RequireActive fails with ErrCategoryNotFound unless id names an active
// category. Expenses reference categories by id.
func (s *Service) RequireActive(ctx context.Context, id int64) error {
	cat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", id)
		return errors.NewInternalError("failed to look up category", err)
	}
	if cat == nil || !cat.IsActive {
		return errors.ErrCategoryNotFound.WithDetails(map[string]int64{"category_id": id})
	}
	return nil
}

// EnsureCategory creates a category by name unless it already exists.
func (s *Service) EnsureCategory(ctx context.Context, name, description string) (*Category, error) {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("look up category %q: %w", name, err)
	}
	if existing != nil {
		return fromDataModel(existing), nil
	}

	row := newCategory(name, description, time.Now()).toDataModel()
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	s.logger.Info("category created", "category_id", row.ID, "name", name)
	return fromDataModel(row), nil
}
