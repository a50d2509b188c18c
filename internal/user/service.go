package user

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/household-expense/internal"
	userDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/user"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	ListGroupIDs(ctx context.Context, userID int64) ([]int64, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// GetProfile returns the user together with the households they belong to.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u := FromDataModel(row)
	groupIDs, err := s.repo.ListGroupIDs(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user groups", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load user groups", err)
	}
	u.GroupIDs = groupIDs
	return u, nil
}

// EnsureUser creates the user unless the email is already registered.
func (s *Service) EnsureUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err == nil {
		return FromDataModel(existing), nil
	}
	if !errors.Is(err, errors.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{Email: dto.Email, Name: dto.Name, PasswordHash: hash, IsActive: true}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, errors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "email", row.Email)
	return FromDataModel(row), nil
}
