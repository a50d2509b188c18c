package group

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/core/common/validation"
	groupDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/group"
	"github.com/frahmantamala/household-expense/internal/core/period"
)

type RepositoryAPI interface {
	Create(ctx context.Context, g *groupDatamodel.Group) error
	GetByID(ctx context.Context, id int64) (*groupDatamodel.Group, error)
	ListMemberIDs(ctx context.Context, groupID int64) ([]int64, error)
	AddMember(ctx context.Context, groupID, userID int64, joinedAt time.Time) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	UpdateClosingDay(ctx context.Context, groupID int64, closingDay int, updatedAt time.Time) error
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Service struct {
	repo              RepositoryAPI
	defaultClosingDay int
	logger            *slog.Logger
	now               func() time.Time
}

func NewService(repo RepositoryAPI, defaultClosingDay int, logger *slog.Logger) *Service {
	return &Service{
		repo:              repo,
		defaultClosingDay: defaultClosingDay,
		logger:            logger,
		now:               time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateGroup(ctx context.Context, ownerID int64, dto CreateGroupDTO) (*Group, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	closingDay := dto.ClosingDay
	if closingDay == 0 {
		closingDay = s.defaultClosingDay
	}

	now := s.now().UTC()
	row := &groupDatamodel.Group{
		Name:       dto.Name,
		OwnerID:    ownerID,
		ClosingDay: closingDay,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create group", "error", err, "owner_id", ownerID)
		return nil, errors.NewInternalError("failed to create group", err)
	}

	s.logger.Info("group created", "group_id", row.ID, "owner_id", ownerID, "closing_day", closingDay)
	return FromDataModel(row, []int64{ownerID}), nil
}

// Load returns the group with its current members, without an access check.
func (s *Service) Load(ctx context.Context, groupID int64) (*Group, error) {
	row, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.repo.ListMemberIDs(ctx, groupID)
	if err != nil {
		s.logger.Error("failed to list group members", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to load group members", err)
	}
	return FromDataModel(row, memberIDs), nil
}

func (s *Service) GetGroup(ctx context.Context, callerID, groupID int64) (*Group, error) {
	g, err := s.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(callerID) {
		return nil, errors.ErrNotGroupMember
	}
	return g, nil
}

// RequireMember is the membership check for collaborators that do not need
// the group itself.
func (s *Service) RequireMember(ctx context.Context, groupID, userID int64) error {
	_, err := s.GetGroup(ctx, userID, groupID)
	return err
}

func (s *Service) loadOwned(ctx context.Context, callerID, groupID int64) (*Group, error) {
	g, err := s.GetGroup(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsOwner(callerID) {
		s.logger.Warn("owner-only action denied", "group_id", groupID, "caller_id", callerID)
		return nil, errors.ErrNotGroupOwner
	}
	return g, nil
}

func (s *Service) AddMember(ctx context.Context, callerID, groupID int64, dto AddMemberDTO) (*Group, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	g, err := s.loadOwned(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}
	if g.HasMember(dto.UserID) {
		return g, nil
	}

	exists, err := s.repo.UserExists(ctx, dto.UserID)
	if err != nil {
		return nil, errors.NewInternalError("failed to look up user", err)
	}
	if !exists {
		return nil, errors.ErrUserNotFound
	}

	if err := s.repo.AddMember(ctx, groupID, dto.UserID, s.now().UTC()); err != nil {
		s.logger.Error("failed to add member", "error", err, "group_id", groupID, "user_id", dto.UserID)
		return nil, errors.NewInternalError("failed to add member", err)
	}

	s.logger.Info("member added", "group_id", groupID, "user_id", dto.UserID)
	g.MemberIDs = append(g.MemberIDs, dto.UserID)
	return g, nil
}

// RemoveMember drops a member. Past expenses they paid or shared stay in
// place; balances simply stop counting them.
func (s *Service) RemoveMember(ctx context.Context, callerID, groupID, userID int64) error {
	g, err := s.loadOwned(ctx, callerID, groupID)
	if err != nil {
		return err
	}
	if g.IsOwner(userID) {
		return errors.ErrCannotRemoveOwner
	}
	if !g.HasMember(userID) {
		return errors.ErrMemberNotFound
	}

	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		s.logger.Error("failed to remove member", "error", err, "group_id", groupID, "user_id", userID)
		return errors.NewInternalError("failed to remove member", err)
	}

	s.logger.Info("member removed", "group_id", groupID, "user_id", userID)
	return nil
}

func (s *Service) UpdateClosingDay(ctx context.Context, callerID, groupID int64, closingDay int) (*Group, error) {
	if err := validation.ValidateClosingDay(closingDay); err != nil {
		return nil, err
	}
	g, err := s.loadOwned(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.UpdateClosingDay(ctx, groupID, closingDay, now); err != nil {
		s.logger.Error("failed to update closing day", "error", err, "group_id", groupID)
		return nil, errors.NewInternalError("failed to update closing day", err)
	}

	s.logger.Info("closing day updated", "group_id", groupID, "from", g.ClosingDay, "to", closingDay)
	g.ClosingDay = closingDay
	g.UpdatedAt = now
	return g, nil
}

func (s *Service) CurrentPeriod(ctx context.Context, callerID, groupID int64) (*CurrentPeriodResponse, error) {
	g, err := s.GetGroup(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	ym := period.Current(s.now(), g.ClosingDay)
	p := g.PeriodFor(ym.Year, ym.Month)
	return &CurrentPeriodResponse{
		Year:      ym.Year,
		Month:     ym.Month,
		Label:     ym.Label(),
		StartDate: p.StartString(),
		EndDate:   p.EndString(),
	}, nil
}
