package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	errors "github.com/frahmantamala/household-expense/internal"
	groupDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/group"
	"github.com/frahmantamala/household-expense/internal/group"
	"github.com/jmoiron/sqlx"
)

// GroupRepository stores households with plain SQL through sqlx. Queries are
// written with ? placeholders and rebound for the connected driver.
type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) group.RepositoryAPI {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g *groupDatamodel.Group) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create group: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insertGroup := tx.Rebind(`INSERT INTO household_groups (name, owner_id, closing_day, created_at, updated_at)
VALUES (?, ?, ?, ?, ?) RETURNING id`)
	if err := tx.GetContext(ctx, &g.ID, insertGroup, g.Name, g.OwnerID, g.ClosingDay, g.CreatedAt, g.UpdatedAt); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	insertOwner := tx.Rebind(`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insertOwner, g.ID, g.OwnerID, g.CreatedAt); err != nil {
		return fmt.Errorf("insert owner membership: %w", err)
	}

	return tx.Commit()
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*groupDatamodel.Group, error) {
	var g groupDatamodel.Group
	query := r.db.Rebind(`SELECT id, name, owner_id, closing_day, created_at, updated_at
FROM household_groups WHERE id = ?`)
	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}
	return &g, nil
}

func (r *GroupRepository) ListMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	ids := []int64{}
	query := r.db.Rebind(`SELECT user_id FROM group_members WHERE group_id = ? ORDER BY joined_at, user_id`)
	if err := r.db.SelectContext(ctx, &ids, query, groupID); err != nil {
		return nil, fmt.Errorf("list members of group %d: %w", groupID, err)
	}
	return ids, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID int64, joinedAt time.Time) error {
	query := r.db.Rebind(`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)
ON CONFLICT (group_id, user_id) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, groupID, userID, joinedAt); err != nil {
		return fmt.Errorf("add member %d to group %d: %w", userID, groupID, err)
	}
	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	query := r.db.Rebind(`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove member %d from group %d: %w", userID, groupID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.ErrMemberNotFound
	}
	return nil
}

func (r *GroupRepository) UpdateClosingDay(ctx context.Context, groupID int64, closingDay int, updatedAt time.Time) error {
	query := r.db.Rebind(`UPDATE household_groups SET closing_day = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, closingDay, updatedAt, groupID)
	if err != nil {
		return fmt.Errorf("update closing day of group %d: %w", groupID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE id = ? AND is_active = TRUE)`)
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("user exists %d: %w", userID, err)
	}
	return exists, nil
}
