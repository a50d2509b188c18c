package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/frahmantamala/household-expense/internal/auth"
	authPostgres "github.com/frahmantamala/household-expense/internal/auth/postgres"
	"github.com/frahmantamala/household-expense/internal/category"
	categoryPostgres "github.com/frahmantamala/household-expense/internal/category/postgres"
	"github.com/frahmantamala/household-expense/internal/group"
	groupPostgres "github.com/frahmantamala/household-expense/internal/group/postgres"
	"github.com/frahmantamala/household-expense/internal/user"
	userPostgres "github.com/frahmantamala/household-expense/internal/user/postgres"
	"github.com/frahmantamala/household-expense/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

const (
	seedPassword   = "password"
	seedGroupName  = "Sample Household"
	seedClosingDay = 25
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, expense categories and one household group.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.LoggerWrapper()
		ctx := context.Background()

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(ctx, db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		tokenGen := auth.NewJWTTokenGenerator(
			cfg.Security.AccessTokenSecret,
			cfg.Security.RefreshTokenSecret,
			cfg.Security.AccessTokenDuration,
			cfg.Security.RefreshTokenDuration,
		)
		authSvc := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, cfg.Security.BCryptCost, lg)
		userSvc := user.NewService(userPostgres.NewRepository(gormDB), authSvc, lg)
		categorySvc := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
		groupSvc := group.NewService(groupPostgres.NewGroupRepository(db), cfg.Household.DefaultClosingDay, lg)

		users := []user.CreateUserDTO{
			{Email: "taro@mail.com", Name: "Taro", Password: seedPassword},
			{Email: "hanako@mail.com", Name: "Hanako", Password: seedPassword},
			{Email: "jiro@mail.com", Name: "Jiro", Password: seedPassword},
		}
		seeded := make([]*user.User, 0, len(users))
		for _, dto := range users {
			u, err := userSvc.EnsureUser(ctx, dto)
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", dto.Email, err)
			}
			seeded = append(seeded, u)
			fmt.Println("Seeded user:", u.Email)
		}

		categories := []struct {
			Name string
			Desc string
		}{
			{"food", "groceries and eating out"},
			{"daily_goods", "household supplies"},
			{"utilities", "electricity, gas and water"},
			{"rent", "rent and housing"},
			{"other", "everything else"},
		}
		for _, c := range categories {
			if _, err := categorySvc.EnsureCategory(ctx, c.Name, c.Desc); err != nil {
				log.Fatalf("failed to seed expense category %s: %v", c.Name, err)
			}
			fmt.Printf("Seeded expense category: %s\n", c.Name)
		}

		owner := seeded[0]
		exists, err := seedGroupExists(ctx, db, owner.ID)
		if err != nil {
			log.Fatalf("failed to look up sample group: %v", err)
		}
		if exists {
			fmt.Println("Sample group already exists; skipping")
			return
		}

		g, err := groupSvc.CreateGroup(ctx, owner.ID, group.CreateGroupDTO{Name: seedGroupName, ClosingDay: seedClosingDay})
		if err != nil {
			log.Fatalf("failed to seed group: %v", err)
		}
		for _, member := range seeded[1:] {
			if _, err := groupSvc.AddMember(ctx, owner.ID, g.ID, group.AddMemberDTO{UserID: member.ID}); err != nil {
				log.Fatalf("failed to add %s to the sample group: %v", member.Email, err)
			}
		}
		fmt.Printf("Seeded group %q (id %d) owned by %s\n", g.Name, g.ID, owner.Email)
	},
}

func seedGroupExists(ctx context.Context, db *sqlx.DB, ownerID int64) (bool, error) {
	var id int64
	query := db.Rebind(`SELECT id FROM household_groups WHERE owner_id = ? AND name = ? LIMIT 1`)
	err := db.GetContext(ctx, &id, query, ownerID, seedGroupName)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// clearSeedData empties every domain table, children first.
func clearSeedData(ctx context.Context, db *sqlx.DB) error {
	tables := []string{
		"settlement_payments",
		"settlements",
		"expense_splits",
		"expenses",
		"group_members",
		"household_groups",
		"expense_categories",
		"users",
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
