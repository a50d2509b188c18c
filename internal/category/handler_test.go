package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/household-expense/internal/category"
	categoryPostgres "github.com/frahmantamala/household-expense/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/household-expense/internal/core/datamodel/category"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *category.Handler
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&categoryDatamodel.ExpenseCategory{})).To(Succeed())

		repo := categoryPostgres.NewCategoryRepository(db)
		handler = category.NewHandler(category.NewService(repo, slogger))

		ctx := context.Background()
		Expect(repo.Create(ctx, &categoryDatamodel.ExpenseCategory{Name: "食費", Description: "Food", IsActive: true})).To(Succeed())
		Expect(repo.Create(ctx, &categoryDatamodel.ExpenseCategory{Name: "光熱費", Description: "Utilities", IsActive: true})).To(Succeed())
		Expect(repo.Create(ctx, &categoryDatamodel.ExpenseCategory{Name: "inactive", Description: "Inactive", IsActive: true})).To(Succeed())
		Expect(db.Model(&categoryDatamodel.ExpenseCategory{}).Where("name = ?", "inactive").Update("is_active", false).Error).To(Succeed())
	})

	It("should list active categories on GET /categories", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoryListResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())

		names := make([]string, len(response.Categories))
		for i, cat := range response.Categories {
			names[i] = cat.Name
			Expect(cat.ID).To(BeNumerically(">", 0))
		}
		Expect(names).To(ConsistOf("食費", "光熱費"))
	})

	It("should answer 500 without leaking the storage error", func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())

		w := httptest.NewRecorder()
		handler.GetCategories(w, httptest.NewRequest(http.MethodGet, "/categories", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring(`"INTERNAL_ERROR"`))
		Expect(w.Body.String()).NotTo(ContainSubstring("closed"))
	})
})
