package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/frahmantamala/household-expense/internal/category"
	"github.com/frahmantamala/household-expense/internal/transport/middleware"
	"github.com/frahmantamala/household-expense/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeCategories struct{}

func (fakeCategories) GetAllCategories(ctx context.Context) ([]category.CategoryResponse, error) {
	return []category.CategoryResponse{{ID: 1, Name: "food"}}, nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("HealthHandler", func() {
	var db *sqlx.DB

	BeforeEach(func() {
		var err error
		db, err = sqlx.Connect("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports healthy with pool details and the schema version", func() {
		defer db.Close()
		db.MustExec(`CREATE TABLE ` + rest.MigrationsTable + ` (id INTEGER PRIMARY KEY, version_id INTEGER NOT NULL, is_applied BOOLEAN NOT NULL)`)
		db.MustExec(`INSERT INTO ` + rest.MigrationsTable + ` (version_id, is_applied) VALUES (0, 1), (1, 1)`)

		rec := httptest.NewRecorder()
		rest.NewHealthHandler(db).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components["postgres"].Details).To(HaveKey("open_connections"))
		Expect(resp.Components["schema"].Details).To(HaveKeyWithValue("version", BeNumerically("==", 1)))
	})

	It("is unhealthy before migrations ran", func() {
		defer db.Close()
		rec := httptest.NewRecorder()
		rest.NewHealthHandler(db).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Components["postgres"].Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components["schema"].Status).To(Equal(rest.HealthUnhealthy))
	})

	It("returns 503 once the database is gone", func() {
		Expect(db.Close()).To(Succeed())
		rec := httptest.NewRecorder()
		rest.NewHealthHandler(db).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring(`"unhealthy"`))
	})

	It("answers ping without touching the database", func() {
		Expect(db.Close()).To(Succeed())
		rec := httptest.NewRecorder()
		rest.NewHealthHandler(db).Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("OK"))
	})
})

var _ = Describe("RegisterAllRoutes", func() {
	var (
		db     *sqlx.DB
		router *chi.Mux
	)

	BeforeEach(func() {
		var err error
		db, err = sqlx.Connect("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health:   rest.NewHealthHandler(db),
			Category: category.NewHandler(fakeCategories{}),
		}, rest.Options{AllowedOrigins: "https://app.example"}, quiet)
	})

	It("mounts operational routes under the API base path", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rest.APIBasePath+"/ping", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
	})

	It("serves categories without a token and applies CORS", func() {
		req := httptest.NewRequest(http.MethodGet, rest.APIBasePath+"/categories", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example"))
		Expect(rec.Body.String()).To(ContainSubstring(`"food"`))
	})

	It("leaves protected routes unmounted without an auth handler", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rest.APIBasePath+"/groups/1", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("skips the document routes when no spec path is configured", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("document routes", func() {
	It("serves the OpenAPI document and the Swagger UI when a spec path is set", func() {
		specPath := filepath.Join(GinkgoT().TempDir(), "openapi.yml")
		Expect(os.WriteFile(specPath, []byte("openapi: 3.0.3\n"), 0o600)).To(Succeed())

		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{}, rest.Options{SpecPath: specPath}, quiet)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
