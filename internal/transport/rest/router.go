package rest

import (
	"log/slog"

	"github.com/frahmantamala/household-expense/internal/auth"
	"github.com/frahmantamala/household-expense/internal/category"
	"github.com/frahmantamala/household-expense/internal/expense"
	"github.com/frahmantamala/household-expense/internal/group"
	"github.com/frahmantamala/household-expense/internal/settlement"
	"github.com/frahmantamala/household-expense/internal/transport/middleware"
	"github.com/frahmantamala/household-expense/internal/transport/swagger"
	"github.com/frahmantamala/household-expense/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const APIBasePath = "/api/v1"

// Handlers groups the HTTP handlers mounted under APIBasePath. Nil handlers
// leave their routes unmounted.
type Handlers struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	User       *user.Handler
	Category   *category.Handler
	Group      *group.Handler
	Expense    *expense.Handler
	Settlement *settlement.Handler
}

type Options struct {
	AllowedOrigins string
	SpecPath       string
	// Validator is optional; when set, requests are checked against the
	// OpenAPI document before reaching a handler.
	Validator *middleware.RequestValidator
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if opts.Validator != nil {
		router.Use(opts.Validator.Middleware)
	}

	if opts.SpecPath != "" {
		swagger.Mount(router, opts.SpecPath)
	}

	router.Route(APIBasePath, func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// categories are reference data, readable without a token
		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			pr.Route("/groups", func(gr chi.Router) {
				if h.Group != nil {
					gr.Post("/", h.Group.CreateGroup)
					gr.Get("/{groupID}", h.Group.GetGroup)
					gr.Patch("/{groupID}/closing-day", h.Group.UpdateClosingDay)
					gr.Post("/{groupID}/members", h.Group.AddMember)
					gr.Delete("/{groupID}/members/{userID}", h.Group.RemoveMember)
					gr.Get("/{groupID}/periods/current", h.Group.CurrentPeriod)
				}
				if h.Expense != nil {
					gr.Post("/{groupID}/expenses", h.Expense.CreateExpense)
					gr.Get("/{groupID}/expenses", h.Expense.ListExpenses)
				}
				if h.Settlement != nil {
					gr.Get("/{groupID}/settlements", h.Settlement.ListSettlements)
					gr.Get("/{groupID}/settlements/preview", h.Settlement.GetPreview)
					gr.Post("/{groupID}/settlements", h.Settlement.CreateSettlement)
				}
			})

			if h.Expense != nil {
				pr.Route("/expenses/{expenseID}", func(er chi.Router) {
					er.Get("/", h.Expense.GetExpense)
					er.Put("/", h.Expense.UpdateExpense)
					er.Delete("/", h.Expense.DeleteExpense)
				})
			}

			if h.Settlement != nil {
				pr.Get("/settlements/{settlementID}", h.Settlement.GetSettlement)
				pr.Patch("/settlement-payments/{paymentID}/paid", h.Settlement.MarkPaymentPaid)
			}
		})
	})
}
