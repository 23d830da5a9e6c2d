package handler

import (
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups the API handlers registered by RegisterRoutes
type Handlers struct {
	Session   *SessionHandler
	Ledger    *LedgerHandler
	Recurring *RecurringHandler
	Analytics *AnalyticsHandler
	Report    *ReportHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, h Handlers, rateLimiter *middleware.RateLimiter) {
	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", OpenAPI3Handler(nil))

	// WebSocket identifies the user from the query string
	e.GET("/ws", h.WebSocket.HandleWS)

	// API version 1
	api := e.Group("/api/v1")
	api.Use(middleware.Identity())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Session routes
	api.POST("/session", h.Session.Login)
	api.DELETE("/session", h.Session.Logout)

	// Ledger routes
	ledger := api.Group("/ledger")
	ledger.GET("/balance", h.Ledger.GetBalance)
	ledger.POST("/credits", h.Ledger.RecordCredit)
	ledger.POST("/expenses", h.Ledger.RecordExpense)
	ledger.GET("/expenses/:year/:month", h.Ledger.GetMonthSummary)
	ledger.GET("/categories", h.Ledger.GetCategories)

	// Analytics routes
	analytics := api.Group("/analytics")
	analytics.GET("/yearly", h.Analytics.GetYearlyTotals)
	analytics.GET("/:year/monthly", h.Analytics.GetMonthlyTotals)
	analytics.GET("/:year/categories", h.Analytics.GetCategoryTotals)
	api.GET("/charts/:year", h.Analytics.GetCharts)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/:year", h.Report.GetReport)
	reports.GET("/:year/text", h.Report.GetReportText)
	reports.POST("/:year/export", h.Report.ExportReport)

	// Recurring expense routes
	recurring := api.Group("/recurring")
	recurring.GET("", h.Recurring.ListRecurring)
	recurring.POST("", h.Recurring.CreateRecurring)
	recurring.PATCH("/:id/toggle", h.Recurring.ToggleRecurring)
	recurring.DELETE("/:id", h.Recurring.DeleteRecurring)
}
