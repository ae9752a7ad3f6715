package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/config"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/handler"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/middleware"
	"github.com/sangkips/tillpoint-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	Product    *handler.ProductHandler
	Inventory  *handler.InventoryHandler
	Identifier *handler.IdentifierHandler
	Contact    *handler.ContactHandler
	Invoice    *handler.InvoiceHandler
	Cashbook   *handler.CashbookHandler
	Finance    *handler.FinanceHandler
	Settings   *handler.SettingsHandler
	Database   *handler.DatabaseHandler
	Printer    *handler.PrinterHandler
	POS        *handler.POSHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
}

var (
	adminOnly  = middleware.RequireRole(entity.RoleAdmin)
	backOffice = middleware.RequireRole(entity.RoleAdmin, entity.RoleManager)
)

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	api := router.Group("/api")
	{
		registerAuthRoutes(api, h)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(api *gin.RouterGroup, h *Handlers) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/auth/me", h.Auth.Me)
	protected.PUT("/auth/profile", h.Auth.UpdateProfile)
	protected.PUT("/auth/password", h.Auth.ChangePassword)
	protected.POST("/auth/staff", adminOnly, h.Auth.CreateStaff)

	registerProductRoutes(protected, h)
	registerInventoryRoutes(protected, h)
	registerIdentifierRoutes(protected, h)
	registerContactRoutes(protected, h)
	registerInvoiceRoutes(protected, h, deps)
	registerLedgerRoutes(protected, h)
	registerSettingsRoutes(protected, h)
	registerDatabaseRoutes(protected, h)
	registerPrinterRoutes(protected, h)
	registerPOSRoutes(protected, h)
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/search", h.Product.Search)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/barcode/:code", h.Product.GetByBarcode)
		products.GET("/:id", h.Product.Get)
		products.POST("", backOffice, h.Product.Create)
		products.POST("/import", backOffice, h.Product.Import)
		products.PUT("/:id", backOffice, h.Product.Update)
		products.DELETE("/:id", backOffice, h.Product.Delete)
	}
}

func registerInventoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	inventory := protected.Group("/inventory")
	{
		inventory.GET("", h.Inventory.Levels)
		inventory.POST("/deduct", h.Inventory.Deduct)
		inventory.POST("/adjust", backOffice, h.Inventory.Adjust)
	}
}

func registerIdentifierRoutes(protected *gin.RouterGroup, h *Handlers) {
	identifiers := protected.Group("/identifiers")
	{
		identifiers.GET("/search", h.Identifier.Search)
		identifiers.GET("/value/:value", h.Identifier.Get)
		identifiers.POST("/mark-sold", h.Identifier.MarkSold)
		identifiers.GET("/:type/:productId", h.Identifier.List)
		identifiers.POST("/:type/:productId", backOffice, h.Identifier.BulkAdd)
	}
}

func registerContactRoutes(protected *gin.RouterGroup, h *Handlers) {
	contacts := protected.Group("/contacts")
	{
		contacts.GET("", h.Contact.List)
		contacts.POST("", h.Contact.Create)
		contacts.GET("/:id", h.Contact.Get)
		contacts.GET("/:id/account", h.Contact.Account)
		contacts.PUT("/:id", h.Contact.Update)
		contacts.DELETE("/:id", backOffice, h.Contact.Delete)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		// retried submissions replay the first response instead of double-selling
		invoices.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/receipt", h.Invoice.Receipt)
		invoices.POST("/:id/email", h.Invoice.Email)
		invoices.POST("/:id/sms", h.Invoice.SMS)
		invoices.POST("/:id/pay", h.Invoice.Pay)
	}
}

func registerLedgerRoutes(protected *gin.RouterGroup, h *Handlers) {
	cashbook := protected.Group("/cashbook")
	{
		cashbook.GET("", h.Cashbook.List)
		cashbook.POST("", h.Cashbook.Add)
		cashbook.GET("/export", backOffice, h.Cashbook.Export)
	}

	finance := protected.Group("/finance")
	finance.Use(backOffice)
	{
		finance.GET("/summary", h.Finance.Summary)
		finance.GET("/income", h.Finance.List(enum.FinanceIncome))
		finance.POST("/income", h.Finance.Create(enum.FinanceIncome))
		finance.DELETE("/income/:id", h.Finance.Delete(enum.FinanceIncome))
		finance.GET("/expense", h.Finance.List(enum.FinanceExpense))
		finance.POST("/expense", h.Finance.Create(enum.FinanceExpense))
		finance.DELETE("/expense/:id", h.Finance.Delete(enum.FinanceExpense))
	}
}

func registerSettingsRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/business-settings", h.Settings.GetBusiness)
	protected.PUT("/business-settings", backOffice, h.Settings.UpdateBusiness)
	protected.POST("/business-settings/logo", backOffice, h.Settings.UploadLogo)
	protected.POST("/business-settings/template", backOffice, h.Settings.UploadTemplate)

	protected.GET("/additional", h.Settings.GetAdditional)
	protected.PUT("/additional", backOffice, h.Settings.UpdateAdditional)
}

func registerDatabaseRoutes(protected *gin.RouterGroup, h *Handlers) {
	database := protected.Group("/database")
	database.Use(adminOnly)
	{
		database.GET("/stats", h.Database.Stats)
		database.POST("/otp", h.Database.RequestOTP)
		database.POST("/clear", h.Database.Clear)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
		printerGroup.POST("/receipt", h.Printer.PrintReceipt)
	}
}

func registerPOSRoutes(protected *gin.RouterGroup, h *Handlers) {
	pos := protected.Group("/pos")
	{
		pos.GET("/search", h.POS.Search)
		pos.GET("/stock", h.POS.Stock)
		pos.GET("/held", h.POS.HeldBills)

		pos.GET("/tabs", h.POS.ListTabs)
		pos.POST("/tabs", h.POS.CreateTab)
		pos.GET("/tabs/:tabId", h.POS.GetTab)
		pos.PATCH("/tabs/:tabId", h.POS.PatchTab)
		pos.DELETE("/tabs/:tabId", h.POS.CloseTab)
		pos.POST("/tabs/:tabId/activate", h.POS.ActivateTab)

		pos.POST("/tabs/:tabId/scan", h.POS.Scan)
		pos.POST("/tabs/:tabId/identifiers", h.POS.SelectIdentifier)
		pos.PUT("/tabs/:tabId/lines/:lineId/quantity", h.POS.SetQuantity)
		pos.PUT("/tabs/:tabId/lines/:lineId/discount", h.POS.SetLineDiscount)
		pos.DELETE("/tabs/:tabId/lines/:lineId", h.POS.RemoveLine)
		pos.PUT("/tabs/:tabId/discount", h.POS.SetOrderDiscount)
		pos.PUT("/tabs/:tabId/tax", h.POS.SetTaxRate)
		pos.PUT("/tabs/:tabId/customer", h.POS.SetCustomer)

		pos.POST("/tabs/:tabId/hold", h.POS.Hold)
		pos.POST("/tabs/:tabId/unhold", h.POS.Unhold)
		pos.POST("/tabs/:tabId/checkout", h.POS.Checkout)
	}
}
