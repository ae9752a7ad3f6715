package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/application/register"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/config"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/cache"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/database"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/repository"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/storage"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/handler"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/middleware"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/routes"
	"github.com/sangkips/tillpoint-api/pkg/apiclient"
	"github.com/sangkips/tillpoint-api/pkg/email"
	"github.com/sangkips/tillpoint-api/pkg/logger"
	"github.com/sangkips/tillpoint-api/pkg/printer"
	"github.com/sangkips/tillpoint-api/pkg/sms"
	"github.com/sangkips/tillpoint-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.Get()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	if err := database.SeedDefaultData(db, cfg); err != nil {
		log.WithError(err).Warn("failed to seed default data")
	}

	redisCache := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisCache.Close()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise file storage")
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.RefreshExpiryHours)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	identifierRepo := repository.NewIdentifierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	cashbookRepo := repository.NewCashbookRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	mailer := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})
	texter := sms.NewClient(sms.Config{
		GatewayURL:    cfg.SMS.GatewayURL,
		APIToken:      cfg.SMS.APIToken,
		SenderID:      cfg.SMS.SenderID,
		DefaultRegion: cfg.SMS.DefaultRegion,
		Timeout:       10 * time.Second,
	})

	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.WithError(err).Warn("failed to initialise printer; printing disabled")
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	authService := service.NewAuthService(userRepo, jwtManager)
	productService := service.NewProductService(productRepo, redisCache)
	inventoryService := service.NewInventoryService(productRepo, redisCache)
	identifierService := service.NewIdentifierService(identifierRepo, productRepo)
	customerService := service.NewCustomerService(customerRepo, invoiceRepo, cfg.SMS.DefaultRegion)
	cashbookService := service.NewCashbookService(cashbookRepo, settingsRepo)
	financeService := service.NewFinanceService(financeRepo, cashbookService)
	settingsService := service.NewSettingsService(settingsRepo, store, cfg.Storage.UploadMaxSize)
	receiptService := service.NewReceiptService(invoiceRepo, settingsRepo, cfg.POS.ReceiptWidth)
	invoiceService := service.NewInvoiceService(
		invoiceRepo, productRepo, customerRepo, settingsRepo,
		cashbookService, receiptService, redisCache, mailer, texter,
	)
	databaseService := service.NewDatabaseService(adminRepo, userRepo, settingsRepo, redisCache, mailer, cfg.Admin.OTPTTL)
	printerService := service.NewPrinterService(thermalPrinter, receiptService, cfg.Printer.Type)

	// The register runs against this process's services unless it is pointed
	// at another tillpoint instance.
	var backend register.Backend = &register.Local{
		Products:    productService,
		Inventory:   inventoryService,
		Identifiers: identifierService,
		Invoices:    invoiceService,
		Receipts:    receiptService,
		Settings:    settingsService,
	}
	if cfg.POS.BackendURL != "" {
		backend = register.NewRemote(apiclient.New(apiclient.Config{
			BaseURL:        cfg.POS.BackendURL,
			Token:          cfg.POS.BackendToken,
			RequestTimeout: cfg.POS.RequestTimeout,
			MaxAttempts:    cfg.POS.RetryAttempts,
			MaxBackoff:     cfg.POS.MaxBackoff,
		}))
		log.WithField("backend", cfg.POS.BackendURL).Info("register using remote backend")
	}

	stock := register.NewStockCache(backend, cfg.POS.StockPollInterval)
	go stock.Run(ctx)

	registers := register.NewManager(stock, backend)
	resolver := register.NewResolver(backend, backend, stock)
	assembler := register.NewAssembler(register.AssemblerDeps{
		Invoices:   backend,
		Effects:    backend,
		Receipts:   backend,
		Dispatcher: backend,
		Printer:    thermalPrinter,
		Stock:      stock,
	})

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFor(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.Duration)*time.Second,
	))
	go rateLimiter.Run(ctx)

	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Product:    handler.NewProductHandler(productService, cfg.Storage.UploadMaxSize),
		Inventory:  handler.NewInventoryHandler(inventoryService),
		Identifier: handler.NewIdentifierHandler(identifierService),
		Contact:    handler.NewContactHandler(customerService),
		Invoice:    handler.NewInvoiceHandler(invoiceService, receiptService, settingsService),
		Cashbook:   handler.NewCashbookHandler(cashbookService),
		Finance:    handler.NewFinanceHandler(financeService),
		Settings:   handler.NewSettingsHandler(settingsService, registers),
		Database:   handler.NewDatabaseHandler(databaseService),
		Printer:    handler.NewPrinterHandler(printerService),
		POS:        handler.NewPOSHandler(registers, resolver, assembler, stock),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	log.WithFields(logrus.Fields{
		"service": cfg.App.Name,
		"port":    cfg.App.Port,
		"env":     cfg.App.Env,
	}).Info("server started")

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
	// receipt and stock follow-ups from recent checkouts
	assembler.Wait()
}
