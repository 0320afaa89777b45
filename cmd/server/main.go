package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/application/service"
	"github.com/Intelygenai/paycyclexplorer/internal/config"
	"github.com/Intelygenai/paycyclexplorer/internal/document"
	"github.com/Intelygenai/paycyclexplorer/internal/identity"
	httpserver "github.com/Intelygenai/paycyclexplorer/internal/interfaces/http"
	"github.com/Intelygenai/paycyclexplorer/internal/notification"
	"github.com/Intelygenai/paycyclexplorer/internal/repository/memory"
	"github.com/Intelygenai/paycyclexplorer/internal/repository/sqlite"
	"github.com/Intelygenai/paycyclexplorer/pkg/database"
	"github.com/Intelygenai/paycyclexplorer/pkg/utils"
)

func main() {
	// Local overrides for credentials; missing .env is fine.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting procure-to-pay workflow engine",
		zap.String("version", "1.0.0"),
		zap.String("store", cfg.Store.Driver),
		zap.Int("port", cfg.Server.Port))

	// Persistence
	var (
		requisitionRepo port.RequisitionRepository
		orderRepo       port.OrderRepository
		receiptRepo     port.ReceiptRepository
		vendorRepo      port.VendorRepository
		approverRepo    port.ApproverRepository
		txManager       port.TransactionManager
	)
	switch cfg.Store.Driver {
	case "sqlite":
		db, err := database.Open(database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()

		migrator := database.NewMigrator(db, logger)
		if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}

		requisitionRepo = sqlite.NewRequisitionRepository(db, logger)
		orderRepo = sqlite.NewOrderRepository(db, logger)
		receiptRepo = sqlite.NewReceiptRepository(db, logger)
		vendorRepo = sqlite.NewVendorRepository(db, logger)
		approverRepo = sqlite.NewApproverRepository(db, logger)
		txManager = sqlite.NewDB(db, logger)
	case "memory":
		store := memory.NewStore()
		requisitionRepo = store.Requisitions()
		orderRepo = store.Orders()
		receiptRepo = store.Receipts()
		vendorRepo = store.Vendors()
		approverRepo = store.Approvers()
		txManager = store
	}

	// Notification channel
	var sink port.NotificationSink
	switch cfg.Notification.Channel {
	case "lark":
		sink = notification.NewLarkSink(notification.LarkConfig{
			AppID:     cfg.Notification.Lark.AppID,
			AppSecret: cfg.Notification.Lark.AppSecret,
		}, logger)
	default:
		sink = notification.NewLogSink(logger)
	}

	docBuilder, err := document.NewExcelOrderBuilder(cfg.Procurement.DocumentOutputDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize order document builder", zap.Error(err))
	}

	identityProvider := identity.NewStaticProvider(cfg.UserDirectory())

	resolver := service.NewApprovalResolver(approverRepo, service.ResolverConfig{
		DefaultApprover: cfg.DefaultApprover(),
		EnforceLimits:   cfg.Approval.EnforceLimits,
	}, logger)

	vendorSelector := service.NewFirstActiveVendorSelector(vendorRepo)

	requisitionService := service.NewRequisitionService(
		requisitionRepo,
		orderRepo,
		approverRepo,
		txManager,
		resolver,
		identityProvider,
		vendorSelector,
		sink,
		service.ConversionConfig{
			ShippingAddress: cfg.Procurement.ShippingAddress,
			BillingAddress:  cfg.Procurement.BillingAddress,
			Currency:        cfg.Procurement.Currency,
		},
		cfg.Approval.EnforceLimits,
		logger,
	)

	orderService := service.NewOrderService(
		orderRepo,
		receiptRepo,
		vendorRepo,
		txManager,
		resolver,
		identityProvider,
		docBuilder,
		sink,
		logger,
	)

	vendorService := service.NewVendorService(vendorRepo, approverRepo, identityProvider, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, requisitionService, orderService, vendorService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
