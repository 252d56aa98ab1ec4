package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/db"
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/notify"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/router"
	"github.com/senyabanana/marketplace-service/internal/router/config"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/workflows"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.temporal.io/sdk/client"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	dbSource, err := db.ConnString(cfg)
	if err != nil {
		log.Fatal(err)
	}
	runDBMigration(cfg.MigrationURL, dbSource)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	requestRepo := repository.NewPostgresRequestRepository(dbPool)
	offerRepo := repository.NewPostgresOfferRepository(dbPool)
	orderRepo := repository.NewPostgresOrderRepository(dbPool)
	notificationRepo := repository.NewPostgresNotificationRepository(dbPool)

	dispatchers := notify.Fanout{notify.NewStoreDispatcher(notificationRepo)}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafkaDispatcher := notify.NewKafkaDispatcher(brokers, cfg.NotificationsTopic)
		defer kafkaDispatcher.Close()
		dispatchers = append(dispatchers, kafkaDispatcher)
		logger.Printf("publishing notifications to kafka topic %s", cfg.NotificationsTopic)
	}
	notifier := notify.NewBestEffort(dispatchers, logger, cfg.WriteTimeout)

	requestService := services.NewRequestService(requestRepo, offerRepo, notifier)
	offerService := services.NewOfferService(offerRepo, requestRepo, notifier)
	lifecycleService := services.NewLifecycleService(offerRepo, requestRepo, orderRepo, notifier, logger, cfg.WriteTimeout)
	orderService := services.NewOrderService(orderRepo)
	notificationService := services.NewNotificationService(notificationRepo)

	if cfg.TemporalHost != "" {
		temporalClient, err := client.Dial(client.Options{
			HostPort:  cfg.TemporalHost,
			Namespace: cfg.TemporalNamespace,
		})
		if err != nil {
			log.Fatalf("unable to create Temporal client: %v", err)
		}
		defer temporalClient.Close()
		lifecycleService.WithReconciler(workflows.NewTemporalReconciler(temporalClient, cfg.TemporalTaskQueue))
		logger.Printf("order reconciliation enabled (taskQueue=%s)", cfg.TemporalTaskQueue)
	}

	h := router.Handlers{
		Requests:      handlers.NewRequestHandler(requestService, logger, cfg.RequestTimeout),
		Offers:        handlers.NewOfferHandler(offerService, lifecycleService, logger, cfg.RequestTimeout),
		Orders:        handlers.NewOrderHandler(orderService, logger, cfg.RequestTimeout),
		Notifications: handlers.NewNotificationHandler(notificationService, logger, cfg.RequestTimeout),
		Stream:        handlers.NewStreamHandler(repository.NewChangeFeed(dbPool, logger), requestService, logger, cfg.RequestTimeout),
	}
	routes := router.InitRoutes(h, auth.NewTokenService(cfg.JWTSecret), logger)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
