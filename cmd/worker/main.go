package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/senyabanana/marketplace-service/internal/db"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/router/config"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}
	if cfg.TemporalHost == "" {
		log.Fatal("TEMPORAL_HOST is required")
	}

	ctx := context.Background()
	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "WORKER: ", log.LstdFlags)

	// уведомления по решению уже отправлены API, воркер только создает заказы
	lifecycle := services.NewLifecycleService(
		repository.NewPostgresOfferRepository(dbPool),
		repository.NewPostgresRequestRepository(dbPool),
		repository.NewPostgresOrderRepository(dbPool),
		nil,
		logger,
		cfg.WriteTimeout,
	)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	defer c.Close()

	reconciler := workflows.NewTemporalReconciler(c, cfg.TemporalTaskQueue)
	enqueuePending(ctx, lifecycle, reconciler, logger)

	w := worker.New(c, reconciler.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.EnsureOrderWorkflow)
	w.RegisterActivity(&workflows.Activities{Lifecycle: lifecycle})

	log.Printf("worker started (taskQueue=%s)\n", reconciler.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker exited: %v", err)
	}
}

// enqueuePending ставит в очередь одобренные предложения, оставшиеся без заказа.
func enqueuePending(ctx context.Context, lifecycle *services.LifecycleService, reconciler services.OrderReconciler, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	offers, err := lifecycle.PendingOrderOffers(ctx)
	if err != nil {
		logger.Printf("failed to list offers awaiting orders: %v", err)
		return
	}
	for _, offer := range offers {
		if err := reconciler.Enqueue(ctx, offer.ID); err != nil {
			logger.Printf("failed to enqueue offer %s: %v", offer.ID, err)
		}
	}
	logger.Printf("enqueued %d offers awaiting orders", len(offers))
}
