package background

import (
	"context"
	"log"
	"sync"
	"time"

	"corpgate/internal/models"
	"corpgate/internal/repositories"
	"corpgate/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// JobScheduler manages background jobs for distributed environment
type JobScheduler struct {
	scheduler      gocron.Scheduler
	entitlementSvc services.EntitlementService
	tenantRepo     repositories.TenantRepository

	sweepInterval time.Duration
	tenantTimeout time.Duration
	concurrency   int
	batchSize     int

	jobs map[string]gocron.Job
	mu   sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(entitlementSvc services.EntitlementService, tenantRepo repositories.TenantRepository,
	sweepInterval, tenantTimeout time.Duration, concurrency, batchSize int) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	if concurrency <= 0 {
		concurrency = 5
	}
	if batchSize <= 0 {
		batchSize = 1000
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		entitlementSvc: entitlementSvc,
		tenantRepo:     tenantRepo,
		sweepInterval:  sweepInterval,
		tenantTimeout:  tenantTimeout,
		concurrency:    concurrency,
		batchSize:      batchSize,
		jobs:           make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Entitlement sweep. Recomputes every active tenant's decision so
	// threshold notifications fire even for tenants nobody queries.
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.sweepInterval),
		gocron.NewTask(js.sweepEntitlements, context.Background()),
		gocron.WithName("entitlement-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create entitlement sweep job: %v", err)
	} else {
		js.mu.Lock()
		js.jobs["entitlement-sweep"] = sweepJob
		js.mu.Unlock()
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// RunSweepNow triggers the entitlement sweep outside its schedule.
func (js *JobScheduler) RunSweepNow(ctx context.Context) error {
	return js.sweepEntitlements(ctx)
}

// sweepEntitlements walks all tenants in batches and recomputes each active
// tenant's entitlement decision.
func (js *JobScheduler) sweepEntitlements(ctx context.Context) error {
	log.Printf("Starting entitlement sweep")
	start := time.Now()

	var swept, failed int
	offset := 0
	for {
		tenants, err := js.tenantRepo.List(ctx, js.batchSize, offset)
		if err != nil {
			log.Printf("Failed to list tenants for entitlement sweep: %v", err)
			return err
		}
		if len(tenants) == 0 {
			break
		}

		s, f := js.sweepBatch(ctx, tenants)
		swept += s
		failed += f

		if len(tenants) < js.batchSize {
			break
		}
		offset += js.batchSize
	}

	log.Printf("Entitlement sweep finished: %d evaluated, %d failed, took %s", swept, failed, time.Since(start))
	return nil
}

// sweepBatch evaluates one page of tenants with bounded concurrency.
func (js *JobScheduler) sweepBatch(ctx context.Context, tenants []*models.Tenant) (swept, failed int) {
	semaphore := make(chan struct{}, js.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, tenant := range tenants {
		if !tenant.IsActive() {
			continue
		}

		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			tenantCtx, cancel := context.WithTimeout(ctx, js.tenantTimeout)
			defer cancel()

			_, err := js.entitlementSvc.Refresh(tenantCtx, tenantID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Printf("Entitlement sweep failed for tenant %s: %v", tenantID.String(), err)
				return
			}
			swept++
		}(tenant.ID)
	}

	wg.Wait()
	return swept, failed
}
