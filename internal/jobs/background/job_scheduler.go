package background

import (
	"context"
	"log"
	"sync"
	"time"

	"kiranamart/internal/jobs"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/hibiken/asynq"
)

// TaskEnqueuer is the subset of asynq.Client the scheduler needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobScheduler fans periodic work out to the asynq workers.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	shopRepo     repositories.ShopRepository
	enqueuer     TaskEnqueuer
	lowStockHour int
	jobJobs      map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(shopRepo repositories.ShopRepository, enqueuer TaskEnqueuer, lowStockHour int) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		shopRepo:     shopRepo,
		enqueuer:     enqueuer,
		lowStockHour: lowStockHour,
		jobJobs:      make(map[string]gocron.Job),
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
	// Nightly low-stock scan, one asynq task per approved shop
	lowStockJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(js.lowStockHour), 0, 0))),
		gocron.NewTask(js.enqueueLowStockScans, context.Background()),
		gocron.WithName("low-stock-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low-stock job: %v", err)
	} else {
		js.jobJobs["low-stock"] = lowStockJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

// enqueueLowStockScans enqueues a low-stock scan task for every approved
// shop. The scan itself runs on the asynq workers so a slow shop never
// blocks the scheduler tick.
func (js *JobScheduler) enqueueLowStockScans(ctx context.Context) error {
	log.Printf("Starting low-stock scan fan-out")

	enqueued := 0
	const page = 200
	for offset := 0; ; offset += page {
		shops, err := js.shopRepo.ListByStatus(ctx, models.ShopStatusApproved, page, offset)
		if err != nil {
			log.Printf("Failed to list shops for low-stock scan: %v", err)
			return err
		}
		if len(shops) == 0 {
			break
		}

		for _, shop := range shops {
			task, err := jobs.NewLowStockAlertTask(shop.ID)
			if err != nil {
				log.Printf("Failed to build low-stock task for shop %s: %v", shop.ID.String(), err)
				continue
			}
			if _, err := js.enqueuer.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)); err != nil {
				log.Printf("Failed to enqueue low-stock task for shop %s: %v", shop.ID.String(), err)
				continue
			}
			enqueued++
		}
	}

	log.Printf("Enqueued low-stock scans for %d shops", enqueued)
	return nil
}
