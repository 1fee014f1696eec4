package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/internal/repository"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/prom"
	"github.com/nimasrn/verse-gateway/pkg/worker"
	"github.com/pkg/errors"
)

// Registry keeps one daily job per registered phone number and refreshes
// itself from the preference store, so edits made through the API take
// effect without a restart. Firing jobs only enqueue the phone number; the
// worker pool re-reads the preference and runs the pipeline, bounding the
// number of in-flight deliveries.
type Registry struct {
	scheduler      gocron.Scheduler
	prefs          *repository.PreferenceRepository
	pipeline       *Pipeline
	pool           *worker.WorkerManager
	reloadInterval time.Duration

	mu   sync.Mutex
	jobs map[string]registeredJob
}

type registeredJob struct {
	id           uuid.UUID
	deliveryTime string
}

func NewRegistry(
	prefs *repository.PreferenceRepository,
	pipeline *Pipeline,
	pool *worker.WorkerManager,
	reloadInterval time.Duration,
) (*Registry, error) {
	if reloadInterval <= 0 {
		reloadInterval = 5 * time.Minute
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scheduler")
	}

	return &Registry{
		scheduler:      s,
		prefs:          prefs,
		pipeline:       pipeline,
		pool:           pool,
		reloadInterval: reloadInterval,
		jobs:           make(map[string]registeredJob),
	}, nil
}

// Start loads the initial job set, arms the periodic reload, and starts the
// scheduler. The worker pool is started here too; Start does not block.
func (r *Registry) Start(ctx context.Context) error {
	r.pool.SetWorker(func(workerIndex int, job interface{}) {
		phone, ok := job.(string)
		if !ok {
			return
		}
		r.deliver(ctx, phone)
	})
	go func() {
		// Start blocks until the pool is terminated.
		_ = r.pool.Start()
	}()

	if err := r.Reload(ctx); err != nil {
		return err
	}

	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.reloadInterval),
		gocron.NewTask(func() {
			if err := r.Reload(ctx); err != nil {
				logger.Error("Job registry reload failed", "error", err)
			}
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to register reload job")
	}

	r.scheduler.Start()
	logger.Info("Scheduler started", "reload_interval", r.reloadInterval)
	return nil
}

// Reload diffs the preference store against the registered jobs: new phones
// get a job, changed delivery times get re-registered, removed phones get
// dropped.
func (r *Registry) Reload(ctx context.Context) error {
	prefs, err := r.prefs.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list preferences")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(prefs))
	added, updated, removed := 0, 0, 0

	for _, pref := range prefs {
		seen[pref.PhoneNumber] = true

		existing, ok := r.jobs[pref.PhoneNumber]
		if ok && existing.deliveryTime == pref.DeliveryTime {
			continue
		}
		if ok {
			if err := r.scheduler.RemoveJob(existing.id); err != nil {
				logger.Warn("Failed to remove stale job", "error", err, "phone", pref.PhoneNumber)
			}
			updated++
		} else {
			added++
		}
		if err := r.register(pref); err != nil {
			logger.Error("Failed to register delivery job", "error", err, "phone", pref.PhoneNumber, "delivery_time", pref.DeliveryTime)
			delete(r.jobs, pref.PhoneNumber)
		}
	}

	for phone, job := range r.jobs {
		if seen[phone] {
			continue
		}
		if err := r.scheduler.RemoveJob(job.id); err != nil {
			logger.Warn("Failed to remove job", "error", err, "phone", phone)
		}
		delete(r.jobs, phone)
		removed++
	}

	if added > 0 || updated > 0 || removed > 0 {
		logger.Info("Job registry reloaded", "total", len(r.jobs), "added", added, "updated", updated, "removed", removed)
	}

	byMethod := make(map[model.DeliveryMethod]int)
	for _, pref := range prefs {
		byMethod[pref.Method]++
	}
	for _, method := range []model.DeliveryMethod{model.MethodSMS, model.MethodWhatsAppText, model.MethodWhatsAppVoiceNote, model.MethodCall} {
		prom.SetScheduledJobs(string(method), float64(byMethod[method]))
	}

	return nil
}

// JobCount reports the number of registered delivery jobs.
func (r *Registry) JobCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *Registry) Stop() error {
	r.pool.Exit()
	return r.scheduler.Shutdown()
}

func (r *Registry) register(pref *model.Preference) error {
	t, err := time.Parse("15:04", pref.DeliveryTime)
	if err != nil {
		return errors.Wrapf(err, "bad delivery time %q", pref.DeliveryTime)
	}

	phone := pref.PhoneNumber
	job, err := r.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(t.Hour()), uint(t.Minute()), 0),
		)),
		gocron.NewTask(func() {
			r.pool.Enqueue(phone)
		}),
	)
	if err != nil {
		return err
	}

	r.jobs[phone] = registeredJob{id: job.ID(), deliveryTime: pref.DeliveryTime}
	return nil
}

// deliver re-reads the preference at fire time so a dispatch always uses the
// latest settings, then runs the pipeline.
func (r *Registry) deliver(ctx context.Context, phone string) {
	pref, err := r.prefs.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrPreferenceNotFound) {
			logger.Info("Preference removed before delivery, skipping", "phone", phone)
			return
		}
		logger.Error("Failed to load preference for delivery", "error", err, "phone", phone)
		return
	}

	if err := r.pipeline.Deliver(ctx, pref); err != nil {
		logger.Error("Delivery failed", "error", err, "phone", phone, "method", string(pref.Method))
	}
}
