package worker

import (
	"context"
	"fmt"
	"time"

	"eclat/internal/domain"
	"eclat/internal/metrics"
	"eclat/internal/models"
	"eclat/internal/schedule"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// reminderTask is one reminder email attempt in flight.
type reminderTask struct {
	appointment *models.Appointment
	attempt     int
}

// ReminderStore is the slice of the store the reminder worker needs.
type ReminderStore interface {
	GetAppointmentsForReminder(ctx context.Context, date time.Time) ([]*models.Appointment, error)
}

// ReminderWorker sends day-before reminder emails. A daily job enqueues
// tomorrow's appointments; the worker loop delivers them with retries.
type ReminderWorker struct {
	store       ReminderStore
	mailer      domain.Mailer
	retryPolicy RetryPolicy
	queue       chan reminderTask
	scheduler   gocron.Scheduler
	logger      *zerolog.Logger
}

func NewReminderWorker(store ReminderStore, mailer domain.Mailer, retry RetryPolicy, logger *zerolog.Logger) *ReminderWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 5 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ReminderWorker{
		store:       store,
		mailer:      mailer,
		retryPolicy: retry,
		queue:       make(chan reminderTask, models.WorkerQueueSize),
		logger:      logger,
	}
}

// Start runs the delivery loop until ctx is done.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("reminder worker started")
	defer w.logger.Info().Msg("reminder worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

// Schedule registers the daily enqueue job at the given "HH:MM" local time and
// starts the scheduler.
func (w *ReminderWorker) Schedule(ctx context.Context, reminderTime string) error {
	minutes, err := schedule.ParseClock(reminderTime)
	if err != nil {
		return fmt.Errorf("invalid reminder time %q: %w", reminderTime, err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(minutes/60), uint(minutes%60), 0),
		)),
		gocron.NewTask(func() {
			w.EnqueueDueReminders(ctx)
		}),
		gocron.WithName("daily_reminders"),
		gocron.WithSingletonMode(gocron.LimitModeWait),
	)
	if err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}

	scheduler.Start()
	w.scheduler = scheduler
	w.logger.Info().Str("at", reminderTime).Msg("reminder job scheduled")
	return nil
}

// Shutdown stops the scheduler. The delivery loop stops via its context.
func (w *ReminderWorker) Shutdown() error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Shutdown()
}

// EnqueueDueReminders loads tomorrow's appointments and queues a reminder for
// each. Returns the number enqueued.
func (w *ReminderWorker) EnqueueDueReminders(ctx context.Context) int {
	tomorrow := time.Now().AddDate(0, 0, 1)
	appointments, err := w.store.GetAppointmentsForReminder(ctx, tomorrow)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load appointments for reminders")
		return 0
	}

	enqueued := 0
	for _, apt := range appointments {
		if w.enqueue(reminderTask{appointment: apt, attempt: 1}) {
			enqueued++
		}
	}

	w.logger.Info().
		Str("date", tomorrow.Format(models.DateLayout)).
		Int("enqueued", enqueued).
		Msg("due reminders enqueued")
	return enqueued
}

func (w *ReminderWorker) enqueue(task reminderTask) bool {
	select {
	case w.queue <- task:
		return true
	default:
		w.logger.Error().
			Str("reference", task.appointment.Reference).
			Msg("reminder queue full, dropping task")
		return false
	}
}

func (w *ReminderWorker) process(ctx context.Context, task reminderTask) {
	err := w.mailer.SendReminder(task.appointment)
	if err == nil {
		metrics.IncReminderSent()
		w.logger.Info().
			Str("reference", task.appointment.Reference).
			Str("email", task.appointment.ClientEmail).
			Msg("reminder sent")
		return
	}

	if task.attempt >= w.retryPolicy.MaxRetries {
		metrics.IncReminderFailure()
		w.logger.Error().Err(err).
			Str("reference", task.appointment.Reference).
			Int("attempts", task.attempt).
			Msg("reminder delivery gave up")
		return
	}

	delay := w.retryPolicy.NextDelay(task.attempt)
	w.logger.Warn().Err(err).
		Str("reference", task.appointment.Reference).
		Int("attempt", task.attempt).
		Dur("retry_in", delay).
		Msg("reminder delivery failed, will retry")

	next := reminderTask{appointment: task.appointment, attempt: task.attempt + 1}
	time.AfterFunc(delay, func() {
		if ctx.Err() == nil {
			w.enqueue(next)
		}
	})
}
