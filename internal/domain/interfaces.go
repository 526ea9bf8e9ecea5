package domain

import (
	"context"
	"time"

	"eclat/internal/models"
)

// Store is the data-access seam the services depend on; *database.DB satisfies
// it. Availability reads are advisory, CreateAppointmentWithLock is the
// authoritative write.
type Store interface {
	CreateAppointment(ctx context.Context, apt *models.Appointment) error
	CreateAppointmentWithLock(ctx context.Context, apt *models.Appointment) error
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	GetAppointmentByReference(ctx context.Context, reference string) (*models.Appointment, error)
	GetAppointmentsOnDate(ctx context.Context, date time.Time) ([]*models.Appointment, error)
	GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error)
	GetAppointmentsForReminder(ctx context.Context, date time.Time) ([]*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, status string) error
	UpdateAppointmentStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error

	IsDateClosed(ctx context.Context, date time.Time) (bool, error)
	CreateClosure(ctx context.Context, closure *models.Closure) error
	GetClosures(ctx context.Context) ([]*models.Closure, error)
	DeleteClosure(ctx context.Context, id int64) error

	UpsertClient(ctx context.Context, client *models.Client) error
	GetClients(ctx context.Context) ([]*models.Client, error)
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	GetClientAppointments(ctx context.Context, email string) ([]*models.Appointment, error)

	CreateGiftCard(ctx context.Context, card *models.GiftCard) error
	GetGiftCards(ctx context.Context) ([]*models.GiftCard, error)
	GetGiftCardByCode(ctx context.Context, code string) (*models.GiftCard, error)
	RedeemGiftCard(ctx context.Context, code string) error
}

// ScheduleCache holds precomputed day schedules for the advisory read path.
// GetDay returns (nil, nil) on a miss.
type ScheduleCache interface {
	GetDay(ctx context.Context, date string) (*models.DaySchedule, error)
	SetDay(ctx context.Context, day *models.DaySchedule) error
	InvalidateDay(ctx context.Context, date string) error
	Flush(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Mailer sends the post-commit notification emails. Implementations must be
// safe for fire-and-forget use; failures are logged, never surfaced to the
// booking client.
type Mailer interface {
	SendBookingConfirmation(apt *models.Appointment) error
	SendAdminNotification(apt *models.Appointment) error
	SendReminder(apt *models.Appointment) error
	SendGiftCard(card *models.GiftCard) error
}
