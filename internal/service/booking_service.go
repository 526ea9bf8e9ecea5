package service

import (
	"context"
	"time"

	"eclat/internal/database"
	"eclat/internal/domain"
	"eclat/internal/events"
	"eclat/internal/metrics"
	"eclat/internal/models"
	"eclat/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService owns the booking write path and the day-schedule read path.
// Reads may be served from the schedule cache; the write goes through the
// store's locked create, which re-runs the availability check transactionally.
type BookingService struct {
	store          domain.Store
	engine         *schedule.Engine
	cache          domain.ScheduleCache
	eventBus       domain.EventPublisher
	maxBookingDays int
	logger         *zerolog.Logger
}

func NewBookingService(store domain.Store, engine *schedule.Engine, cache domain.ScheduleCache, eventBus domain.EventPublisher, maxBookingDays int, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	return &BookingService{
		store:          store,
		engine:         engine,
		cache:          cache,
		eventBus:       eventBus,
		maxBookingDays: maxBookingDays,
		logger:         logger,
	}
}

func (s *BookingService) ValidateBookingDate(date time.Time) error {
	if date.Before(time.Now().AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}

	maxDate := time.Now().AddDate(0, 0, s.maxBookingDays)
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

// CreateAppointment books a slot on behalf of a client. On success the
// appointment carries its generated reference and ID. Conflicts surface as
// database.ErrSlotTaken, closures as database.ErrClosedDate.
func (s *BookingService) CreateAppointment(ctx context.Context, apt *models.Appointment) error {
	return s.createAppointment(ctx, apt, "client")
}

// CreateAppointmentByAdmin books a slot from the back office. Same
// availability contract as a client booking, but the entry starts confirmed
// since the admin placed it deliberately.
func (s *BookingService) CreateAppointmentByAdmin(ctx context.Context, apt *models.Appointment) error {
	if err := s.createAppointment(ctx, apt, "admin"); err != nil {
		return err
	}
	if err := s.store.UpdateAppointmentStatusWithVersion(ctx, apt.ID, apt.Version, models.StatusConfirmed); err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", apt.ID).Msg("confirm admin booking")
		return nil
	}
	apt.Status = models.StatusConfirmed
	apt.Version++
	return nil
}

func (s *BookingService) createAppointment(ctx context.Context, apt *models.Appointment, changedBy string) error {
	if err := s.ValidateBookingDate(apt.Date); err != nil {
		return err
	}
	if !s.engine.Grid().Contains(apt.StartTime) {
		return database.ErrInvalidSlot
	}

	if svc, ok := s.engine.Catalog().Get(apt.ServiceID); ok && apt.ServiceName == "" {
		apt.ServiceName = svc.Label
	}

	apt.Reference = uuid.NewString()
	apt.Status = models.StatusPending
	apt.IsGiftCard = false

	if err := s.store.CreateAppointmentWithLock(ctx, apt); err != nil {
		if err == database.ErrSlotTaken {
			metrics.IncBookingConflict()
		}
		return err
	}
	metrics.IncBookingCreated()

	if apt.ClientEmail != "" {
		client := &models.Client{
			Name:  apt.ClientName,
			Email: apt.ClientEmail,
			Phone: apt.ClientPhone,
		}
		if err := s.store.UpsertClient(ctx, client); err != nil {
			s.logger.Error().Err(err).Str("email", apt.ClientEmail).Msg("client upsert error")
		}
	}

	s.publishEvent(events.EventAppointmentCreated, apt, changedBy)
	s.invalidateDay(ctx, apt.DateKey())

	return nil
}

// GetDaySchedule returns the availability snapshot for a date, served from the
// cache when possible. Closed days report an empty available list.
func (s *BookingService) GetDaySchedule(ctx context.Context, date time.Time) (*models.DaySchedule, error) {
	dateKey := date.Format(models.DateLayout)

	if s.cache != nil {
		day, err := s.cache.GetDay(ctx, dateKey)
		if err != nil {
			s.logger.Error().Err(err).Str("date", dateKey).Msg("schedule cache read error")
		} else if day != nil {
			return day, nil
		}
	}

	day, err := s.computeDaySchedule(ctx, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDay(ctx, day); err != nil {
			s.logger.Error().Err(err).Str("date", dateKey).Msg("schedule cache write error")
		}
	}
	return day, nil
}

// GetDayScheduleFor narrows a day's availability for a concrete service: slots
// where the chosen treatment would run into a later booking are dropped.
func (s *BookingService) GetDayScheduleFor(ctx context.Context, date time.Time, serviceID string) (*models.DaySchedule, error) {
	day, err := s.GetDaySchedule(ctx, date)
	if err != nil {
		return nil, err
	}
	if day.Closed {
		return day, nil
	}

	existing := make([]schedule.Existing, 0, len(day.Appointments))
	for _, apt := range day.Appointments {
		existing = append(existing, schedule.Existing{
			StartTime:   apt.StartTime,
			ServiceID:   apt.ServiceID,
			ServiceName: apt.ServiceName,
		})
	}

	var serviceName string
	if svc, ok := s.engine.Catalog().Get(serviceID); ok {
		serviceName = svc.Label
	}

	narrowed := *day
	narrowed.Available = s.engine.ListAvailableSlotsFor(serviceID, serviceName, existing)
	return &narrowed, nil
}

func (s *BookingService) computeDaySchedule(ctx context.Context, date time.Time) (*models.DaySchedule, error) {
	dateKey := date.Format(models.DateLayout)

	closed, err := s.store.IsDateClosed(ctx, date)
	if err != nil {
		return nil, err
	}

	day := &models.DaySchedule{
		Date:      dateKey,
		Closed:    closed,
		Grid:      s.engine.Grid().Slots(),
		Available: []string{},
		Reserved:  []string{},
	}
	if closed {
		return day, nil
	}

	appointments, err := s.store.GetAppointmentsOnDate(ctx, date)
	if err != nil {
		return nil, err
	}

	existing := schedule.ExistingFromAppointments(appointments)
	day.Available = s.engine.ListAvailableSlots(existing)
	day.Reserved = s.engine.ReservedSlots(existing)
	day.Appointments = schedule.Summaries(appointments)
	return day, nil
}

func (s *BookingService) ConfirmAppointment(ctx context.Context, id, version int64) error {
	return s.updateStatus(ctx, id, version, models.StatusConfirmed, events.EventAppointmentConfirmed)
}

func (s *BookingService) CancelAppointment(ctx context.Context, id, version int64) error {
	return s.updateStatus(ctx, id, version, models.StatusCancelled, events.EventAppointmentCancelled)
}

func (s *BookingService) CompleteAppointment(ctx context.Context, id, version int64) error {
	return s.updateStatus(ctx, id, version, models.StatusCompleted, events.EventAppointmentCompleted)
}

func (s *BookingService) updateStatus(ctx context.Context, id, version int64, status, eventType string) error {
	if err := s.store.UpdateAppointmentStatusWithVersion(ctx, id, version, status); err != nil {
		return err
	}

	apt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", id).Msg("reload after status update error")
		return nil
	}

	s.publishEvent(eventType, apt, "admin")
	if !apt.IsGiftCard {
		s.invalidateDay(ctx, apt.DateKey())
	}
	return nil
}

func (s *BookingService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.store.GetAppointment(ctx, id)
}

func (s *BookingService) GetAppointmentByReference(ctx context.Context, reference string) (*models.Appointment, error) {
	return s.store.GetAppointmentByReference(ctx, reference)
}

func (s *BookingService) GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error) {
	return s.store.GetAppointmentsByDateRange(ctx, start, end)
}

func (s *BookingService) publishEvent(eventType string, apt *models.Appointment, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: apt.ID,
		Reference:     apt.Reference,
		Date:          apt.DateKey(),
		StartTime:     apt.StartTime,
		ServiceID:     apt.ServiceID,
		ServiceName:   apt.ServiceName,
		Status:        apt.Status,
		ClientName:    apt.ClientName,
		ClientEmail:   apt.ClientEmail,
		ChangedBy:     changedBy,
		At:            time.Now(),
	}
	if apt.IsGiftCard {
		payload.Date = ""
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("appointment_id", apt.ID).Msg("publish event error")
	}
}

func (s *BookingService) invalidateDay(ctx context.Context, dateKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDay(ctx, dateKey); err != nil {
		s.logger.Error().Err(err).Str("date", dateKey).Msg("schedule cache invalidate error")
	}
}
