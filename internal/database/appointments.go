package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eclat/internal/models"
	"eclat/internal/schedule"
)

const appointmentColumns = `id, reference, date, start_time, service_id, service_name,
                 status, is_gift_card, client_name, client_email, client_phone,
                 note, created_at, updated_at, version`

func scanAppointment(row interface{ Scan(...any) error }) (*models.Appointment, error) {
	apt := &models.Appointment{}
	var dateStr, startTime, serviceID, serviceName, phone, note sql.NullString
	err := row.Scan(
		&apt.ID, &apt.Reference, &dateStr, &startTime, &serviceID, &serviceName,
		&apt.Status, &apt.IsGiftCard, &apt.ClientName, &apt.ClientEmail, &phone,
		&note, &apt.CreatedAt, &apt.UpdatedAt, &apt.Version,
	)
	if err != nil {
		return nil, err
	}

	apt.StartTime = startTime.String
	apt.ServiceID = serviceID.String
	apt.ServiceName = serviceName.String
	apt.ClientPhone = phone.String
	apt.Note = note.String

	if dateStr.Valid && dateStr.String != "" {
		apt.Date, err = time.ParseInLocation(models.DateLayout, dateStr.String, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr.String, err)
		}
	}
	return apt, nil
}

// dateParam stores gift-card records with a NULL date so they never join a
// day's schedule.
func dateParam(apt *models.Appointment) any {
	if apt.IsGiftCard {
		return nil
	}
	return apt.Date.Format(models.DateLayout)
}

func startTimeParam(apt *models.Appointment) any {
	if apt.IsGiftCard {
		return nil
	}
	return apt.StartTime
}

// CreateAppointment inserts without any availability check. Used for gift-card
// records and by tests; the booking path goes through CreateAppointmentWithLock.
func (db *DB) CreateAppointment(ctx context.Context, apt *models.Appointment) error {
	query := `INSERT INTO appointments (
				reference, date, start_time, service_id, service_name, status,
				is_gift_card, client_name, client_email, client_phone, note,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		apt.Reference,
		dateParam(apt),
		startTimeParam(apt),
		apt.ServiceID,
		apt.ServiceName,
		apt.Status,
		apt.IsGiftCard,
		apt.ClientName,
		apt.ClientEmail,
		apt.ClientPhone,
		apt.Note,
		now,
		now,
		1,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	apt.ID = id
	apt.CreatedAt = now
	apt.UpdatedAt = now
	apt.Version = 1
	return nil
}

// CreateAppointmentWithLock re-verifies the closure gate and slot availability
// inside the insert transaction, so "recheck then insert" is atomic relative to
// other writers on the same date. The active-slot unique index backs it up if
// two transactions still interleave.
func (db *DB) CreateAppointmentWithLock(ctx context.Context, apt *models.Appointment) error {
	if db.engine == nil {
		return fmt.Errorf("availability engine is not configured")
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	dateStr := apt.Date.Format(models.DateLayout)

	// 1. Closure gate inside the transaction.
	var closedCount int
	queryClosed := `SELECT COUNT(*) FROM closures WHERE ? BETWEEN start_date AND end_date`
	if err := tx.QueryRowContext(ctx, queryClosed, dateStr).Scan(&closedCount); err != nil {
		return fmt.Errorf("failed to check closures in tx: %w", err)
	}
	if closedCount > 0 {
		return ErrClosedDate
	}

	// 2. Availability recheck over the same-day snapshot.
	queryDay := `SELECT start_time, service_id, service_name FROM appointments
              WHERE date = ? AND status != ? AND is_gift_card = 0`
	rows, err := tx.QueryContext(ctx, queryDay, dateStr, models.StatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to fetch same-day appointments in tx: %w", err)
	}

	var existing []schedule.Existing
	for rows.Next() {
		var e schedule.Existing
		var startTime, serviceID, serviceName sql.NullString
		if err := rows.Scan(&startTime, &serviceID, &serviceName); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan same-day appointment: %w", err)
		}
		e.StartTime = startTime.String
		e.ServiceID = serviceID.String
		e.ServiceName = serviceName.String
		existing = append(existing, e)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to read same-day appointments: %w", err)
	}

	if !db.engine.IsSlotAvailable(apt.StartTime, apt.ServiceID, apt.ServiceName, existing) {
		return ErrSlotTaken
	}

	// 3. Insert.
	queryInsert := `INSERT INTO appointments (
				reference, date, start_time, service_id, service_name, status,
				is_gift_card, client_name, client_email, client_phone, note,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, 1)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		apt.Reference,
		dateStr,
		apt.StartTime,
		apt.ServiceID,
		apt.ServiceName,
		apt.Status,
		apt.ClientName,
		apt.ClientEmail,
		apt.ClientPhone,
		apt.Note,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert appointment in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	apt.ID = id
	apt.CreatedAt = now
	apt.UpdatedAt = now
	apt.Version = 1

	return tx.Commit()
}

func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	apt, err := scanAppointment(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (db *DB) GetAppointmentByReference(ctx context.Context, reference string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE reference = ?`
	apt, err := scanAppointment(db.db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment by reference: %w", err)
	}
	return apt, nil
}

// GetAppointmentsOnDate returns the records that occupy slots on a date:
// non-cancelled, non-gift-card. This is the engine's input snapshot.
func (db *DB) GetAppointmentsOnDate(ctx context.Context, date time.Time) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
              WHERE date = ? AND status != ? AND is_gift_card = 0
              ORDER BY start_time ASC`
	return db.queryAppointments(ctx, query, date.Format(models.DateLayout), models.StatusCancelled)
}

// GetAppointmentsByDateRange returns every appointment in [start, end],
// cancelled included, for the admin agenda.
func (db *DB) GetAppointmentsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
              WHERE date >= ? AND date <= ? AND is_gift_card = 0
              ORDER BY date ASC, start_time ASC`
	return db.queryAppointments(ctx, query,
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
}

// GetAppointmentsForReminder returns appointments on a date that should receive
// a reminder email.
func (db *DB) GetAppointmentsForReminder(ctx context.Context, date time.Time) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
              WHERE date = ? AND status IN (?, ?) AND is_gift_card = 0 AND client_email != ''
              ORDER BY start_time ASC`
	return db.queryAppointments(ctx, query,
		date.Format(models.DateLayout), models.StatusPending, models.StatusConfirmed)
}

func (db *DB) queryAppointments(ctx context.Context, query string, args ...any) ([]*models.Appointment, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		apt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, apt)
	}
	return appointments, rows.Err()
}

func (db *DB) UpdateAppointmentStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateAppointmentStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE appointments SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := db.db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}
