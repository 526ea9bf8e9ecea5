package database

import (
	"context"
	"fmt"
	"time"

	"eclat/internal/models"
)

// CreateClosure stores a closure period. An end date before the start date is
// clamped to the start date: an idempotent correction, not an error.
func (db *DB) CreateClosure(ctx context.Context, closure *models.Closure) error {
	if closure.EndDate.Before(closure.StartDate) {
		closure.EndDate = closure.StartDate
	}

	query := `INSERT INTO closures (start_date, end_date, label, created_at) VALUES (?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		closure.StartDate.Format(models.DateLayout),
		closure.EndDate.Format(models.DateLayout),
		closure.Label,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create closure: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	closure.ID = id
	closure.CreatedAt = now
	return nil
}

func (db *DB) GetClosures(ctx context.Context) ([]*models.Closure, error) {
	query := `SELECT id, start_date, end_date, label, created_at FROM closures ORDER BY start_date ASC`
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get closures: %w", err)
	}
	defer rows.Close()

	var closures []*models.Closure
	for rows.Next() {
		c := &models.Closure{}
		var startStr, endStr string
		if err := rows.Scan(&c.ID, &startStr, &endStr, &c.Label, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan closure: %w", err)
		}
		c.StartDate, err = time.ParseInLocation(models.DateLayout, startStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse closure start %s: %w", startStr, err)
		}
		c.EndDate, err = time.ParseInLocation(models.DateLayout, endStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse closure end %s: %w", endStr, err)
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

func (db *DB) DeleteClosure(ctx context.Context, id int64) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM closures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete closure: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// IsDateClosed is the closure gate: dates inside any closure period accept no
// bookings regardless of slot availability.
func (db *DB) IsDateClosed(ctx context.Context, date time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM closures WHERE ? BETWEEN start_date AND end_date`
	var count int
	err := db.db.QueryRowContext(ctx, query, date.Format(models.DateLayout)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check closures: %w", err)
	}
	return count > 0, nil
}
