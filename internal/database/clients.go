package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eclat/internal/models"
)

// UpsertClient records or refreshes a client by email. Called after every
// successful booking so the admin registry stays current without a separate
// registration step.
func (db *DB) UpsertClient(ctx context.Context, client *models.Client) error {
	query := `INSERT INTO clients (name, email, phone, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(email) DO UPDATE SET
                name = excluded.name,
                phone = CASE WHEN excluded.phone != '' THEN excluded.phone ELSE clients.phone END,
                updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.db.ExecContext(ctx, query, client.Name, client.Email, client.Phone, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}
	return nil
}

func (db *DB) GetClients(ctx context.Context) ([]*models.Client, error) {
	query := `SELECT id, name, email, phone, note, created_at, updated_at FROM clients ORDER BY name ASC`
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c := &models.Client{}
		var phone, note sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &phone, &note, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.Phone = phone.String
		c.Note = note.String
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (db *DB) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	query := `SELECT id, name, email, phone, note, created_at, updated_at FROM clients WHERE id = ?`
	c := &models.Client{}
	var phone, note sql.NullString
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &phone, &note, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	c.Phone = phone.String
	c.Note = note.String
	return c, nil
}

// GetClientAppointments returns a client's booking history, newest first.
func (db *DB) GetClientAppointments(ctx context.Context, email string) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
              WHERE client_email = ? AND is_gift_card = 0
              ORDER BY date DESC, start_time DESC`
	return db.queryAppointments(ctx, query, email)
}
