package service

import (
	"context"

	"eclat/internal/domain"
	"eclat/internal/models"
)

// ClientService exposes the client directory to the admin surface. Records are
// created implicitly by bookings; there is no public client signup.
type ClientService struct {
	store domain.Store
}

func NewClientService(store domain.Store) *ClientService {
	return &ClientService{store: store}
}

func (s *ClientService) GetClients(ctx context.Context) ([]*models.Client, error) {
	return s.store.GetClients(ctx)
}

func (s *ClientService) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	return s.store.GetClient(ctx, id)
}

func (s *ClientService) GetClientAppointments(ctx context.Context, email string) ([]*models.Appointment, error) {
	return s.store.GetClientAppointments(ctx, email)
}

func (s *ClientService) UpsertClient(ctx context.Context, client *models.Client) error {
	return s.store.UpsertClient(ctx, client)
}
