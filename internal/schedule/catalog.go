package schedule

import (
	"fmt"
	"strings"

	"eclat/internal/models"
)

// Catalog resolves services to treatment durations. Lookup is by stable service
// ID with duration as a first-class field; the legacy token scan over free-text
// labels remains as a fallback so older payloads keep resolving the same way.
type Catalog struct {
	byID     map[string]models.Service
	services []models.Service
}

func NewCatalog(services []models.Service) (*Catalog, error) {
	byID := make(map[string]models.Service, len(services))
	for _, svc := range services {
		if svc.ID == "" {
			return nil, fmt.Errorf("service %q has empty id", svc.Label)
		}
		if _, dup := byID[svc.ID]; dup {
			return nil, fmt.Errorf("duplicate service id: %s", svc.ID)
		}
		if svc.DurationMinutes < 0 {
			return nil, fmt.Errorf("service %s has negative duration", svc.ID)
		}
		byID[svc.ID] = svc
	}
	return &Catalog{byID: byID, services: services}, nil
}

// Services returns catalog entries in configuration order.
func (c *Catalog) Services() []models.Service {
	return c.services
}

// Get looks up a service by ID.
func (c *Catalog) Get(id string) (models.Service, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// ResolveDuration returns the treatment duration in minutes for a service. The
// ID lookup wins when it matches; otherwise the label is scanned for duration
// tokens. Always returns a value, never errors.
func (c *Catalog) ResolveDuration(serviceID, label string) int {
	if svc, ok := c.byID[serviceID]; ok && svc.DurationMinutes > 0 {
		return svc.DurationMinutes
	}
	return ResolveLabelDuration(label)
}

// ResolveLabelDuration scans a human-readable service label for one of the
// known duration tokens. Unrecognized or empty labels fall back to the default
// of 60 minutes, matching long-standing booking behavior.
func ResolveLabelDuration(label string) int {
	switch {
	case strings.Contains(label, "45min"):
		return 45
	case strings.Contains(label, "60min"):
		return 60
	case strings.Contains(label, "90min"):
		return 90
	default:
		return models.DefaultDurationMinutes
	}
}
