package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eclat",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eclat",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eclat",
			Name:      "bookings_created_total",
			Help:      "Appointments successfully booked.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eclat",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eclat",
			Name:      "reminders_sent_total",
			Help:      "Reminder emails sent.",
		},
	)

	reminderFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eclat",
			Name:      "reminder_failures_total",
			Help:      "Reminder emails that failed to send.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingsCreated,
			bookingConflicts,
			remindersSent,
			reminderFailures,
		)
	})
}

// IncHTTP increments the request counter for an endpoint and status class.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// ObserveHTTPDuration records request latency in seconds for an endpoint.
func ObserveHTTPDuration(endpoint string, seconds float64) {
	httpDuration.WithLabelValues(endpoint).Observe(seconds)
}

// IncBookingCreated counts a successful booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingConflict counts a booking rejected on a taken slot.
func IncBookingConflict() {
	bookingConflicts.Inc()
}

// IncReminderSent counts a delivered reminder email.
func IncReminderSent() {
	remindersSent.Inc()
}

// IncReminderFailure counts a reminder email delivery failure.
func IncReminderFailure() {
	reminderFailures.Inc()
}
