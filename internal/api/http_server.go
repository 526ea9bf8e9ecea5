package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eclat/internal/config"
	"eclat/internal/database"
	"eclat/internal/export"
	"eclat/internal/models"
	"eclat/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the public booking API and the admin surface. Admin
// routes live under /api/v1/admin/ and go through API-key auth; public routes
// are only rate limited.
type HTTPServer struct {
	cfg       *config.Config
	booking   *service.BookingService
	closures  *service.ClosureService
	giftCards *service.GiftCardService
	clients   *service.ClientService
	exporter  *export.AgendaExporter
	server    *http.Server
	auth      *Auth
	logger    *zerolog.Logger
}

func NewHTTPServer(
	cfg *config.Config,
	booking *service.BookingService,
	closures *service.ClosureService,
	giftCards *service.GiftCardService,
	clients *service.ClientService,
	exporter *export.AgendaExporter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:       cfg,
		booking:   booking,
		closures:  closures,
		giftCards: giftCards,
		clients:   clients,
		exporter:  exporter,
		logger:    logger,
	}
	srv.auth = NewAuth(cfg.Auth)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/services", srv.handleServices)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/appointments", srv.handleAppointments)
	mux.HandleFunc("/api/v1/appointments/", srv.handleAppointmentByReference)
	mux.HandleFunc("/api/v1/giftcards", srv.handleGiftCardPurchase)

	admin := http.NewServeMux()
	admin.HandleFunc("/api/v1/admin/appointments", srv.handleAdminAppointments)
	admin.HandleFunc("/api/v1/admin/appointments/", srv.handleAdminAppointmentAction)
	admin.HandleFunc("/api/v1/admin/closures", srv.handleAdminClosures)
	admin.HandleFunc("/api/v1/admin/closures/", srv.handleAdminClosureDelete)
	admin.HandleFunc("/api/v1/admin/clients", srv.handleAdminClients)
	admin.HandleFunc("/api/v1/admin/clients/", srv.handleAdminClientByID)
	admin.HandleFunc("/api/v1/admin/giftcards", srv.handleAdminGiftCards)
	admin.HandleFunc("/api/v1/admin/giftcards/redeem", srv.handleAdminGiftCardRedeem)
	admin.HandleFunc("/api/v1/admin/export", srv.handleAdminExport)
	mux.Handle("/api/v1/admin/", srv.auth.Wrap(admin))

	handler := srv.loggingMiddleware(srv.auth.RateLimit(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": s.cfg.Booking.Services})
}

// handleAvailability serves the day schedule. With service_id the available
// list is narrowed to slots where that treatment actually fits.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	var (
		day *models.DaySchedule
		err error
	)
	if serviceID := strings.TrimSpace(r.URL.Query().Get("service_id")); serviceID != "" {
		day, err = s.booking.GetDayScheduleFor(r.Context(), date, serviceID)
	} else {
		day, err = s.booking.GetDaySchedule(r.Context(), date)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, day)
}

type createAppointmentRequest struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	Note        string `json:"note"`
}

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var body createAppointmentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	if body.ClientName == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "client_name is required")
		return
	}
	if body.StartTime == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "start_time is required")
		return
	}

	date, err := time.ParseInLocation(models.DateLayout, body.Date, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "invalid date format; expected YYYY-MM-DD")
		return
	}

	apt := &models.Appointment{
		Date:        date,
		StartTime:   body.StartTime,
		ServiceID:   body.ServiceID,
		ServiceName: body.ServiceName,
		ClientName:  body.ClientName,
		ClientEmail: body.ClientEmail,
		ClientPhone: body.ClientPhone,
		Note:        body.Note,
	}

	if err := s.booking.CreateAppointment(r.Context(), apt); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, apt)
}

// handleAppointmentByReference lets a client look up their own booking by the
// reference from the confirmation email.
func (s *HTTPServer) handleAppointmentByReference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	reference := strings.TrimPrefix(r.URL.Path, "/api/v1/appointments/")
	if reference == "" || strings.Contains(reference, "/") {
		writeError(w, http.StatusBadRequest, "missing_field", "reference is required")
		return
	}

	apt, err := s.booking.GetAppointmentByReference(r.Context(), reference)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

type purchaseGiftCardRequest struct {
	AmountCents    int64  `json:"amount_cents"`
	PurchaserName  string `json:"purchaser_name"`
	PurchaserEmail string `json:"purchaser_email"`
	RecipientName  string `json:"recipient_name"`
	Message        string `json:"message"`
}

func (s *HTTPServer) handleGiftCardPurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var body purchaseGiftCardRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	if body.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount_cents must be positive")
		return
	}
	if body.PurchaserName == "" || body.PurchaserEmail == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "purchaser_name and purchaser_email are required")
		return
	}

	card := &models.GiftCard{
		AmountCents:    body.AmountCents,
		PurchaserName:  body.PurchaserName,
		PurchaserEmail: body.PurchaserEmail,
		RecipientName:  body.RecipientName,
		Message:        body.Message,
	}
	if err := s.giftCards.PurchaseGiftCard(r.Context(), card); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// writeServiceError maps domain errors to the wire taxonomy. Closed dates and
// taken slots are distinct so the frontend can explain which one happened.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", "the requested slot is no longer available")
	case errors.Is(err, database.ErrClosedDate):
		writeError(w, http.StatusBadRequest, "salon_closed", "the salon is closed on this date")
	case errors.Is(err, database.ErrPastDate):
		writeError(w, http.StatusBadRequest, "past_date", "the date is in the past")
	case errors.Is(err, database.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, "date_too_far", "the date is too far in the future")
	case errors.Is(err, database.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, "invalid_slot", "start_time is not a bookable slot")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, database.ErrAlreadyRedeemed):
		writeError(w, http.StatusConflict, "already_redeemed", "gift card was already redeemed")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "version_conflict", "record was modified concurrently")
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing_field", name+" is required")
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(models.DateLayout, raw, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "invalid date format; expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]string{"error": code, "message": message})
}
