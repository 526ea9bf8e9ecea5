package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eclat/internal/models"
)

func (s *HTTPServer) handleAdminAppointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAdminAppointments(w, r)
	case http.MethodPost:
		s.createAdminAppointment(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *HTTPServer) listAdminAppointments(w http.ResponseWriter, r *http.Request) {
	start, ok := parseDateParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := parseDateParam(w, r, "end")
	if !ok {
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "invalid_range", "end must not be before start")
		return
	}

	appointments, err := s.booking.GetAppointmentsByDateRange(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if appointments == nil {
		appointments = []*models.Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

// createAdminAppointment places a booking from the back office, for walk-ins
// and phone bookings. Same availability contract as the public endpoint; the
// entry starts confirmed.
func (s *HTTPServer) createAdminAppointment(w http.ResponseWriter, r *http.Request) {
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
	if err := s.booking.CreateAppointmentByAdmin(r.Context(), apt); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, apt)
}

type statusChangeRequest struct {
	Version int64 `json:"version"`
}

// handleAdminAppointmentAction dispatches /{id}/confirm, /{id}/cancel and
// /{id}/complete. The request carries the version last seen by the admin UI;
// a stale version is a conflict, not a silent overwrite.
func (s *HTTPServer) handleAdminAppointmentAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/appointments/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not_found", "not found")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid appointment id")
		return
	}

	var body statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if body.Version <= 0 {
		writeError(w, http.StatusBadRequest, "missing_field", "version is required")
		return
	}

	switch parts[1] {
	case "confirm":
		err = s.booking.ConfirmAppointment(r.Context(), id, body.Version)
	case "cancel":
		err = s.booking.CancelAppointment(r.Context(), id, body.Version)
	case "complete":
		err = s.booking.CompleteAppointment(r.Context(), id, body.Version)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown action")
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	apt, err := s.booking.GetAppointment(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

type createClosureRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Label     string `json:"label"`
}

func (s *HTTPServer) handleAdminClosures(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		closures, err := s.closures.GetClosures(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if closures == nil {
			closures = []*models.Closure{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"closures": closures})

	case http.MethodPost:
		var body createClosureRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
			return
		}

		start, err := time.ParseInLocation(models.DateLayout, body.StartDate, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "invalid start_date; expected YYYY-MM-DD")
			return
		}
		end := start
		if body.EndDate != "" {
			end, err = time.ParseInLocation(models.DateLayout, body.EndDate, time.Local)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "invalid end_date; expected YYYY-MM-DD")
				return
			}
		}

		closure := &models.Closure{StartDate: start, EndDate: end, Label: body.Label}
		if err := s.closures.CreateClosure(r.Context(), closure); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, closure)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *HTTPServer) handleAdminClosureDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	rawID := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/closures/")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid closure id")
		return
	}

	if err := s.closures.DeleteClosure(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleAdminClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	clients, err := s.clients.GetClients(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if clients == nil {
		clients = []*models.Client{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// handleAdminClientByID serves /{id} and /{id}/appointments.
func (s *HTTPServer) handleAdminClientByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/clients/")
	parts := strings.Split(rest, "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid client id")
		return
	}

	client, err := s.clients.GetClient(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	switch {
	case len(parts) == 1:
		writeJSON(w, http.StatusOK, client)
	case len(parts) == 2 && parts[1] == "appointments":
		appointments, err := s.clients.GetClientAppointments(r.Context(), client.Email)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if appointments == nil {
			appointments = []*models.Appointment{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
	default:
		writeError(w, http.StatusNotFound, "not_found", "not found")
	}
}

func (s *HTTPServer) handleAdminGiftCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	cards, err := s.giftCards.GetGiftCards(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if cards == nil {
		cards = []*models.GiftCard{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"gift_cards": cards})
}

type redeemGiftCardRequest struct {
	Code string `json:"code"`
}

func (s *HTTPServer) handleAdminGiftCardRedeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var body redeemGiftCardRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Code) == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "code is required")
		return
	}

	card, err := s.giftCards.RedeemGiftCard(r.Context(), strings.TrimSpace(body.Code))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// handleAdminExport streams the agenda workbook for a date range.
func (s *HTTPServer) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	start, ok := parseDateParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := parseDateParam(w, r, "end")
	if !ok {
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "invalid_range", "end must not be before start")
		return
	}

	fileName := "agenda_" + start.Format(models.DateLayout) + "_" + end.Format(models.DateLayout) + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)

	if err := s.exporter.WriteAgenda(r.Context(), w, start, end); err != nil {
		s.logger.Error().Err(err).Msg("agenda export error")
	}
}
