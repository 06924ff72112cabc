package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carepath/scheduling/internal/appointment"
	"github.com/carepath/scheduling/internal/schedule"
)

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		slotStart, err := time.Parse(time.RFC3339, req.SlotStartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_start_time", "slot_start_time must be RFC 3339")
			return
		}

		appt, outcome, err := svc.Book(r.Context(), p.ID, doctorID, slotStart, req.ReasonForVisit)
		if err != nil {
			handleBookError(w, err)
			return
		}

		status := http.StatusCreated
		if outcome == appointment.OutcomeRebooked {
			status = http.StatusOK
		}
		writeJSON(w, status, toAppointmentResponse(appt, outcome))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Cancel(r.Context(), p.ID, id)
		if err != nil {
			handleCancelError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt, ""))
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())

		appts, err := svc.ListForUser(r.Context(), p.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "an internal server error occurred")
			return
		}

		resp := make([]UserAppointmentResponse, 0, len(appts))
		for i := range appts {
			resp = append(resp, UserAppointmentResponse{
				AppointmentResponse: toAppointmentResponse(&appts[i].Appointment, ""),
				CounterpartyID:      appts[i].CounterpartyID,
				CounterpartyName:    appts[i].CounterpartyName,
				ViewerRole:          appts[i].ViewerRole,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func bookedSlotsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := doctorIDParam(w, r)
		if !ok {
			return
		}

		day, err := time.ParseInLocation(schedule.DateLayout, r.URL.Query().Get("date"), time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		dayEnd := day.Add(24*time.Hour - time.Nanosecond)

		booked, err := svc.BookedStartTimes(r.Context(), doctorID, day, dayEnd)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "could not fetch booked slots")
			return
		}
		if booked == nil {
			booked = []time.Time{}
		}

		writeJSON(w, http.StatusOK, BookedSlotsResponse{Booked: booked})
	}
}

func handleBookError(w http.ResponseWriter, err error) {
	var invalidState *appointment.InvalidStateError
	switch {
	case errors.Is(err, schedule.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "schedule_not_found", "could not find doctor schedule")
	case errors.Is(err, appointment.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.As(err, &invalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal server error occurred")
	}
}

func handleCancelError(w http.ResponseWriter, err error) {
	var invalidState *appointment.InvalidStateError
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "forbidden", "you are not authorized to cancel this appointment")
	case errors.As(err, &invalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal server error occurred")
	}
}
