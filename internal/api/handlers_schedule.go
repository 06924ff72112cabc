package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carepath/scheduling/internal/schedule"
)

func getScheduleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := doctorIDParam(w, r)
		if !ok {
			return
		}

		sched, err := svc.GetSchedule(r.Context(), doctorID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ScheduleResponse{
			SlotDurationMinutes: sched.SlotDurationMinutes,
			WeeklyAvailability:  sched.WeeklyAvailability,
			UnavailableDates:    sched.UnavailableDates,
			BookingHorizonDays:  sched.BookingHorizonDays,
			LeadTimeHours:       sched.LeadTimeHours,
		})
	}
}

func updateScheduleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())

		var req UpdateScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		proposed := &schedule.DoctorSchedule{
			SlotDurationMinutes: req.SlotDurationMinutes,
			WeeklyAvailability:  req.WeeklyAvailability,
			UnavailableDates:    req.UnavailableDates,
			BookingHorizonDays:  req.BookingHorizonDays,
			LeadTimeHours:       req.LeadTimeHours,
		}

		if err := svc.ProposeUpdate(r.Context(), p.ID, proposed); err != nil {
			handleScheduleUpdateError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Schedule updated successfully.",
		})
	}
}

func applyScheduleChangeHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())
		token := chi.URLParam(r, "token")

		if err := svc.ApplyPendingChange(r.Context(), p.ID, token); err != nil {
			handleScheduleUpdateError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Schedule updated successfully.",
		})
	}
}

func availableDaysHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := doctorIDParam(w, r)
		if !ok {
			return
		}

		days, err := svc.AvailableDays(r.Context(), doctorID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		if days == nil {
			days = []string{}
		}

		writeJSON(w, http.StatusOK, AvailableDaysResponse{Days: days})
	}
}

func daySlotsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := doctorIDParam(w, r)
		if !ok {
			return
		}

		date, err := time.ParseInLocation(schedule.DateLayout, r.URL.Query().Get("date"), time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		day, err := svc.DaySlots(r.Context(), doctorID, date)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, day)
	}
}

func doctorIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "schedule_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal server error occurred")
	}
}

func handleScheduleUpdateError(w http.ResponseWriter, err error) {
	var conflict *schedule.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, ScheduleConflictResponse{
			Conflict:               true,
			Message:                conflict.Error(),
			ConflictedAppointments: conflict.Appointments,
			ChangeToken:            conflict.ChangeToken,
		})
	case errors.Is(err, schedule.ErrInvalidSlotDuration),
		errors.Is(err, schedule.ErrInvalidSchedule):
		writeError(w, http.StatusBadRequest, "invalid_schedule", err.Error())
	case errors.Is(err, schedule.ErrChangeNotFound):
		writeError(w, http.StatusNotFound, "change_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal server error occurred")
	}
}
