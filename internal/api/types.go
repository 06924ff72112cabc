package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/carepath/scheduling/internal/appointment"
	"github.com/carepath/scheduling/internal/schedule"
)

type CreateAppointmentRequest struct {
	DoctorID       string  `json:"doctor_id"`
	SlotStartTime  string  `json:"slot_start_time"` // RFC 3339
	ReasonForVisit *string `json:"reason_for_visit,omitempty"`
}

type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	SlotStartTime  time.Time `json:"slot_start_time"`
	SlotEndTime    time.Time `json:"slot_end_time"`
	ReasonForVisit *string   `json:"reason_for_visit,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	Outcome        string    `json:"outcome,omitempty"` // "created" or "re-booked"
}

func toAppointmentResponse(a *appointment.Appointment, outcome appointment.BookingOutcome) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		DoctorID:       a.DoctorID,
		PatientID:      a.PatientID,
		SlotStartTime:  a.SlotStartTime,
		SlotEndTime:    a.SlotEndTime,
		ReasonForVisit: a.ReasonForVisit,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
		Outcome:        string(outcome),
	}
}

type UserAppointmentResponse struct {
	AppointmentResponse
	CounterpartyID   uuid.UUID `json:"counterparty_id"`
	CounterpartyName string    `json:"counterparty_name"`
	ViewerRole       string    `json:"viewer_role"`
}

type UpdateScheduleRequest struct {
	SlotDurationMinutes int                         `json:"slot_duration_minutes"`
	WeeklyAvailability  schedule.WeeklyAvailability `json:"weekly_availability"`
	UnavailableDates    []string                    `json:"unavailable_dates"`
	BookingHorizonDays  int                         `json:"booking_horizon_days"`
	LeadTimeHours       int                         `json:"lead_time_hours"`
}

type ScheduleResponse struct {
	SlotDurationMinutes int                         `json:"slot_duration_minutes"`
	WeeklyAvailability  schedule.WeeklyAvailability `json:"weekly_availability"`
	UnavailableDates    []string                    `json:"unavailable_dates"`
	BookingHorizonDays  int                         `json:"booking_horizon_days"`
	LeadTimeHours       int                         `json:"lead_time_hours"`
}

// ScheduleConflictResponse is the 409 body for a rejected schedule change.
// ChangeToken lets the doctor apply the same proposal after cancelling the
// listed appointments, without resubmitting the payload.
type ScheduleConflictResponse struct {
	Conflict               bool                           `json:"conflict"`
	Message                string                         `json:"message"`
	ConflictedAppointments []schedule.UpcomingAppointment `json:"conflicted_appointments"`
	ChangeToken            string                         `json:"change_token"`
}

type AvailableDaysResponse struct {
	Days []string `json:"days"`
}

type BookedSlotsResponse struct {
	Booked []time.Time `json:"booked"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
