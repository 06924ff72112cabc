package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

// Status values are stored verbatim; the cancelled variants record which
// party pulled out.
const (
	StatusScheduled          Status = "Scheduled"
	StatusCompleted          Status = "Completed"
	StatusCancelledByPatient Status = "Cancelled by Patient"
	StatusCancelledByDoctor  Status = "Cancelled by Doctor"
	StatusNoShow             Status = "No Show"
)

// IsCancelled reports whether s is one of the cancelled variants.
func (s Status) IsCancelled() bool {
	return s == StatusCancelledByPatient || s == StatusCancelledByDoctor
}

type Appointment struct {
	ID             uuid.UUID
	DoctorID       uuid.UUID
	PatientID      uuid.UUID
	SlotStartTime  time.Time
	SlotEndTime    time.Time
	ReasonForVisit *string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserAppointment is an appointment joined with the counterparty's display
// info, as shown on the appointments page. The counterparty is the doctor
// when the viewer is the patient, and vice versa.
type UserAppointment struct {
	Appointment
	CounterpartyID   uuid.UUID
	CounterpartyName string
	ViewerRole       string // "patient" or "doctor"
}
