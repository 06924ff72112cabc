package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("this time slot was just booked, please select another")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// GetCancelledForSlot finds a cancelled appointment row for the exact
	// (doctor, start time) pair, the candidate for re-booking.
	GetCancelledForSlot(ctx context.Context, doctorID uuid.UUID, slotStart time.Time) (*Appointment, error)

	// Rebook recycles a cancelled row in place: new patient, Scheduled
	// status, new reason, refreshed created_at.
	Rebook(ctx context.Context, id, patientID uuid.UUID, reason *string) (*Appointment, error)

	// Insert creates a new Scheduled appointment. A uniqueness violation on
	// the active-slot index surfaces as ErrSlotTaken.
	Insert(ctx context.Context, appt *Appointment) (*Appointment, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	// ListForUser returns every appointment, any status, where the user is
	// the patient or the doctor, joined with counterparty names.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]UserAppointment, error)

	// BookedStartTimes returns start instants of non-cancelled appointments
	// for the doctor within [dayStart, dayEnd].
	BookedStartTimes(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]time.Time, error)

	// FindOverdueScheduled returns Scheduled appointments whose end time
	// passed before the cutoff, candidates for the no-show sweep.
	FindOverdueScheduled(ctx context.Context, cutoff time.Time) ([]Appointment, error)
}
