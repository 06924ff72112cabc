package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrScheduleNotFound    = errors.New("no schedule configured for doctor")
	ErrInvalidSlotDuration = errors.New("slot duration must be a positive number of minutes")
	ErrInvalidSchedule     = errors.New("invalid schedule")
	ErrChangeNotFound      = errors.New("pending schedule change not found or expired")
)

// Repository contains the schedule store interactions needed by the service.
type Repository interface {
	GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*DoctorSchedule, error)
	// Upsert replaces the doctor's schedule document, inserting it on the
	// doctor's first write.
	Upsert(ctx context.Context, sched *DoctorSchedule) error
}

// UpcomingAppointment is the slice of an appointment the conflict detector
// needs: its identity and when it starts.
type UpcomingAppointment struct {
	ID        uuid.UUID `json:"id"`
	SlotStart time.Time `json:"slot_start_time"`
}

// AppointmentSource is how the schedule service sees the appointment store.
// Implemented by the appointment repository.
type AppointmentSource interface {
	// UpcomingScheduled returns the doctor's appointments in Scheduled
	// status starting at or after from.
	UpcomingScheduled(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]UpcomingAppointment, error)
	// BookedStartTimes returns start instants of non-cancelled appointments
	// for the doctor within [dayStart, dayEnd].
	BookedStartTimes(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]time.Time, error)
}

// Cache is a read-through schedule cache with explicit invalidation.
type Cache interface {
	Get(ctx context.Context, doctorID uuid.UUID) (*DoctorSchedule, error)
	Set(ctx context.Context, sched *DoctorSchedule) error
	Invalidate(ctx context.Context, doctorID uuid.UUID) error
}

// PendingChangeStore holds proposed schedules that were rejected with
// conflicts, keyed by an opaque token, so the doctor can confirm the same
// change later without resubmitting the payload.
type PendingChangeStore interface {
	Put(ctx context.Context, token string, sched *DoctorSchedule) error
	Get(ctx context.Context, token string) (*DoctorSchedule, error)
	Delete(ctx context.Context, token string) error
}
