package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrNotParticipant = errors.New("caller is not a party to this appointment")

// InvalidStateError is returned when an action is not permitted for the
// appointment's current status, e.g. cancelling a completed visit.
type InvalidStateError struct {
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot cancel an appointment with status: %s", e.Status)
}

// BookingOutcome distinguishes a fresh insert from a recycled cancelled row.
type BookingOutcome string

const (
	OutcomeCreated  BookingOutcome = "created"
	OutcomeRebooked BookingOutcome = "re-booked"
)

// ScheduleSource is how the booking service reads the doctor's booking
// rules. Implemented by the schedule service.
type ScheduleSource interface {
	SlotDuration(ctx context.Context, doctorID uuid.UUID) (int, error)
}

// Service implements booking, cancellation, and the appointment listings.
type Service struct {
	repo      Repository
	schedules ScheduleSource
	log       zerolog.Logger

	now func() time.Time
}

func NewService(repo Repository, schedules ScheduleSource, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		schedules: schedules,
		log:       log.With().Str("component", "appointment").Logger(),
		now:       time.Now,
	}
}

// Book reserves a slot for a patient. If a cancelled appointment already
// exists for the exact (doctor, start time), that row is re-activated in
// place so one canonical row tracks a slot across its cancellation history.
// Otherwise a new Scheduled row is inserted; losing the insert race to a
// concurrent booking surfaces as ErrSlotTaken. The storage-level uniqueness
// constraint is the only admission control, there is no locking here.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, slotStart time.Time, reason *string) (*Appointment, BookingOutcome, error) {
	cancelled, err := s.repo.GetCancelledForSlot(ctx, doctorID, slotStart)
	if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
		return nil, "", fmt.Errorf("check cancelled slot: %w", err)
	}

	if cancelled != nil {
		appt, err := s.repo.Rebook(ctx, cancelled.ID, patientID, reason)
		if err != nil {
			return nil, "", fmt.Errorf("re-book cancelled slot: %w", err)
		}
		s.log.Info().Stringer("appointment_id", appt.ID).
			Stringer("doctor_id", doctorID).
			Time("slot_start", slotStart).
			Msg("cancelled slot re-booked")
		return appt, OutcomeRebooked, nil
	}

	duration, err := s.schedules.SlotDuration(ctx, doctorID)
	if err != nil {
		return nil, "", err
	}

	appt, err := s.repo.Insert(ctx, &Appointment{
		DoctorID:       doctorID,
		PatientID:      patientID,
		SlotStartTime:  slotStart,
		SlotEndTime:    slotStart.Add(time.Duration(duration) * time.Minute),
		ReasonForVisit: reason,
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("insert appointment: %w", err)
	}

	s.log.Info().Stringer("appointment_id", appt.ID).
		Stringer("doctor_id", doctorID).
		Time("slot_start", slotStart).
		Msg("appointment created")
	return appt, OutcomeCreated, nil
}

// Cancel moves a Scheduled appointment to the cancelled variant matching the
// caller's role on it. Only the patient or the doctor on the record may
// cancel, and only while it is still Scheduled.
func (s *Service) Cancel(ctx context.Context, callerID, appointmentID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	isPatient := appt.PatientID == callerID
	isDoctor := appt.DoctorID == callerID
	if !isPatient && !isDoctor {
		return nil, ErrNotParticipant
	}

	if appt.Status != StatusScheduled {
		return nil, &InvalidStateError{Status: appt.Status}
	}

	to := StatusCancelledByDoctor
	if isPatient {
		to = StatusCancelledByPatient
	}

	updated, err := s.repo.UpdateStatus(ctx, appt.ID, StatusScheduled, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Status changed under us between the read and the update.
			return nil, &InvalidStateError{Status: appt.Status}
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.log.Info().Stringer("appointment_id", updated.ID).
		Str("status", string(updated.Status)).
		Msg("appointment cancelled")
	return updated, nil
}

// ListForUser returns every appointment where the caller is either party,
// newest slot first, with counterparty display info.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]UserAppointment, error) {
	appts, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list appointments for user: %w", err)
	}
	return appts, nil
}

// BookedStartTimes returns the booked (non-cancelled) start instants for a
// doctor's day, for the booking page.
func (s *Service) BookedStartTimes(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]time.Time, error) {
	times, err := s.repo.BookedStartTimes(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	return times, nil
}

// MarkOverdueNoShows is called periodically by the sweep worker. Scheduled
// appointments whose end time passed more than grace ago move to No Show.
func (s *Service) MarkOverdueNoShows(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := s.now().Add(-grace)
	overdue, err := s.repo.FindOverdueScheduled(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find overdue appointments: %w", err)
	}

	swept := 0
	for _, appt := range overdue {
		_, err := s.repo.UpdateStatus(ctx, appt.ID, StatusScheduled, StatusNoShow)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				continue // cancelled or completed since the query
			}
			s.log.Error().Err(err).Stringer("appointment_id", appt.ID).Msg("no-show sweep update failed")
			continue
		}
		swept++
	}

	if swept > 0 {
		s.log.Info().Int("count", swept).Msg("overdue appointments marked as no-show")
	}
	return swept, nil
}
