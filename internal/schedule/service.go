package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service implements schedule reads, availability computation, and the
// two-phase schedule-change protocol.
type Service struct {
	repo    Repository
	appts   AppointmentSource
	cache   Cache
	pending PendingChangeStore
	log     zerolog.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewService(repo Repository, appts AppointmentSource, cache Cache, pending PendingChangeStore, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		appts:   appts,
		cache:   cache,
		pending: pending,
		log:     log.With().Str("component", "schedule").Logger(),
		now:     time.Now,
	}
}

// GetSchedule loads a doctor's schedule, read-through via the cache. Cache
// trouble never fails a read; the store is authoritative.
func (s *Service) GetSchedule(ctx context.Context, doctorID uuid.UUID) (*DoctorSchedule, error) {
	if s.cache != nil {
		if sched, err := s.cache.Get(ctx, doctorID); err != nil {
			s.log.Warn().Err(err).Stringer("doctor_id", doctorID).Msg("schedule cache read failed")
		} else if sched != nil {
			return sched, nil
		}
	}

	sched, err := s.repo.GetByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sched); err != nil {
			s.log.Warn().Err(err).Stringer("doctor_id", doctorID).Msg("schedule cache write failed")
		}
	}
	return sched, nil
}

// AvailableDays returns the bookable date strings inside the doctor's
// booking horizon, for calendar rendering.
func (s *Service) AvailableDays(ctx context.Context, doctorID uuid.UUID) ([]string, error) {
	sched, err := s.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return AvailableDays(sched, s.now()), nil
}

// DayAvailability is the slot view of a single day. Degraded means the
// booked-appointment lookup failed and the slots shown were computed as if
// the day were fully free; callers should treat the list as unreliable.
type DayAvailability struct {
	Date     string       `json:"date"`
	Slots    GroupedSlots `json:"slots"`
	Degraded bool         `json:"degraded,omitempty"`
}

// DaySlots computes the open slots for one calendar day. The booked-slot
// check fails open: rendering availability must not break just because the
// appointment store is unreachable, but the response says so via Degraded.
func (s *Service) DaySlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*DayAvailability, error) {
	sched, err := s.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	dayStart := startOfDay(date)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	degraded := false
	booked, err := s.appts.BookedStartTimes(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		degraded = true
		booked = nil
		s.log.Warn().Err(err).Stringer("doctor_id", doctorID).
			Str("date", dayStart.Format(DateLayout)).
			Msg("booked slot lookup failed, serving availability as degraded")
	}

	return &DayAvailability{
		Date:     dayStart.Format(DateLayout),
		Slots:    SlotsForDay(sched, dayStart, booked, s.now()),
		Degraded: degraded,
	}, nil
}

// ProposeUpdate tries to commit a doctor's new schedule. With no upcoming
// scheduled appointments it commits straight away. Otherwise every upcoming
// appointment is re-checked against the proposal; if any are stranded the
// proposal is stashed and a *ConflictError carrying the conflict list and a
// change token is returned instead of committing.
func (s *Service) ProposeUpdate(ctx context.Context, doctorID uuid.UUID, proposed *DoctorSchedule) error {
	proposed.DoctorID = doctorID
	if err := proposed.Validate(); err != nil {
		return err
	}

	upcoming, err := s.appts.UpcomingScheduled(ctx, doctorID, s.now())
	if err != nil {
		return fmt.Errorf("load upcoming appointments: %w", err)
	}

	if len(upcoming) == 0 {
		return s.commit(ctx, proposed)
	}

	conflicted := DetectConflicts(proposed, upcoming)
	if len(conflicted) == 0 {
		return s.commit(ctx, proposed)
	}

	token := uuid.NewString()
	if err := s.pending.Put(ctx, changeKey(doctorID, token), proposed); err != nil {
		return fmt.Errorf("stash pending schedule change: %w", err)
	}

	s.log.Info().Stringer("doctor_id", doctorID).
		Int("conflicts", len(conflicted)).
		Str("change_token", token).
		Msg("schedule change rejected with conflicts")

	return &ConflictError{Appointments: conflicted, ChangeToken: token}
}

// ApplyPendingChange re-runs conflict detection on a stashed proposal and
// commits it when clean. The doctor cancels the conflicted appointments
// between the propose and apply calls; detection runs again here because new
// bookings may have landed in the gap.
func (s *Service) ApplyPendingChange(ctx context.Context, doctorID uuid.UUID, token string) error {
	proposed, err := s.pending.Get(ctx, changeKey(doctorID, token))
	if err != nil {
		return err
	}

	upcoming, err := s.appts.UpcomingScheduled(ctx, doctorID, s.now())
	if err != nil {
		return fmt.Errorf("load upcoming appointments: %w", err)
	}

	if conflicted := DetectConflicts(proposed, upcoming); len(conflicted) > 0 {
		// Keep the stash; the doctor can cancel the rest and apply again.
		return &ConflictError{Appointments: conflicted, ChangeToken: token}
	}

	if err := s.commit(ctx, proposed); err != nil {
		return err
	}
	if err := s.pending.Delete(ctx, changeKey(doctorID, token)); err != nil {
		s.log.Warn().Err(err).Str("change_token", token).Msg("pending change cleanup failed")
	}
	return nil
}

func (s *Service) commit(ctx context.Context, sched *DoctorSchedule) error {
	if err := s.repo.Upsert(ctx, sched); err != nil {
		return fmt.Errorf("persist schedule: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sched.DoctorID); err != nil {
			s.log.Warn().Err(err).Stringer("doctor_id", sched.DoctorID).Msg("schedule cache invalidation failed")
		}
	}
	s.log.Info().Stringer("doctor_id", sched.DoctorID).Msg("schedule updated")
	return nil
}

// SlotDuration exposes just the slot length, used by the booking flow to
// derive an appointment's end time.
func (s *Service) SlotDuration(ctx context.Context, doctorID uuid.UUID) (int, error) {
	sched, err := s.GetSchedule(ctx, doctorID)
	if err != nil {
		return 0, err
	}
	return sched.SlotDurationMinutes, nil
}

func changeKey(doctorID uuid.UUID, token string) string {
	return doctorID.String() + ":" + token
}
