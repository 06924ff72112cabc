package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepath/scheduling/internal/db"
	"github.com/carepath/scheduling/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, 50)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	patientIDs, err := seedPatients(context.Background(), pool, 2000)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedSchedules(context.Background(), pool, doctorIDs); err != nil {
		log.Fatalf("seed schedules: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, doctorIDs, patientIDs); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, specialty)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, id, name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return ids, nil
}

func seedSchedules(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID) error {
	log.Printf("seeding schedules for %d doctors", len(doctorIDs))

	durations := []int{15, 20, 30, 45, 60}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, id := range doctorIDs {
		availability := randomWeeklyAvailability()
		data, err := json.Marshal(availability)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO doctor_schedules
				(doctor_id, slot_duration_minutes, weekly_availability,
				 unavailable_dates, booking_horizon_days, lead_time_hours,
				 created_at, updated_at)
			VALUES ($1, $2, $3, '{}', $4, $5, now(), now())
		`, id,
			durations[gofakeit.Number(0, len(durations)-1)],
			data,
			gofakeit.Number(7, 60),
			gofakeit.Number(0, 48),
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("schedules seeded")
	return nil
}

func randomWeeklyAvailability() schedule.WeeklyAvailability {
	morning := schedule.TimeInterval{Start: mustClock("09:00"), End: mustClock("12:00")}
	afternoon := schedule.TimeInterval{Start: mustClock("14:00"), End: mustClock("17:00")}

	availability := schedule.WeeklyAvailability{}
	for _, day := range schedule.WeekdayNames {
		switch gofakeit.Number(0, 3) {
		case 0:
			// day off
		case 1:
			availability[day] = []schedule.TimeInterval{morning}
		case 2:
			availability[day] = []schedule.TimeInterval{afternoon}
		default:
			availability[day] = []schedule.TimeInterval{morning, afternoon}
		}
	}
	return availability
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctorIDs, patientIDs []uuid.UUID) error {
	count := len(doctorIDs) * 4
	log.Printf("seeding %d appointments", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		doctorID := doctorIDs[gofakeit.Number(0, len(doctorIDs)-1)]
		patientID := patientIDs[gofakeit.Number(0, len(patientIDs)-1)]

		// Tomorrow onward, on the hour, so seeded rows cannot collide on
		// the active-slot index within one doctor.
		start := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, gofakeit.Number(1, 14)).
			Add(time.Duration(9+i%8) * time.Hour)
		reason := gofakeit.Sentence(6)

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments
				(id, doctor_id, patient_id, slot_start_time, slot_end_time,
				 reason_for_visit, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'Scheduled', now(), now())
			ON CONFLICT DO NOTHING
		`, uuid.New(), doctorID, patientID, start, start.Add(30*time.Minute), reason)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointments seeded")
	return nil
}

func mustClock(s string) schedule.TimeOfDay {
	t, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}
