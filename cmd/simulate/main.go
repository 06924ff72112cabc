// simulate drives concurrent booking attempts against a running api-server
// to exercise the double-booking backstop: many patients race for a small
// set of slots and exactly one booking per slot should come back 201, the
// rest 409.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepath/scheduling/internal/config"
	"github.com/carepath/scheduling/internal/db"
)

type SimConfig struct {
	APIBaseURL string
	Workers    int
	Attempts   int
	Doctors    int
	Slots      int
	JWTSecret  string
}

type Metrics struct {
	Total     int64
	Created   int64
	Rebooked  int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (m *Metrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&m.Total, 1)
	switch status {
	case http.StatusCreated:
		atomic.AddInt64(&m.Created, 1)
	case http.StatusOK:
		atomic.AddInt64(&m.Rebooked, 1)
	case http.StatusConflict:
		atomic.AddInt64(&m.Conflict, 1)
	default:
		atomic.AddInt64(&m.Error, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *Metrics) Stats() (avg, p50, p95 time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(m.latencies))
	copy(latencies, m.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	return avg, p50, p95
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	sim := SimConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:8080"),
		Workers:    getEnvInt("SIM_WORKERS", 20),
		Attempts:   getEnvInt("SIM_ATTEMPTS", 500),
		Doctors:    getEnvInt("SIM_DOCTORS", 5),
		Slots:      getEnvInt("SIM_SLOTS", 10),
		JWTSecret:  cfg.JWTSecret,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	doctors, err := loadIDs(context.Background(), pool, "SELECT doctor_id FROM doctor_schedules LIMIT $1", sim.Doctors)
	if err != nil {
		log.Fatalf("load doctors: %v", err)
	}
	patients, err := loadIDs(context.Background(), pool, "SELECT id FROM patients LIMIT $1", 200)
	if err != nil {
		log.Fatalf("load patients: %v", err)
	}
	if len(doctors) == 0 || len(patients) == 0 {
		log.Fatal("run seed first: no doctors with schedules or no patients")
	}

	// A small, fixed slot pool maximizes collisions.
	base := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, 2)
	slots := make([]time.Time, sim.Slots)
	for i := range slots {
		slots[i] = base.Add(time.Duration(i*30) * time.Minute)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	var metrics Metrics

	log.Printf("running %d booking attempts across %d workers, %d doctors x %d slots",
		sim.Attempts, sim.Workers, len(doctors), len(slots))

	var wg sync.WaitGroup
	attempts := make(chan int)
	for w := 0; w < sim.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range attempts {
				patient := patients[rand.Intn(len(patients))]
				doctor := doctors[rand.Intn(len(doctors))]
				slot := slots[rand.Intn(len(slots))]
				bookOnce(client, sim, &metrics, patient, doctor, slot)
			}
		}()
	}
	for i := 0; i < sim.Attempts; i++ {
		attempts <- i
	}
	close(attempts)
	wg.Wait()

	avg, p50, p95 := metrics.Stats()
	log.Printf("done: total=%d created=%d rebooked=%d conflict=%d error=%d",
		metrics.Total, metrics.Created, metrics.Rebooked, metrics.Conflict, metrics.Error)
	log.Printf("latency: avg=%s p50=%s p95=%s", avg, p50, p95)

	// Each unique (doctor, slot) pair should have produced at most one 201.
	maxCreated := int64(len(doctors) * len(slots))
	if metrics.Created > maxCreated {
		log.Fatalf("constraint breach: %d created exceeds %d unique slots", metrics.Created, maxCreated)
	}
	log.Printf("uniqueness holds: %d created <= %d unique slots", metrics.Created, maxCreated)
}

func bookOnce(client *http.Client, sim SimConfig, metrics *Metrics, patientID, doctorID uuid.UUID, slot time.Time) {
	token, err := patientToken(sim.JWTSecret, patientID)
	if err != nil {
		log.Printf("mint token: %v", err)
		return
	}

	body, _ := json.Marshal(map[string]any{
		"doctor_id":       doctorID.String(),
		"slot_start_time": slot.Format(time.RFC3339),
	})

	req, err := http.NewRequest(http.MethodPost, sim.APIBaseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		log.Printf("build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		metrics.Record(time.Since(start), 0)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	metrics.Record(time.Since(start), resp.StatusCode)
}

func patientToken(secret string, patientID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":  patientID.String(),
		"role": "patient",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func loadIDs(ctx context.Context, pool *pgxpool.Pool, sql string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
