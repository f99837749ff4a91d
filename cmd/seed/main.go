package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/catalog"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/config"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/db"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/logger"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/slot"
)

const (
	seedDays  = 14
	firstHour = 9
	lastHour  = 17
)

var packageNames = []string{
	"Prenatal breastfeeding preparation",
	"Home visit consultation",
	"Online consultation",
	"Latch and positioning check",
	"Pumping and return-to-work plan",
	"Weaning support",
}

var packageIcons = []string{"consultation", "home", "video", "baby", "heart"}

var featurePool = []string{
	"Personalised feeding plan",
	"Latch assessment",
	"Baby weight check",
	"Follow-up call within 48h",
	"Written summary by email",
	"Pump fitting",
	"Partner guidance",
	"WhatsApp support for 7 days",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolConfig{
		ApplicationName: "consultant-booking-seed",
		MaxConns:        2,
	})
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedPackages(ctx, pool, log); err != nil {
		log.Fatal("seed packages", zap.Error(err))
	}
	if err := seedSlots(ctx, pool, log, time.Now()); err != nil {
		log.Fatal("seed slots", zap.Error(err))
	}

	log.Info("seed complete")
}

func seedPackages(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	log.Info("seeding packages", zap.Int("count", len(packageNames)))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	popular := gofakeit.Number(0, len(packageNames)-1)
	for i, name := range packageNames {
		features, err := json.Marshal(pickFeatures(gofakeit.Number(2, 4)))
		if err != nil {
			return err
		}

		status := catalog.StatusActive
		if i == len(packageNames)-1 {
			status = catalog.StatusInactive
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO services (name, description, price, currency, duration, features, icon, popular, status)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9)
		`,
			name,
			fmt.Sprintf("%s with %s.", name, gofakeit.Name()),
			math.Round(gofakeit.Price(150, 600)),
			catalog.DefaultCurrency,
			[]int{45, 60, 90}[gofakeit.Number(0, 2)],
			string(features),
			packageIcons[gofakeit.Number(0, len(packageIcons)-1)],
			i == popular,
			status,
		)
		if err != nil {
			return fmt.Errorf("insert package %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info("packages seeded")
	return nil
}

// seedSlots writes an hourly weekday grid for the next two weeks. Roughly
// one slot in five is booked and one in ten blocked.
func seedSlots(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger, now time.Time) error {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	batch := &pgx.Batch{}
	for d := 0; d < seedDays; d++ {
		day := start.AddDate(0, 0, d)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		for h := firstHour; h < lastHour; h++ {
			batch.Queue(`
				INSERT INTO available_slots (slot_date, slot_time, status)
				VALUES ($1::date, $2::time, $3)
				ON CONFLICT (slot_date, slot_time) DO NOTHING
			`, day.Format(slot.DateLayout), fmt.Sprintf("%02d:00:00", h), string(randomStatus()))
		}
	}

	log.Info("seeding slots", zap.Int("count", batch.Len()), zap.Int("days", seedDays))

	results := pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert slot %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	log.Info("slots seeded")
	return nil
}

func randomStatus() slot.Status {
	switch n := gofakeit.Number(1, 10); {
	case n <= 7:
		return slot.StatusAvailable
	case n <= 9:
		return slot.StatusBooked
	default:
		return slot.StatusBlocked
	}
}

func pickFeatures(n int) []string {
	idx := make([]int, len(featurePool))
	for i := range idx {
		idx[i] = i
	}
	for i := len(idx) - 1; i > 0; i-- {
		j := gofakeit.Number(0, i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	out := make([]string, 0, n)
	for _, i := range idx[:min(n, len(idx))] {
		out = append(out, featurePool[i])
	}
	return out
}
