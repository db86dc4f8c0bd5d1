// Command import-tariffs loads a tier catalog from a CSV file into Postgres.
//
// Expected columns:
//
//	code,name,description,currency,base_fare,per_km,per_minute,per_stop,minimum_price,position,active
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strconv"
	"strings"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	bookingpg "github.com/Missray24/missray-cab-app-sub000/internal/booking/repo/postgres"
	"github.com/Missray24/missray-cab-app-sub000/internal/config"
	"github.com/Missray24/missray-cab-app-sub000/internal/db"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
	"github.com/Missray24/missray-cab-app-sub000/internal/log"
)

func main() {
	if len(os.Args) < 2 {
		stdlog.Fatal("Usage: import-tariffs <csv-file-path>")
	}
	csvFilePath := os.Args[1]

	cfg, err := config.Load("config.yaml")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}
	if err := log.Init(cfg.Log.Level); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, &db.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		stdlog.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	store, err := bookingpg.NewStoreWithPool(pool.Pool)
	if err != nil {
		stdlog.Fatalf("Failed to create store: %v", err)
	}

	tiers, err := readTiersFromCSV(csvFilePath)
	if err != nil {
		stdlog.Fatalf("Failed to read tiers from CSV: %v", err)
	}
	fmt.Printf("Loaded %d tiers from CSV\n", len(tiers))

	imported := 0
	for _, tier := range tiers {
		if _, err := store.Tiers().Upsert(ctx, tier); err != nil {
			fmt.Printf("Warning: failed to import tier %s: %v\n", tier.Code, err)
			continue
		}
		imported++
	}
	fmt.Printf("Imported %d of %d tiers\n", imported, len(tiers))
}

func readTiersFromCSV(filePath string) ([]domain.Tier, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var tiers []domain.Tier
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) < 11 {
			continue
		}

		rates, err := parseRates(record[4:9])
		if err != nil {
			fmt.Printf("Warning: invalid rates for %s: %v\n", record[0], err)
			continue
		}
		if err := rates.Validate(); err != nil {
			fmt.Printf("Warning: invalid rate card for %s: %v\n", record[0], err)
			continue
		}

		position, _ := strconv.Atoi(strings.TrimSpace(record[9]))
		active, _ := strconv.ParseBool(strings.TrimSpace(record[10]))

		tiers = append(tiers, domain.Tier{
			Code:        strings.ToLower(strings.TrimSpace(record[0])),
			Name:        strings.TrimSpace(record[1]),
			Description: strings.TrimSpace(record[2]),
			Currency:    strings.ToUpper(strings.TrimSpace(record[3])),
			Rates:       rates,
			Position:    position,
			Active:      active,
		})
	}

	return tiers, nil
}

func parseRates(fields []string) (fare.RateCard, error) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fare.RateCard{}, fmt.Errorf("column %d: %w", i+5, err)
		}
		values[i] = v
	}
	return fare.RateCard{
		BaseFare:     values[0],
		PerKm:        values[1],
		PerMinute:    values[2],
		PerStop:      values[3],
		MinimumPrice: values[4],
	}, nil
}
