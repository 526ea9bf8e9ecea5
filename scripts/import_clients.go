// Command import_clients loads a CSV export from the old salon software into
// the clients table. Expected columns: name, email, phone, note.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"eclat/internal/database"
	"eclat/internal/models"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		csvPath = flag.String("csv", "clients.csv", "path to the clients CSV export")
		dbPath  = flag.String("db", "./data/eclat.db", "path to sqlite db")
	)
	flag.Parse()

	file, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	ctx := context.Background()
	var imported, skipped int
	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		if line == 0 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			continue
		}
		if len(record) < 2 {
			skipped++
			continue
		}

		client := &models.Client{
			Name:  strings.TrimSpace(record[0]),
			Email: strings.ToLower(strings.TrimSpace(record[1])),
		}
		if len(record) > 2 {
			client.Phone = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			client.Note = strings.TrimSpace(record[3])
		}

		if client.Name == "" || client.Email == "" {
			skipped++
			continue
		}

		if err := db.UpsertClient(ctx, client); err != nil {
			logger.Error().Err(err).Str("email", client.Email).Msg("import failed")
			skipped++
			continue
		}
		imported++
	}

	logger.Info().Int("imported", imported).Int("skipped", skipped).Msg("client import finished")
	return nil
}
