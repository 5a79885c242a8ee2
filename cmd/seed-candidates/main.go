package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/database"
	"github.com/voxhire/voxhire-backend/internal/logger"
	"github.com/voxhire/voxhire-backend/internal/model"
	"github.com/voxhire/voxhire-backend/internal/repository"
	"github.com/voxhire/voxhire-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// Bulk-registers candidate accounts from a CSV with rows of
// email,full_name,password. Rows whose email already exists are skipped.
func main() {
	var csvPath string
	flag.StringVar(&csvPath, "file", "candidates.csv", "Path to candidates CSV (email,full_name,password)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	userService := service.NewUserService(userRepo)

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("Failed to open CSV")
	}
	defer f.Close()

	fmt.Printf("=== Seeding Candidates from %s ===\n", csvPath)

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	line := 0
	created := 0
	skipped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Printf("Line %d: bad row: %v\n", line, err)
			continue
		}

		email := strings.TrimSpace(record[0])
		fullName := strings.TrimSpace(record[1])
		password := record[2]

		// Tolerate a header row.
		if line == 1 && strings.EqualFold(email, "email") {
			continue
		}

		if email == "" || fullName == "" || len(password) < 6 {
			fmt.Printf("Line %d: invalid row (email, full_name, password>=6 required)\n", line)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}

		candidate := &model.User{
			Email:        email,
			FullName:     fullName,
			PasswordHash: string(hash),
			Role:         model.RoleCandidate,
		}

		if err := userService.Create(ctx, candidate); err != nil {
			if errors.Is(err, service.ErrEmailTaken) {
				skipped++
				continue
			}
			fmt.Printf("Line %d: error creating %s: %v\n", line, email, err)
			continue
		}

		created++
		if created%10 == 0 {
			fmt.Printf("Created %d candidates...\n", created)
		}
	}

	fmt.Printf("\nSeed completed! Created %d candidates, skipped %d existing.\n", created, skipped)
}
