package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"userhub/config"
	"userhub/internal/application"
	pginfra "userhub/internal/infrastructure/postgres"
	"userhub/pkg/apperrors"
	"userhub/pkg/helpers"
)

// Seeds demo users through the service layer so hashing and uniqueness
// rules apply the same way they do for API requests.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)
	svc := application.NewService(repo, nil, logger, nil, "", nil, 0)

	seeds := []application.CreateInput{
		{Username: "demoadmin", Email: "admin@example.com", Password: "password123", FirstName: "Demo", LastName: "Admin"},
		{Username: "demouser", Email: "demo@example.com", Password: "password123", FirstName: "Demo", LastName: "User"},
	}

	for _, in := range seeds {
		view, err := svc.Create(ctx, in)
		if err != nil {
			var ae *apperrors.AlreadyExistsError
			if errors.As(err, &ae) {
				fmt.Printf("skipped %s: %v\n", in.Username, err)
				continue
			}
			log.Fatalf("failed to seed %s: %v", in.Username, err)
		}
		fmt.Printf("seeded user: id=%d username=%s email=%s\n", view.ID, view.Username, view.Email)
	}
}
