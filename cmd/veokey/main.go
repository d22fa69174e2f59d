package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"logomotion/internal/infra"
	"logomotion/internal/infra/credentials"
)

// veokey stores the Veo API key in the integration_tokens table so the worker
// can pick it up without a VEO_API_KEY environment variable.
func main() {
	_ = godotenv.Load()

	var keyFlag string
	flag.StringVar(&keyFlag, "key", "", "Veo API key (falls back to VEO_API_KEY)")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("VEO_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "a Veo API key is required via -key or VEO_API_KEY")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, zerolog.Nop())
	store := credentials.NewStore(runner)
	if err := store.SetVeoAPIKey(ctx, key); err != nil {
		fmt.Fprintf(os.Stderr, "store veo api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("veo api key stored")
}
