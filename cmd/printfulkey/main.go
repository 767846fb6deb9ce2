package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mockupgen/internal/infra"
	"mockupgen/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag   string
		storeFlag string
	)
	flag.StringVar(&keyFlag, "key", "", "Printful API token (falls back to PRINTFUL_API_KEY)")
	flag.StringVar(&storeFlag, "store", "", "Printful store id the token is scoped to (falls back to PRINTFUL_STORE_ID)")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("PRINTFUL_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "Printful API key is required via -key or PRINTFUL_API_KEY")
		os.Exit(1)
	}
	storeID := strings.TrimSpace(storeFlag)
	if storeID == "" {
		storeID = strings.TrimSpace(os.Getenv("PRINTFUL_STORE_ID"))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "printfulkey").Logger()
	runner := infra.NewSQLRunner(pool, &logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare schema: %v\n", err)
		os.Exit(1)
	}
	if err := credentials.NewStore(runner).SetPrintful(ctx, credentials.Printful{APIKey: key, StoreID: storeID}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist printful api key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("PRINTFUL API key stored successfully")
}
