package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/pronostico/internal/client/api"
	"github.com/iudanet/pronostico/internal/client/auth"
	"github.com/iudanet/pronostico/internal/client/cli"
	"github.com/iudanet/pronostico/internal/client/iocli"
	"github.com/iudanet/pronostico/internal/client/storage/boltdb"
)

var (
	// Информация о версии, задается через ldflags при сборке
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("PRONOSTICO_SERVER", "http://localhost:8000"), "Server URL")
	dbPath := flag.String("db", envOr("PRONOSTICO_CLIENT_DB", "pronostico-client.db"), "Path to local session database")

	flag.Parse()

	stdio := iocli.NewStdio()

	// Показываем версию и выходим
	if *showVersion {
		printVersion()
		return 0
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)
	app := cli.New(stdio, auth.NewService(apiClient, boltStorage), apiClient)

	if err := app.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.PrintUsage(stdio)
		}
		return 1
	}

	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printVersion() {
	fmt.Printf("Pronostico Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
