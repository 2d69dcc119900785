package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Tekthree/ticket-shameless-sub001/internal/repository"
	"github.com/Tekthree/ticket-shameless-sub001/internal/service"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/config"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/database"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/logger"
)

// Admin maintenance CLI. Runs the reconciliation sweep that the HTTP
// surface exposes, suitable for cron or one-off operational use.
//
// Usage:
//
//	maintenance verify-counts [-fix] [-event <id>]
func main() {
	verifyCmd := flag.NewFlagSet("verify-counts", flag.ExitOnError)
	fix := verifyCmd.Bool("fix", false, "correct drifted counters instead of only reporting")
	eventID := verifyCmd.String("event", "", "verify a single event instead of all events")

	if len(os.Args) < 2 || os.Args[1] != "verify-counts" {
		fmt.Fprintln(os.Stderr, "usage: maintenance verify-counts [-fix] [-event <id>]")
		os.Exit(2)
	}
	if err := verifyCmd.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logCfg := &logger.Config{
		Level:       logLevel,
		ServiceName: "maintenance",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      5,
		MinConns:      1,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	eventRepo := repository.NewPostgresEventRepository(db.Pool())
	orderRepo := repository.NewPostgresOrderRepository(db.Pool())
	reconciler := service.NewReconciliationService(eventRepo, orderRepo, nil, nil, &service.ReconciliationServiceConfig{
		EventTimeout: cfg.Tickets.ReconcileEventTimeout,
	})

	if *eventID != "" {
		runOne(ctx, reconciler, *eventID, *fix)
		return
	}
	runAll(ctx, reconciler, *fix)
}

func runOne(ctx context.Context, reconciler service.ReconciliationService, eventID string, fix bool) {
	var (
		result interface{}
		err    error
	)
	if fix {
		result, err = reconciler.Fix(ctx, eventID)
	} else {
		result, err = reconciler.Check(ctx, eventID)
	}
	if err != nil {
		logger.Get().Fatal(fmt.Sprintf("Verification failed for event %s: %v", eventID, err))
	}
	printJSON(result)
}

func runAll(ctx context.Context, reconciler service.ReconciliationService, fix bool) {
	var (
		report interface{}
		err    error
	)
	if fix {
		report, err = reconciler.FixAll(ctx)
	} else {
		report, err = reconciler.CheckAll(ctx)
	}
	if err != nil {
		logger.Get().Fatal(fmt.Sprintf("Verification sweep failed: %v", err))
	}
	printJSON(report)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Get().Fatal(fmt.Sprintf("Failed to encode report: %v", err))
	}
	fmt.Println(string(out))
}
