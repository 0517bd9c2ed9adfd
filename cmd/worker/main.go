package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SivaTeja36/Bus-reservation/config"
	"github.com/SivaTeja36/Bus-reservation/internal/kafka"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/repository"
	"github.com/SivaTeja36/Bus-reservation/internal/service/audit"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
	flag "github.com/spf13/pflag"
)

func main() {
	recent := flag.Int("recent", 0, "print the N most recent audit entries and exit")
	flag.Parse()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := repository.OpenDB(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	repo := repository.NewAuditRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("prepare audit schema", "error", err)
		os.Exit(1)
	}

	retention := time.Duration(cfg.Worker.AuditRetentionDays) * 24 * time.Hour
	auditService := audit.NewAuditService(repo, retention, audit.WithLogger(logger))

	if *recent > 0 {
		entries, err := auditService.Recent(ctx, *recent)
		if err != nil {
			logger.Error("load recent entries", "error", err)
			os.Exit(1)
		}
		fmt.Println(table.Text(table.Render(entries, audit.Columns)))
		return
	}

	if !cfg.Kafka.Enabled() {
		logger.Error("kafka brokers and events topic are required")
		os.Exit(1)
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic)
	defer consumer.Close()

	go func() {
		err := consumer.Consume(ctx, auditService.HandleMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer stopped", "error", err)
			stop()
		}
	}()

	logger.Info("audit worker started", "topic", cfg.Kafka.EventsTopic, "group", cfg.Kafka.GroupID)

	pruneTicker := time.NewTicker(time.Duration(cfg.Worker.PruneIntervalMinute) * time.Minute)
	defer pruneTicker.Stop()

	for {
		select {
		case <-pruneTicker.C:
			pruned, err := auditService.Prune(ctx)
			if err != nil {
				logger.Error("prune audit entries", "error", err)
				continue
			}
			if pruned > 0 {
				logger.Info("pruned audit entries", "count", pruned)
			}
		case <-ctx.Done():
			logger.Info("shutting down audit worker")
			return
		}
	}
}
