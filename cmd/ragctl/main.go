package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chatdoc-be/internal/bootstrap"
	"chatdoc-be/internal/cli"
	"chatdoc-be/internal/config"
	"chatdoc-be/pkg/database"
	"chatdoc-be/pkg/nats"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		color.Red("Invalid configuration: %v", err)
		os.Exit(1)
	}

	var gormDB *gorm.DB
	if cfg.App.StoreDriver == "postgres" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			color.Red("Unable to connect to database: %v", err)
			os.Exit(1)
		}
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	services := cli.Services{
		Documents: container.DocumentService,
		Indexer:   container.IndexerService,
		Chat:      container.ChatService,
	}
	if cfg.App.NatsURL != "" {
		sub, err := nats.NewSubscriber(cfg.App.NatsURL, container.Logger)
		if err != nil {
			color.Yellow("NATS unavailable, events command disabled: %v", err)
		} else {
			defer sub.Close()
			services.Events = sub
		}
	}
	cli.SetServices(services)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		color.Yellow("Event consumer not started: %v", err)
	}

	if err := cli.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		stop()
		container.Close()
		os.Exit(1)
	}
}
