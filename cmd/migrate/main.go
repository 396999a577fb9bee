// Copyright (c) 2026 Keygate. All rights reserved.

// Command migrate applies the database migrations without starting the
// server. The api binary runs the same migrations at startup; this runner
// exists for deployment pipelines that migrate as a separate step.
//
// It reads only DATABASE_URL and MIGRATION_PATH rather than the full server
// configuration, so it can run in contexts where Redis and SMTP credentials
// are not available.
package main

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/keygate/keygate/internal/platform/migration"
)

type migrateConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
		With(slog.String("app", "keygate-migrate"))

	_ = godotenv.Load()

	cfg := migrateConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Error("startup failure", slog.Any("error", err))
		os.Exit(1)
	}

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		log.Error("migration failure", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("migrations applied")
}
