package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/config"
	"github.com/gilsonricardopeloso/devretain/internal/database/migration"
	dbpostgres "github.com/gilsonricardopeloso/devretain/internal/database/postgres"
	"github.com/gilsonricardopeloso/devretain/internal/database/seeder"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	"github.com/gilsonricardopeloso/devretain/migrations"
)

func main() {
	seed := flag.Bool("seed", false, "load the demo data set after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.App.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()
	db, err := dbpostgres.Connect(connCtx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", "error", err)
	}
	defer func() {
		_ = db.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	r := migration.Runner{Source: migrations.FS, Logger: log}
	if err := r.Run(migCtx, db.SQLDB()); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	log.Info("migrations applied")

	if !*seed {
		return
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), time.Minute)
	defer seedCancel()
	sr := seeder.Runner{Seeders: seeder.Defaults(), Logger: log}
	if err := sr.Run(seedCtx, db); err != nil {
		log.Fatal("seed failed", "error", err)
	}
	log.Info("seed completed")
}
