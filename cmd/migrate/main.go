package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	config "github.com/wordrush/wordrush-services/configs"
	"github.com/wordrush/wordrush-services/internal/gamesvc/db/migrations"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "migrate"

func init() {
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		log.Fatal("POSTGRES_URL is not set")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrator := migrate.NewMigrator(db, migrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		log.Fatalf("migrator init failed: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "rollback" {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		log.Infof("rolled back %s", group)
		return
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if group.IsZero() {
		log.Info("database is up to date")
		return
	}
	log.Infof("migrated to %s", group)
}
