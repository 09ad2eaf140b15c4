// Package migrations holds the schema and seed data as embedded SQL, applied
// through bun's migrator by cmd/migrate.
package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_schema.sql
var schemaSQL string

//go:embed 0002_seed_questions.sql
var seedQuestionsSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(schemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS submission_votes;
				DROP TABLE IF EXISTS submissions;
				DROP TABLE IF EXISTS game_questions;
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS question_sets;
				DROP TABLE IF EXISTS players;
				DROP TABLE IF EXISTS games;
				DROP TABLE IF EXISTS users;
			`)
			return err
		},
	)

	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(seedQuestionsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DELETE FROM questions; DELETE FROM question_sets`)
			return err
		},
	)
}
