// Package migrate applies the ledger schema with goose.
package migrate

import (
	"context"
	"database/sql"
	"embed"

	// Same pure-Go driver gorm's sqlite dialector registers as "sqlite";
	// linking modernc.org/sqlite next to it would register the name twice.
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
)

//go:embed migrations
var embedMigrations embed.FS

func configureGoose(driver string) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetTableName("schema_migrations")

	switch driver {
	case "sqlite", "sqlite3":
		return goose.SetDialect("sqlite3")
	case "postgres", "pgx":
		return goose.SetDialect("postgres")
	}
	return eris.Errorf("unsupported driver for goose: %s", driver)
}

func migrationDir(driver string) string {
	if driver == "postgres" || driver == "pgx" {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

func openDB(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = "tagihanpln.db"
	}
	// Map config driver names to database/sql drivers.
	switch driver {
	case "postgres", "pgx":
		driver = "pgx"
	default:
		driver = "sqlite"
	}
	db, err := sql.Open(driver, dsn)
	return db, eris.Wrapf(err, "open %s", driver)
}

func run(ctx context.Context, driver, dsn string, fn func(*sql.DB, string) error) error {
	if driver == "" {
		driver = "sqlite"
	}
	if err := configureGoose(driver); err != nil {
		return err
	}
	db, err := openDB(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db, migrationDir(driver))
}

func Up(ctx context.Context, driver, dsn string) error {
	return run(ctx, driver, dsn, func(db *sql.DB, dir string) error {
		return eris.Wrap(goose.UpContext(ctx, db, dir), "migrate up")
	})
}

func Down(ctx context.Context, driver, dsn string) error {
	return run(ctx, driver, dsn, func(db *sql.DB, dir string) error {
		return eris.Wrap(goose.DownContext(ctx, db, dir), "migrate down")
	})
}

func Status(ctx context.Context, driver, dsn string) error {
	return run(ctx, driver, dsn, func(db *sql.DB, dir string) error {
		return eris.Wrap(goose.StatusContext(ctx, db, dir), "migrate status")
	})
}

// Version reports the current schema version.
func Version(ctx context.Context, driver, dsn string) (int64, error) {
	var v int64
	err := run(ctx, driver, dsn, func(db *sql.DB, dir string) error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, db)
		return eris.Wrap(err, "migrate version")
	})
	return v, err
}
