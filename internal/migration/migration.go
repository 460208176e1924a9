package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	accountdomain "github.com/smallbiznis/commission/internal/account/domain"
	chargedomain "github.com/smallbiznis/commission/internal/charge/domain"
	commitdomain "github.com/smallbiznis/commission/internal/commit/domain"
	dealdomain "github.com/smallbiznis/commission/internal/deal/domain"
	feedomain "github.com/smallbiznis/commission/internal/fee/domain"
	journaldomain "github.com/smallbiznis/commission/internal/journal/domain"
	ledgerdomain "github.com/smallbiznis/commission/internal/ledger/domain"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	producerdomain "github.com/smallbiznis/commission/internal/producer/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&producerdomain.Producer{},
		&producerdomain.BkgeClass{},
		&dealdomain.Agent{},
		&dealdomain.Deal{},
		&dealdomain.SplitRule{},
		&accountdomain.ClientAccount{},
		&perioddomain.CommissionPeriod{},
		&journaldomain.Journal{},
		&journaldomain.LineItem{},
		&feedomain.Fee{},
		&commitdomain.JournalCommit{},
		&chargedomain.ChargeType{},
		&chargedomain.ChargeSchedule{},
		&chargedomain.Charge{},
		&ledgerdomain.LedgerAccount{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntryLine{},
	}
}

// Migrate brings the schema up to date. Postgres uses the versioned SQL
// files; other dialects fall back to gorm's AutoMigrate.
func Migrate(conn *gorm.DB) error {
	if conn.Dialector.Name() == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	return conn.AutoMigrate(Models()...)
}
