package database

import (
	"log"
	"strings"

	"homologacao/internal/domain"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// registers the cgo-free "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate brings the schema up to date for every persisted entity.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Case{},
		&domain.Document{},
		&domain.CapacityWindow{},
		&domain.Booking{},
		&domain.Signature{},
	); err != nil {
		return err
	}

	// on Postgres an exclusion constraint backs the in-transaction
	// overlap check: no responsible may hold two overlapping active
	// bookings, whatever the isolation level. SQLite serializes writers,
	// so the transactional check alone is enough there.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
			return err
		}
		return db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'idx_no_overbooking') THEN
        ALTER TABLE bookings ADD CONSTRAINT idx_no_overbooking
            EXCLUDE USING gist (
                responsible_id WITH =,
                tsrange(start_time, end_time) WITH &&
            ) WHERE (status = 'active');
    END IF;
END $$`).Error
	}
	return nil
}
