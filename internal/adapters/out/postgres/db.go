package postgres

import (
	"fmt"

	"grabbit/internal/adapters/out/postgres/assignmentrepo"
	"grabbit/internal/adapters/out/postgres/orderrepo"
	"grabbit/internal/adapters/out/postgres/outboxrepo"
	"grabbit/internal/adapters/out/postgres/readrepo"
	"grabbit/internal/core/ports"

	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectionString builds a libpq keyword/value DSN.
func ConnectionString(host, port, user, password, dbName, sslMode string) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode,
	)
}

// Open connects to PostgreSQL through the pgx driver.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the orders, assignments and outbox tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&assignmentrepo.AssignmentDTO{},
		&outboxrepo.OutboxDTO{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// NewOrderReader returns the read side over db.
func NewOrderReader(db *gorm.DB) ports.OrderReader {
	return readrepo.NewGormOrderReader(db)
}
