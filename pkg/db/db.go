package db

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/pkg/env"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	conn     *gorm.DB
	connOnce sync.Once
	connErr  error
)

// Connection returns the shared database handle, opening it on first use
// according to the environment configuration.
func Connection() *gorm.DB {
	connOnce.Do(func() {
		conn, connErr = open(env.Variables().DatabaseType, env.Variables().DatabaseDSN)
	})

	if connErr != nil {
		panic(connErr)
	}

	return conn
}

func open(databaseType, dsn string) (*gorm.DB, error) {
	var (
		gdb *gorm.DB
		err error
	)

	switch databaseType {
	case "postgres":
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite":
		gdb, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err == nil {
			err = gdb.Exec("PRAGMA foreign_keys = ON").Error
		}
	default:
		return nil, errors.Errorf("unsupported database type %q", databaseType)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s database", databaseType)
	}

	return gdb, nil
}

// Migrate applies the schema to the shared connection: the legacy result
// tables, the operational tables, and the read-only views.
func Migrate() error {
	return MigrateDatabase(Connection())
}

// MigrateDatabase applies the schema to the given connection.
func MigrateDatabase(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models.All...); err != nil {
		return errors.Wrap(err, "migrate tables")
	}

	for _, view := range views {
		if err := gdb.Exec("DROP VIEW IF EXISTS " + view.name).Error; err != nil {
			return errors.Wrapf(err, "drop view %s", view.name)
		}
		if err := gdb.Exec("CREATE VIEW " + view.name + " AS " + view.query).Error; err != nil {
			return errors.Wrapf(err, "create view %s", view.name)
		}
	}

	return nil
}
