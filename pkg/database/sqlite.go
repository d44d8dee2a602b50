package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a sqlite database, used by the test suites. The sqlite
// driver translates constraint violations to gorm.ErrDuplicatedKey the same
// way the postgres driver does.
func NewSQLiteDB(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
}
