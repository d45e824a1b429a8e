package store_test

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gridwatch/solarcast/internal/store"
)

// testLogger returns a quiet logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// newTestDB opens a fresh in-memory sqlite database with the schema migrated.
// The shared-cache name keeps the database alive across pooled connections
// while staying private to one test.
func newTestDB() *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", gofakeit.LetterN(12))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(store.Migrate(db, testLogger())).To(Succeed())
	return db
}
