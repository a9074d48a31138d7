package testutil

import (
	"testing"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/database"
)

// Option customises the test database before it is handed to the test.
type Option func(*settings)

type settings struct {
	migrate bool
	seed    *database.SeedConfig
}

// WithAutoMigrate runs schema migration on the fresh database.
func WithAutoMigrate() Option {
	return func(s *settings) {
		s.migrate = true
	}
}

// WithSeedData migrates and seeds the built-in roles plus the given admin.
func WithSeedData(seed database.SeedConfig) Option {
	return func(s *settings) {
		s.migrate = true
		s.seed = &seed
	}
}

// MustOpenTestDB opens an in-memory sqlite database for the test. The
// database is private to the test and released when the test finishes.
func MustOpenTestDB(t *testing.T, opts ...Option) *gorm.DB {
	t.Helper()

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if s.migrate {
		if err := database.AutoMigrate(db); err != nil {
			t.Fatalf("migrate test database: %v", err)
		}
	}

	if s.seed != nil {
		if err := database.SeedData(db, *s.seed); err != nil {
			t.Fatalf("seed test database: %v", err)
		}
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
