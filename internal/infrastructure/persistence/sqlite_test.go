package persistence

import (
	"testing"

	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRentalTestDB opens an in-memory SQLite database with the rental and
// billing schema. Lock-taking queries (FOR UPDATE) are covered separately
// with sqlmock because SQLite does not speak that syntax.
func setupRentalTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&rental.Owner{},
		&rental.Property{},
		&rental.Reservation{},
		&billing.Invoice{},
	)
	require.NoError(t, err)

	return db
}
