package audit

import (
	"context"
	"testing"

	"github.com/rentora/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&AuditLog{}))
	return db
}

func TestGormAuditLogger_Record(t *testing.T) {
	db := setupAuditTestDB(t)
	auditLogger := NewGormAuditLogger(db, zap.NewNop())

	ctx, _ := logger.WithUser(context.Background(), zap.NewNop(), "backoffice")

	auditLogger.Record(ctx, "invoice.generate", "reservations", 42,
		nil, map[string]string{"invoice_number": "FR07/014"}, "Invoice generated")
	auditLogger.Wait()

	var entries []AuditLog
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "backoffice", entry.User)
	assert.Equal(t, "invoice.generate", entry.Action)
	assert.Equal(t, "reservations", entry.Table)
	assert.Equal(t, int64(42), entry.RecordID)
	assert.Nil(t, entry.OldValues)
	require.NotNil(t, entry.NewValues)
	assert.Contains(t, *entry.NewValues, "FR07/014")
	assert.NotEqual(t, "", entry.ID.String())

	// The affected-table field maps to the table_name column while the
	// model itself persists to audit_logs.
	assert.True(t, db.Migrator().HasTable("audit_logs"))
	assert.True(t, db.Migrator().HasColumn(&AuditLog{}, "table_name"))
}

func TestGormAuditLogger_RecordWithoutUser(t *testing.T) {
	db := setupAuditTestDB(t)
	auditLogger := NewGormAuditLogger(db, zap.NewNop())

	auditLogger.Record(context.Background(), "reservation.delete", "reservations", 7,
		map[string]int64{"id": 7}, nil, "")
	auditLogger.Wait()

	var entry AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "", entry.User)
	require.NotNil(t, entry.OldValues)
	assert.Nil(t, entry.NewValues)
}
