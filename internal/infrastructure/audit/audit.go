package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditLog is a persisted record of a back-office action. Old and new values
// are stored as JSON snapshots.
type AuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	User        string    `gorm:"type:varchar(100)"`
	Action      string    `gorm:"type:varchar(50);not null;index"`
	Table       string    `gorm:"column:table_name;type:varchar(50);not null;index"`
	RecordID    int64     `gorm:"not null;index"`
	OldValues   *string   `gorm:"type:text"`
	NewValues   *string   `gorm:"type:text"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

// GormAuditLogger writes audit records to the database asynchronously so a
// slow or failing audit write never holds up the business operation.
type GormAuditLogger struct {
	db     *gorm.DB
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewGormAuditLogger creates a new GormAuditLogger
func NewGormAuditLogger(db *gorm.DB, log *zap.Logger) *GormAuditLogger {
	return &GormAuditLogger{
		db:     db,
		logger: log.Named("audit"),
	}
}

// Record persists an audit entry in the background. The acting user is
// resolved from the request context before the goroutine detaches; the
// write itself uses a fresh context so it survives request cancellation.
func (a *GormAuditLogger) Record(ctx context.Context, action, table string, recordID int64, oldValues, newValues any, description string) {
	entry := AuditLog{
		ID:          uuid.New(),
		User:        logger.GetUser(ctx),
		Action:      action,
		Table:       table,
		RecordID:    recordID,
		OldValues:   marshal(oldValues),
		NewValues:   marshal(newValues),
		Description: description,
		CreatedAt:   time.Now(),
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.db.WithContext(writeCtx).Create(&entry).Error; err != nil {
			a.logger.Error("audit write failed",
				zap.String("action", action),
				zap.String("table", table),
				zap.Int64("record_id", recordID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until all pending audit writes have finished. Called on
// shutdown and by tests.
func (a *GormAuditLogger) Wait() {
	a.wg.Wait()
}

func marshal(v any) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
