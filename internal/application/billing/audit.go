package billing

import "context"

// AuditLogger records back-office actions for the audit trail. Recording is
// fire-and-forget: implementations must never block or fail the business
// operation, and failures are logged rather than returned. The acting user
// is resolved from the context by the implementation.
type AuditLogger interface {
	Record(ctx context.Context, action, table string, recordID int64, oldValues, newValues any, description string)
}

// NopAuditLogger discards all audit records.
type NopAuditLogger struct{}

// Record implements AuditLogger
func (NopAuditLogger) Record(ctx context.Context, action, table string, recordID int64, oldValues, newValues any, description string) {
}
