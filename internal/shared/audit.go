package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit outcomes.
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeDenied  = "denied"
	AuditOutcomeFailure = "failure"
)

// AuditEntry represents a record stored in audit_logs. Security-relevant
// events (failed logins, CSRF rejections, role changes, approvals) are
// recorded with enough context for forensic review.
type AuditEntry struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Outcome  string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry. ActorID zero means anonymous. Entries
// recorded without an explicit time are stamped at write time.
func (l *AuditLogger) Record(ctx context.Context, entry AuditEntry) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	entry, metaJSON, err := prepareEntry(entry)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, outcome, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ActorID, entry.Action, entry.Entity, entry.EntityID, entry.Outcome, metaJSON, entry.At)
	return err
}

func prepareEntry(entry AuditEntry) (AuditEntry, []byte, error) {
	if entry.Action == "" || entry.Entity == "" {
		return entry, nil, errors.New("audit entry requires action/entity")
	}
	if entry.Outcome == "" {
		entry.Outcome = AuditOutcomeSuccess
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	metaJSON, err := json.Marshal(entry.Meta)
	return entry, metaJSON, err
}

// Recorder is the port handlers depend on, so tests can capture entries.
type Recorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

var _ Recorder = (*AuditLogger)(nil)
