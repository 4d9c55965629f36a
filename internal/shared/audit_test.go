package shared

import (
	"testing"
	"time"
)

func TestPrepareEntryStampsMissingTime(t *testing.T) {
	before := time.Now()
	entry, _, err := prepareEntry(AuditEntry{Action: "login.failed", Entity: "account"})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if entry.At.Before(before) || entry.At.After(time.Now()) {
		t.Fatalf("expected write-time stamp, got %v", entry.At)
	}
	if entry.Outcome != AuditOutcomeSuccess {
		t.Fatalf("expected default outcome, got %q", entry.Outcome)
	}
}

func TestPrepareEntryKeepsExplicitTime(t *testing.T) {
	at := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	entry, _, err := prepareEntry(AuditEntry{Action: "role.change", Entity: "account", At: at})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !entry.At.Equal(at) {
		t.Fatalf("expected %v, got %v", at, entry.At)
	}
}

func TestPrepareEntryRequiresActionAndEntity(t *testing.T) {
	if _, _, err := prepareEntry(AuditEntry{Entity: "account"}); err == nil {
		t.Fatal("expected error for missing action")
	}
	if _, _, err := prepareEntry(AuditEntry{Action: "login.failed"}); err == nil {
		t.Fatal("expected error for missing entity")
	}
}
