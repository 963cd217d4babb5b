package monitoring

import (
	"testing"

	"github.com/sebringj/localstack/internal/storage"
)

func TestNewMaintenanceRejectsBadSchedule(t *testing.T) {
	if _, err := NewMaintenance(storage.NewMemoryEngine(), "not a schedule"); err == nil {
		t.Fatal("NewMaintenance accepted a malformed schedule")
	}
}

func TestMaintenanceStartStop(t *testing.T) {
	m, err := NewMaintenance(storage.NewMemoryEngine(), "@every 1h")
	if err != nil {
		t.Fatalf("NewMaintenance: %v", err)
	}
	m.Start()
	m.Stop()
}

func TestRunGCNoop(t *testing.T) {
	m, err := NewMaintenance(storage.NewMemoryEngine(), "@every 1h")
	if err != nil {
		t.Fatalf("NewMaintenance: %v", err)
	}
	// The memory engine has nothing to collect; the run must not panic or
	// log an error path failure.
	m.runGC()
}
