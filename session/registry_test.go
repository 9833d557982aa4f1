package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScanRegistryProcessed(t *testing.T) {
	r := NewScanRegistry()
	ref := Resolved(7, "5")

	assert.False(t, r.Processed("dev-1", ref))
	r.MarkProcessed("dev-1", ref)
	assert.True(t, r.Processed("dev-1", ref))

	// Other devices are independent.
	assert.False(t, r.Processed("dev-2", ref))

	// Re-resolution to a new id is a fresh scan.
	assert.False(t, r.Processed("dev-1", Resolved(8, "5")))
}

func TestScanRegistryCooldown(t *testing.T) {
	r := NewScanRegistry()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	assert.False(t, r.CoolingDown("dev-1", "5"))
	r.MarkCooldown("dev-1", "5")
	assert.True(t, r.CoolingDown("dev-1", "5"))

	// Inside the window it still cools down.
	now = now.Add(ScanCooldown - time.Second)
	assert.True(t, r.CoolingDown("dev-1", "5"))

	// Past the window a new scan-log write is allowed.
	now = now.Add(2 * time.Second)
	assert.False(t, r.CoolingDown("dev-1", "5"))
}

func TestScanRegistryReset(t *testing.T) {
	r := NewScanRegistry()
	ref := Resolved(7, "5")
	r.MarkProcessed("dev-1", ref)
	r.MarkCooldown("dev-1", "5")

	r.Reset("dev-1")
	assert.False(t, r.Processed("dev-1", ref))
	assert.False(t, r.CoolingDown("dev-1", "5"))
}
