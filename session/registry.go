package session

import (
	"sync"
	"time"
)

// ScanCooldown throttles duplicate scan-log writes per label. Re-scans
// inside the window restore the active session but are not logged again.
const ScanCooldown = 2 * time.Minute

// ScanRegistry tracks, per device, which (label,id) scan identities were
// already processed this session and when each label was last logged.
// The cooldown key is written before the scan-log write completes, closing
// the race window between two concurrent scans of the same label.
type ScanRegistry struct {
	mu        sync.Mutex
	processed map[string]map[string]bool      // deviceKey -> identity key -> done
	cooldowns map[string]map[string]time.Time // deviceKey -> label -> last log
	now       func() time.Time
}

func NewScanRegistry() *ScanRegistry {
	return &ScanRegistry{
		processed: make(map[string]map[string]bool),
		cooldowns: make(map[string]map[string]time.Time),
		now:       time.Now,
	}
}

// Processed reports whether this device already handled this exact
// (label,id) combination.
func (r *ScanRegistry) Processed(deviceKey string, ref TableRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed[deviceKey][ref.IdentityKey()]
}

// MarkProcessed records the identity key after a scan fully succeeded.
// Denied scans are never marked, so the next attempt retries resolution.
func (r *ScanRegistry) MarkProcessed(deviceKey string, ref TableRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processed[deviceKey] == nil {
		r.processed[deviceKey] = make(map[string]bool)
	}
	r.processed[deviceKey][ref.IdentityKey()] = true
}

// CoolingDown reports whether the label was logged within the cooldown
// window; independent of the identity key.
func (r *ScanRegistry) CoolingDown(deviceKey, label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.cooldowns[deviceKey][label]
	return ok && r.now().Sub(last) < ScanCooldown
}

// MarkCooldown stamps the label now. Callers stamp before starting the
// scan-log write, not after it completes.
func (r *ScanRegistry) MarkCooldown(deviceKey, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cooldowns[deviceKey] == nil {
		r.cooldowns[deviceKey] = make(map[string]time.Time)
	}
	r.cooldowns[deviceKey][label] = r.now()
}

// Reset drops everything the registry knows about a device; used when its
// session ends or it switches to takeaway.
func (r *ScanRegistry) Reset(deviceKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.processed, deviceKey)
	delete(r.cooldowns, deviceKey)
}
