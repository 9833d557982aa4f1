package session

import "time"

// EpochOutdated reports whether the remote session epoch has advanced past
// the one this device recorded, meaning the table was reset (staff closed
// it) and any local cart/order state belongs to a dead session.
//
// A nil local epoch means the device never joined a session, so nothing is
// outdated. A nil remote epoch means the table has no session; local state
// is stale only if the device thought it was in one.
func EpochOutdated(local, remote *time.Time) bool {
	if local == nil {
		return false
	}
	if remote == nil {
		return true
	}
	return remote.After(*local)
}
