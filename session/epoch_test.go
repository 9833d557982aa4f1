package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEpochOutdated(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	later := base.Add(time.Hour)

	// Device never joined a session: nothing to invalidate.
	assert.False(t, EpochOutdated(nil, &base))
	assert.False(t, EpochOutdated(nil, nil))

	// Same epoch: still the device's session.
	assert.False(t, EpochOutdated(&base, &base))

	// Remote advanced: staff reset the table under the device's feet.
	assert.True(t, EpochOutdated(&base, &later))

	// Remote cleared entirely: the session the device knew is gone.
	assert.True(t, EpochOutdated(&base, nil))

	// Remote older than local (clock skew on a re-created table): not a reset.
	earlier := base.Add(-time.Hour)
	assert.False(t, EpochOutdated(&base, &earlier))
}
