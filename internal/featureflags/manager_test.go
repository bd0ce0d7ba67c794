package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageRollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout must be deterministic per subject")
	}
	assert.False(t, m.Enabled("canary", 0), "percentage rollout needs a subject")
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,X=on, y = 20% ,z=off, =on ")

	assert.Equal(t, map[string]string{"x": "on", "y": "20%", "z": "off"}, m.Raw())

	snap := m.Snapshot(7)
	assert.True(t, snap["x"])
	assert.False(t, snap["z"])
	assert.Len(t, snap, 3)
}

func TestEnabledOr_FallsBackWhenUnset(t *testing.T) {
	m := NewManager(PartnershipRateLimit + "=off")

	assert.True(t, m.EnabledOr(CapacityViewCache, 0, true))
	assert.False(t, m.EnabledOr(PartnershipRateLimit, 0, true))
	assert.True(t, m.Configured("PARTNERSHIP_RATE_LIMIT"))

	var nilManager *Manager
	assert.False(t, nilManager.Enabled(CapacityViewCache, 1))
	assert.True(t, nilManager.EnabledOr(CapacityViewCache, 1, true))
	assert.Empty(t, nilManager.Raw())
}
