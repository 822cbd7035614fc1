package sysmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	assert.True(t, NormalReason().IsNormal())
	assert.False(t, ShutdownReason().IsNormal())

	assert.True(t, ShutdownReason().IsShutdown())
	assert.True(t, Reason{Type: Shutdown, Details: SupMaxRestart}.IsShutdown())
	assert.False(t, KillReason().IsShutdown())

	assert.Equal(t, "kill", KillReason().String())
	assert.Equal(t, "shutdown: sup_reached_max_restarts", Reason{Type: Shutdown, Details: SupMaxRestart}.String())
}

func TestSystemMessages(t *testing.T) {
	for _, msg := range []SystemMessage{Exit{}, Down{}, Timeout{}} {
		assert.NotNil(t, msg)
	}
}
