package player

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Message_distinct_per_state(t *testing.T) {
	states := []Status{
		{State: StateIdle},
		{State: StateProbing},
		{State: StateStreamingReady},
		{State: StateProbeFailed, Reason: "boom"},
		{State: StateStreamError, Reason: "boom"},
	}
	seen := make(map[string]State)
	for _, s := range states {
		msg := s.Message()
		assert.NotEmpty(t, msg)
		if prev, dup := seen[msg]; dup {
			t.Errorf("%s and %s share message %q", prev, s.State, msg)
		}
		seen[msg] = s.State
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, Status{State: StateIdle}.Terminal())
	assert.False(t, Status{State: StateProbing}.Terminal())
	assert.False(t, Status{State: StateStreamingReady}.Terminal())
	assert.True(t, Status{State: StateProbeFailed}.Terminal())
	assert.True(t, Status{State: StateStreamError}.Terminal())
}

func TestEngineError_classes(t *testing.T) {
	cause := errors.New("connection reset")

	network := &EngineError{Kind: ErrorNetwork, Fatal: true, Details: "manifestLoadError", Err: cause}
	assert.ErrorIs(t, network, ErrStreamNetwork)
	assert.ErrorIs(t, network, cause)
	assert.Equal(t, "fatal network error: manifestLoadError: connection reset", network.Error())

	assert.ErrorIs(t, &EngineError{Kind: ErrorMedia}, ErrStreamMedia)
	assert.ErrorIs(t, &EngineError{Kind: ErrorOther, Fatal: true}, ErrStreamFatal)
	assert.NotErrorIs(t, &EngineError{Kind: ErrorMedia}, ErrStreamFatal)
}

func TestProbeError_message(t *testing.T) {
	assert.Equal(t, "failed to probe: Bad Gateway", (&ProbeError{Status: "Bad Gateway"}).Error())
	assert.Equal(t, "failed to probe: dial tcp: refused", (&ProbeError{Err: errors.New("dial tcp: refused")}).Error())
	assert.ErrorIs(t, &ProbeError{}, ErrProbe)
}
