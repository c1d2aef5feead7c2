package sculpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_TransitionTable(t *testing.T) {
	cases := []struct {
		from State
		mode Mode
		trig trigger
		want State
		ok   bool
	}{
		{StateStable, ModeView, triggerDismantle, StateDismantling, true},
		{StateStable, ModeBuild, triggerDismantle, StateStable, false},
		{StateStable, ModeView, triggerRebuild, StateRebuilding, true},
		{StateStable, ModeBuild, triggerRebuild, StateRebuilding, true},
		{StateDismantling, ModeView, triggerRebuild, StateRebuilding, true},
		{StateDismantling, ModeView, triggerDismantle, StateDismantling, false},
		{StateRebuilding, ModeView, triggerRebuild, StateRebuilding, false},
		{StateRebuilding, ModeView, triggerDismantle, StateRebuilding, false},
		{StateRebuilding, ModeView, triggerSettle, StateStable, true},
		{StateStable, ModeView, triggerSettle, StateStable, false},
		{StateDismantling, ModeView, triggerRestore, StateStable, true},
		{StateRebuilding, ModeBuild, triggerRestore, StateStable, true},
	}
	for _, c := range cases {
		got, err := next(c.from, c.mode, c.trig)
		if c.ok {
			require.NoError(t, err, "%s --%s-->", c.from, c.trig)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s --%s-->", c.from, c.trig)
		}
		assert.Equal(t, c.want, got, "%s --%s-->", c.from, c.trig)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "STABLE", StateStable.String())
	assert.Equal(t, "DISMANTLING", StateDismantling.String())
	assert.Equal(t, "REBUILDING", StateRebuilding.String())
	assert.Equal(t, "State(9)", State(9).String())
}
