package sculpt

import (
	"sync"
	"testing"

	"github.com/gekko3d/sculpt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_DrainFIFO(t *testing.T) {
	q := NewEventQueue(8)
	q.OnStateChange(StateDismantling)
	q.OnCountChange(12)
	q.OnColorPicked(0xff0000, core.Glow)

	evs := q.Drain()
	require.Len(t, evs, 3)
	assert.Equal(t, Event{Kind: EventState, State: StateDismantling}, evs[0])
	assert.Equal(t, 12, evs[1].Count)
	assert.Equal(t, core.Glow, evs[2].Material)
	assert.Nil(t, q.Drain())
}

func TestEventQueue_OverwritesOldest(t *testing.T) {
	q := NewEventQueue(3)
	for i := 1; i <= 5; i++ {
		q.OnCountChange(i)
	}

	evs := q.Drain()
	require.Len(t, evs, 3)
	assert.Equal(t, []int{3, 4, 5}, []int{evs[0].Count, evs[1].Count, evs[2].Count})
	assert.Equal(t, 2, q.Overwritten())
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_ConcurrentPush(t *testing.T) {
	q := NewEventQueue(1000)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.OnSelectionChange(i)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 400)
}
