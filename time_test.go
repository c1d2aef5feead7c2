package sculpt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime_Advance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewTime(start)

	dt := clock.Advance(start.Add(16 * time.Millisecond))
	assert.Equal(t, 16*time.Millisecond, dt)
	assert.Equal(t, dt, clock.Dt)
	assert.Equal(t, start.Add(16*time.Millisecond), clock.Time)
}
