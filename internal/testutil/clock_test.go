package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualTimer_FiresOnlyOnDemand(t *testing.T) {
	m := NewManualTimer()
	done, _ := m.Start(20 * time.Millisecond)

	select {
	case <-done:
		t.Fatal("deadline fired without Fire()")
	default:
	}
	assert.Equal(t, 1, m.Pending())

	assert.Equal(t, 1, m.Fire())
	select {
	case <-done:
	default:
		t.Fatal("deadline should be expired")
	}
	assert.Equal(t, 0, m.Pending())
}

func TestManualTimer_StoppedDeadlineNeverFires(t *testing.T) {
	m := NewManualTimer()
	done, stop := m.Start(time.Second)
	stop()

	assert.Equal(t, 0, m.Fire())
	select {
	case <-done:
		t.Fatal("stopped deadline fired")
	default:
	}
}

func TestExpiredTimer(t *testing.T) {
	m := NewExpiredTimer()
	done, stop := m.Start(200 * time.Millisecond)
	defer stop()

	select {
	case <-done:
	default:
		t.Fatal("expired timer should start expired")
	}
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, m.Requested())
}

func TestFixedIDGenerator(t *testing.T) {
	g := NewFixedIDGenerator("s-1", "s-2")
	assert.Equal(t, "s-1", g.Generate())
	assert.Equal(t, "s-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
