package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCollapsesBurst(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	start := time.Unix(1_700_000_000, 0)

	assert.True(t, d.Accept(start))
	assert.False(t, d.Accept(start.Add(1*time.Millisecond)))
	assert.False(t, d.Accept(start.Add(99*time.Millisecond)))
	assert.True(t, d.Accept(start.Add(100*time.Millisecond)))
}

func TestDebouncerMeasuresFromLastAccepted(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	start := time.Unix(1_700_000_000, 0)

	assert.True(t, d.Accept(start))
	// rejected events do not extend the window
	assert.False(t, d.Accept(start.Add(60*time.Millisecond)))
	assert.True(t, d.Accept(start.Add(120*time.Millisecond)))
}

func TestDebouncerWindow(t *testing.T) {
	d := NewDebouncer(time.Second)
	now := time.Unix(1_700_000_000, 0)

	assert.Equal(t, time.Second, d.Window())
	assert.True(t, d.Accept(now))
	assert.False(t, d.Accept(now.Add(d.Window()-time.Nanosecond)))
	assert.True(t, d.Accept(now.Add(d.Window())))
}

func TestDebouncerZeroWindowAcceptsEverything(t *testing.T) {
	d := NewDebouncer(0)
	now := time.Unix(1_700_000_000, 0)

	for i := 0; i < 5; i++ {
		assert.True(t, d.Accept(now))
	}
}
