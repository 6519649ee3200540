package watcher

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurstIntoOneBatch(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.Add("/data/processed/rj-2025.txt")
	d.Add("/data/processed/rj-2025.txt")
	d.Add("/data/processed/rd-2025.txt")

	select {
	case batch := <-d.Output():
		sort.Strings(batch)
		assert.Equal(t, []string{
			"/data/processed/rd-2025.txt",
			"/data/processed/rj-2025.txt",
		}, batch)
	case <-time.After(time.Second):
		t.Fatal("no batch emitted")
	}

	// Nothing else pending.
	select {
	case batch := <-d.Output():
		t.Fatalf("unexpected second batch: %v", batch)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_NewEventsResetTheWindow(t *testing.T) {
	d := NewDebouncer(60 * time.Millisecond)
	defer d.Stop()

	d.Add("/a")
	time.Sleep(30 * time.Millisecond)
	d.Add("/b")

	// 30ms after the second add the original window has elapsed but the
	// reset one has not.
	select {
	case batch := <-d.Output():
		t.Fatalf("batch emitted before window closed: %v", batch)
	case <-time.After(30 * time.Millisecond):
	}

	select {
	case batch := <-d.Output():
		assert.Len(t, batch, 2)
	case <-time.After(time.Second):
		t.Fatal("no batch emitted")
	}
}

func TestDebouncer_SeparateBurstsSeparateBatches(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add("/a")
	first := <-d.Output()
	require.Equal(t, []string{"/a"}, first)

	d.Add("/b")
	second := <-d.Output()
	require.Equal(t, []string{"/b"}, second)
}

func TestDebouncer_StopClosesOutput(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	d.Stop()
	_, open := <-d.Output()
	assert.False(t, open)

	// Adds after stop are ignored rather than panicking.
	d.Add("/a")
	d.Stop()
}
