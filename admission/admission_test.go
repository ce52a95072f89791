package admission

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestAdmission(maxProcesses int) *Admission {
	return &Admission{maxProcesses: maxProcesses}
}

func TestTryAcquireDeniesOnceAtCapacity(t *testing.T) {
	a := newTestAdmission(1)
	require.True(t, a.TryAcquire())
	require.False(t, a.TryAcquire())
}

func TestReleaseReturnsSlotToPool(t *testing.T) {
	a := newTestAdmission(1)
	require.True(t, a.TryAcquire())
	a.Release()
	require.Equal(t, 0, a.ActiveCount())
}

func TestQueueingDequeuesOnRelease(t *testing.T) {
	a := newTestAdmission(1)
	require.True(t, a.TryAcquire())

	var mu sync.Mutex
	resumed := false
	done := make(chan struct{})
	a.Enqueue(QueuedItem{RequestID: "b", Resume: func() {
		mu.Lock()
		resumed = true
		mu.Unlock()
		close(done)
	}})
	require.Equal(t, 1, a.QueueLen())

	a.Release()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred upload was never resumed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.True(t, resumed)
	require.Equal(t, 1, a.ActiveCount())
}
