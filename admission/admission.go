// Package admission implements Admission (spec §4.8): a process-global gate
// bounding concurrent Segmenter work by installed memory and live memory
// pressure, with a FIFO ProcessingQueue for deferred work. The Pipeline holds
// one slot per Upload from its primary segment through its background
// renditions; the early Thumbnailer runs without a slot.
package admission

import (
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/middleware"
	"sync"
)

// QueuedItem is one Upload deferred at Pipeline step 3. Resume re-enters the
// Pipeline at the Admission step.
type QueuedItem struct {
	RequestID string
	Resume    func()
}

type Admission struct {
	mu           sync.Mutex
	active       int
	maxProcesses int
	queue        []QueuedItem
}

// New derives maxProcesses from the host's installed memory (spec §4.8).
func New() *Admission {
	maxProcesses := 1
	if info, err := middleware.GetSystemInfo(); err == nil && info.MemInfo != nil {
		maxProcesses = config.MaxProcessesForMemory(info.MemInfo.Total)
	}
	return &Admission{maxProcesses: maxProcesses}
}

// TryAcquire admits the caller if active < maxProcesses and used memory is
// at or below the configured ceiling. Live memory usage is sampled on every
// call; it is not cached.
func (a *Admission) TryAcquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active >= a.maxProcesses {
		return false
	}
	info, err := middleware.GetSystemInfo()
	if err != nil {
		log.LogNoRequestID("admission: system info unavailable, denying admission", "error", err.Error())
		return false
	}
	if info.MemInfo.UsedPercent > config.MaxMemoryUsedPercent {
		return false
	}
	a.active++
	return true
}

// Release returns a slot to the pool and attempts to dequeue the next
// deferred Upload, if any. Every caller that acquired via TryAcquire must
// call Release exactly once, on every exit path (spec §4.8/§9 scoped
// acquisition requirement).
func (a *Admission) Release() {
	a.mu.Lock()
	a.active--
	a.mu.Unlock()
	a.tryDequeue()
}

// Enqueue appends a deferred Upload to the FIFO queue (spec §4.8: "append to
// ProcessingQueue"). Called by the Pipeline immediately after a failed
// TryAcquire at step 3.
func (a *Admission) Enqueue(item QueuedItem) {
	a.mu.Lock()
	a.queue = append(a.queue, item)
	a.mu.Unlock()
}

// ActiveCount reports the current admitted-process count, for tests and
// introspection.
func (a *Admission) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// QueueLen reports the current ProcessingQueue depth.
func (a *Admission) QueueLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *Admission) tryDequeue() {
	a.mu.Lock()
	if len(a.queue) == 0 {
		a.mu.Unlock()
		return
	}
	item := a.queue[0]
	a.queue = a.queue[1:]
	a.mu.Unlock()

	go a.attemptDeferred(item, 0)
}

// attemptDeferred retries a dequeued Upload up to
// config.AdmissionMaxDeferredAttempts times with config.AdmissionRetryWait
// between tries, then drops and logs it (spec §4.8).
func (a *Admission) attemptDeferred(item QueuedItem, attempt int) {
	if a.TryAcquire() {
		item.Resume()
		return
	}
	if attempt >= config.AdmissionMaxDeferredAttempts-1 {
		log.LogNoRequestID("admission: dropping deferred upload, exceeded max attempts",
			"request_id", item.RequestID, "attempts", attempt+1)
		return
	}
	time.Sleep(config.AdmissionRetryWait)
	a.attemptDeferred(item, attempt+1)
}
