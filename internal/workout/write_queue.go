package workout

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
)

const snapshotWriteTimeout = 10 * time.Second

type snapshotSaver interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
}

// writeQueue serializes snapshot writes for one tracker: at most one
// write in flight, the newest pending snapshot wins. Failed writes are
// logged and dropped, never retried.
type writeQueue struct {
	saver   snapshotSaver
	metrics *metrics.Manager

	mutex    sync.Mutex
	inFlight bool
	pending  *Snapshot
	wg       sync.WaitGroup
}

func newWriteQueue(saver snapshotSaver, metricsManager *metrics.Manager) *writeQueue {
	return &writeQueue{
		saver:   saver,
		metrics: metricsManager,
	}
}

func (q *writeQueue) enqueue(snapshot Snapshot) {
	q.mutex.Lock()
	if q.inFlight {
		q.pending = &snapshot
		q.mutex.Unlock()
		return
	}
	q.inFlight = true
	q.mutex.Unlock()

	q.wg.Add(1)
	go q.drainFrom(snapshot)
}

func (q *writeQueue) drainFrom(snapshot Snapshot) {
	defer q.wg.Done()
	for {
		q.save(snapshot)

		q.mutex.Lock()
		if q.pending == nil {
			q.inFlight = false
			q.mutex.Unlock()
			return
		}
		snapshot = *q.pending
		q.pending = nil
		q.mutex.Unlock()
	}
}

func (q *writeQueue) save(snapshot Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotWriteTimeout)
	defer cancel()

	if err := q.saver.SaveSnapshot(ctx, snapshot); err != nil {
		log.Errorf(
			"save workout snapshot [user %s, session %s]: %s",
			snapshot.UserID, snapshot.SessionID, err,
		)
		q.metrics.CounterSnapshotSaveErrors.Inc()
		return
	}
	q.metrics.CounterSnapshotsSaved.Inc()
}

// wait blocks until the in-flight write and everything queued behind it
// are done.
func (q *writeQueue) wait() {
	q.wg.Wait()
}
