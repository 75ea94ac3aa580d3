package workout

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
)

const (
	tickInterval     = time.Second
	autosaveInterval = 5 * time.Second

	// sessions shorter than this are discarded on end without a trace
	minElapsedForEndSnapshot = 60

	xpPerPlanMinute = 3
)

var ErrInvalidTransition = errors.New("invalid workout state transition")

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

type completedSaver interface {
	SaveCompleted(ctx context.Context, completed CompletedWorkout) (*CompletedWorkout, error)
}

type xpAwarder interface {
	AwardWorkoutCompletion(ctx context.Context, userID string, xp int, completedAt time.Time) error
}

// Tracker is the per-session workout state machine:
// Idle → Running ⇄ Paused → Completed, with End bailing out of
// Running/Paused. One tracker owns one tick/autosave goroutine.
type Tracker struct {
	userID    string
	sessionID string
	plan      Plan
	notes     string

	repo    completedSaver
	queue   *writeQueue
	awarder xpAwarder
	metrics *metrics.Manager

	// onDone is called once, after End or completion
	onDone func(userID string)

	mutex          sync.Mutex
	state          State
	seq            *sequencer
	segmentElapsed int
	totalElapsed   int

	stop     chan struct{}
	stopOnce sync.Once
}

type NewTrackerParams struct {
	UserID         string
	SessionID      string
	Plan           Plan
	Notes          string
	Repo           completedSaver
	SnapshotSaver  snapshotSaver
	Awarder        xpAwarder
	MetricsManager *metrics.Manager
	OnDone         func(userID string)
}

func NewTracker(params NewTrackerParams) *Tracker {
	return &Tracker{
		userID:    params.UserID,
		sessionID: params.SessionID,
		plan:      params.Plan,
		notes:     params.Notes,
		repo:      params.Repo,
		queue:     newWriteQueue(params.SnapshotSaver, params.MetricsManager),
		awarder:   params.Awarder,
		metrics:   params.MetricsManager,
		onDone:    params.OnDone,
		state:     StateIdle,
		seq:       newSequencer(params.Plan),
		stop:      make(chan struct{}),
	}
}

// Start resets the sequencer and timers and begins the tick loop.
func (t *Tracker) Start() error {
	t.mutex.Lock()
	if t.state != StateIdle {
		t.mutex.Unlock()
		return ErrInvalidTransition
	}
	t.state = StateRunning
	t.seq = newSequencer(t.plan)
	t.segmentElapsed = 0
	t.totalElapsed = 0
	t.mutex.Unlock()

	t.metrics.CounterWorkoutsStarted.Inc()
	go t.run()

	log.Debugf("workout [%s] started for user %s", t.sessionID, t.userID)
	return nil
}

// StartRestored begins the tick loop from a previously saved snapshot.
// The in-segment counter restarts at zero, everything else is restored.
func (t *Tracker) StartRestored(snapshot *Snapshot) error {
	t.mutex.Lock()
	if t.state != StateIdle {
		t.mutex.Unlock()
		return ErrInvalidTransition
	}
	t.state = StateRunning
	t.seq = newSequencer(t.plan)

	completed := make([]bool, len(snapshot.ExerciseState))
	for i, ex := range snapshot.ExerciseState {
		completed[i] = ex.Completed
	}
	t.seq.restore(snapshot.CurrentExerciseIndex, snapshot.IsResting, completed)
	t.segmentElapsed = 0
	t.totalElapsed = snapshot.TotalElapsedSeconds
	t.mutex.Unlock()

	t.metrics.CounterWorkoutsStarted.Inc()
	go t.run()

	log.Debugf("workout [%s] restored for user %s at %ds", t.sessionID, t.userID, snapshot.TotalElapsedSeconds)
	return nil
}

func (t *Tracker) run() {
	tick := time.NewTicker(tickInterval)
	defer tick.Stop()
	autosave := time.NewTicker(autosaveInterval)
	defer autosave.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-tick.C:
			t.Tick()
		case <-autosave.C:
			t.autosave()
		}
	}
}

// Tick advances both counters by one second and lets the sequencer act
// on the segment boundary. Ticks outside Running are dropped.
func (t *Tracker) Tick() {
	t.mutex.Lock()
	if t.state != StateRunning {
		t.mutex.Unlock()
		return
	}

	t.segmentElapsed++
	t.totalElapsed++

	if t.segmentElapsed < t.seq.activeSegmentSeconds() {
		t.mutex.Unlock()
		return
	}

	exhausted := t.seq.advance()
	t.segmentElapsed = 0
	if !exhausted {
		t.mutex.Unlock()
		return
	}

	t.state = StateCompleted
	completed := CompletedWorkout{
		UserID:          t.userID,
		SessionID:       t.sessionID,
		WorkoutType:     t.plan.Type,
		DurationSeconds: t.totalElapsed,
		CaloriesBurned:  t.plan.CaloriesBurned(t.totalElapsed),
		ExerciseData:    t.seq.exerciseStates(),
		Notes:           t.notes,
		CompletedAt:     time.Now(),
	}
	t.mutex.Unlock()

	t.stopLoop()
	t.complete(completed)
}

func (t *Tracker) complete(completed CompletedWorkout) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotWriteTimeout)
	defer cancel()

	if _, err := t.repo.SaveCompleted(ctx, completed); err != nil {
		log.Errorf("save completed workout [user %s, session %s]: %s", t.userID, t.sessionID, err)
	}

	xpEarned := t.plan.DurationMinutes() * xpPerPlanMinute
	if err := t.awarder.AwardWorkoutCompletion(ctx, t.userID, xpEarned, completed.CompletedAt); err != nil {
		log.Errorf("award workout completion xp [user %s]: %s", t.userID, err)
	}

	t.metrics.CounterWorkoutsCompleted.Inc()
	log.Debugf("workout [%s] completed for user %s, %d xp", t.sessionID, t.userID, xpEarned)

	if t.onDone != nil {
		t.onDone(t.userID)
	}
}

// Pause freezes the counters and immediately enqueues a snapshot.
func (t *Tracker) Pause() error {
	t.mutex.Lock()
	if t.state != StateRunning {
		t.mutex.Unlock()
		return ErrInvalidTransition
	}
	t.state = StatePaused
	snapshot := t.snapshotLocked()
	t.mutex.Unlock()

	t.queue.enqueue(snapshot)
	return nil
}

// Resume continues a paused workout without touching any counters.
// Nothing is persisted, the next write happens on the regular autosave
// interval or the next pause/end.
func (t *Tracker) Resume() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.state != StatePaused {
		return ErrInvalidTransition
	}
	t.state = StateRunning
	return nil
}

// End terminates the session early. Sessions longer than a minute leave
// exactly one final snapshot behind so they can be picked up later,
// shorter ones vanish. No experience is awarded either way.
func (t *Tracker) End() error {
	t.mutex.Lock()
	if t.state != StateRunning && t.state != StatePaused {
		t.mutex.Unlock()
		return ErrInvalidTransition
	}
	t.state = StateIdle
	var snapshot *Snapshot
	if t.totalElapsed > minElapsedForEndSnapshot {
		s := t.snapshotLocked()
		snapshot = &s
	}
	t.mutex.Unlock()

	t.stopLoop()
	if snapshot != nil {
		t.queue.enqueue(*snapshot)
	}

	log.Debugf("workout [%s] ended for user %s", t.sessionID, t.userID)
	if t.onDone != nil {
		t.onDone(t.userID)
	}
	return nil
}

func (t *Tracker) autosave() {
	t.mutex.Lock()
	if t.state != StateRunning {
		t.mutex.Unlock()
		return
	}
	snapshot := t.snapshotLocked()
	t.mutex.Unlock()

	t.queue.enqueue(snapshot)
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:             t.sessionID,
		UserID:                t.userID,
		WorkoutType:           t.plan.Type,
		CurrentExerciseIndex:  t.seq.index,
		SegmentElapsedSeconds: t.segmentElapsed,
		IsResting:             t.seq.resting,
		TotalElapsedSeconds:   t.totalElapsed,
		ExerciseState:         t.seq.exerciseStates(),
		IsCompleted:           false,
		CreatedAt:             time.Now(),
	}
}

// stopLoop is safe to call more than once.
func (t *Tracker) stopLoop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

type Status struct {
	SessionID             string          `json:"sessionId"`
	WorkoutType           string          `json:"workoutType"`
	State                 State           `json:"state"`
	CurrentExerciseIndex  int             `json:"currentExerciseIndex"`
	SegmentElapsedSeconds int             `json:"segmentElapsedSeconds"`
	IsResting             bool            `json:"isResting"`
	TotalElapsedSeconds   int             `json:"totalElapsedSeconds"`
	Exercises             []ExerciseState `json:"exercises"`
}

func (t *Tracker) Status() Status {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return Status{
		SessionID:             t.sessionID,
		WorkoutType:           t.plan.Type,
		State:                 t.state,
		CurrentExerciseIndex:  t.seq.index,
		SegmentElapsedSeconds: t.segmentElapsed,
		IsResting:             t.seq.resting,
		TotalElapsedSeconds:   t.totalElapsed,
		Exercises:             t.seq.exerciseStates(),
	}
}

// waitForWrites is a test hook, it blocks until queued snapshot writes
// have drained.
func (t *Tracker) waitForWrites() {
	t.queue.wait()
}
