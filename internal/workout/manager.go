package workout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
)

var (
	ErrWorkoutInProgress = errors.New("workout already in progress")
	ErrNoActiveWorkout   = errors.New("no active workout")
)

type workoutsRepo interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	LatestIncompleteSnapshot(ctx context.Context, userID string, day time.Time) (*Snapshot, error)
	SaveCompleted(ctx context.Context, completed CompletedWorkout) (*CompletedWorkout, error)
	ListCompleted(ctx context.Context, userID string, page, size int) ([]CompletedWorkout, int, error)
}

// Manager owns the active trackers, one per user at most.
type Manager struct {
	repo    workoutsRepo
	awarder xpAwarder
	metrics *metrics.Manager

	mutex  sync.Mutex
	active map[string]*Tracker

	// now is swapped out in tests
	now func() time.Time
}

func NewManager(repo workoutsRepo, awarder xpAwarder, metricsManager *metrics.Manager) *Manager {
	return &Manager{
		repo:    repo,
		awarder: awarder,
		metrics: metricsManager,
		active:  make(map[string]*Tracker),
		now:     time.Now,
	}
}

// Start creates a tracker with a fresh session id and begins ticking.
func (m *Manager) Start(_ context.Context, userID, workoutType, notes string) (*Tracker, error) {
	plan, err := PlanForType(workoutType)
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	if _, ok := m.active[userID]; ok {
		m.mutex.Unlock()
		return nil, ErrWorkoutInProgress
	}
	tracker := m.newTrackerLocked(userID, uuid.NewString(), plan, notes)
	m.active[userID] = tracker
	m.mutex.Unlock()
	m.metrics.GaugeActiveWorkouts.Inc()

	if err := tracker.Start(); err != nil {
		m.remove(userID)
		return nil, err
	}
	return tracker, nil
}

// Restore picks up the user's latest incomplete snapshot from today and
// continues that session under its original session id.
func (m *Manager) Restore(ctx context.Context, userID string) (*Tracker, error) {
	snapshot, err := m.repo.LatestIncompleteSnapshot(ctx, userID, m.now())
	if err != nil {
		return nil, err
	}
	plan, err := PlanForType(snapshot.WorkoutType)
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	if _, ok := m.active[userID]; ok {
		m.mutex.Unlock()
		return nil, ErrWorkoutInProgress
	}
	tracker := m.newTrackerLocked(userID, snapshot.SessionID, plan, "")
	m.active[userID] = tracker
	m.mutex.Unlock()
	m.metrics.GaugeActiveWorkouts.Inc()

	if err := tracker.StartRestored(snapshot); err != nil {
		m.remove(userID)
		return nil, err
	}
	return tracker, nil
}

// Resumable returns today's latest incomplete snapshot without starting
// anything.
func (m *Manager) Resumable(ctx context.Context, userID string) (*Snapshot, error) {
	return m.repo.LatestIncompleteSnapshot(ctx, userID, m.now())
}

func (m *Manager) Tracker(userID string) (*Tracker, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	tracker, ok := m.active[userID]
	if !ok {
		return nil, ErrNoActiveWorkout
	}
	return tracker, nil
}

func (m *Manager) History(ctx context.Context, userID string, page, size int) ([]CompletedWorkout, int, error) {
	return m.repo.ListCompleted(ctx, userID, page, size)
}

func (m *Manager) newTrackerLocked(userID, sessionID string, plan Plan, notes string) *Tracker {
	return NewTracker(NewTrackerParams{
		UserID:         userID,
		SessionID:      sessionID,
		Plan:           plan,
		Notes:          notes,
		Repo:           m.repo,
		SnapshotSaver:  m.repo,
		Awarder:        m.awarder,
		MetricsManager: m.metrics,
		OnDone:         m.remove,
	})
}

func (m *Manager) remove(userID string) {
	m.mutex.Lock()
	_, ok := m.active[userID]
	delete(m.active, userID)
	m.mutex.Unlock()
	if ok {
		m.metrics.GaugeActiveWorkouts.Dec()
	}
}

// Shutdown stops all tick loops and drains pending snapshot writes.
func (m *Manager) Shutdown() {
	m.mutex.Lock()
	trackers := make([]*Tracker, 0, len(m.active))
	for _, tracker := range m.active {
		trackers = append(trackers, tracker)
	}
	m.mutex.Unlock()

	for _, tracker := range trackers {
		tracker.stopLoop()
		tracker.waitForWrites()
	}
}
