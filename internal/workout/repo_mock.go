package workout

import (
	"context"
	"errors"
	"sync"
	"time"
)

type repoMock struct {
	mutex     sync.Mutex
	snapshots []Snapshot
	completed []CompletedWorkout

	// saveGate, when set, blocks SaveSnapshot until released
	saveGate chan struct{}
	saveErr  error
}

func newRepoMock() *repoMock {
	return &repoMock{}
}

func (r *repoMock) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	if r.saveGate != nil {
		<-r.saveGate
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	snapshot.ID = len(r.snapshots) + 1
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *repoMock) LatestIncompleteSnapshot(_ context.Context, userID string, day time.Time) (*Snapshot, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		s := r.snapshots[i]
		if s.UserID != userID || s.IsCompleted {
			continue
		}
		sYear, sMonth, sDay := s.CreatedAt.Date()
		dYear, dMonth, dDay := day.Date()
		if sYear == dYear && sMonth == dMonth && sDay == dDay {
			return &s, nil
		}
	}
	return nil, ErrSnapshotNotFound
}

func (r *repoMock) SaveCompleted(_ context.Context, completed CompletedWorkout) (*CompletedWorkout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	completed.ID = len(r.completed) + 1
	r.completed = append(r.completed, completed)
	return &completed, nil
}

func (r *repoMock) ListCompleted(_ context.Context, userID string, page, size int) ([]CompletedWorkout, int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var all []CompletedWorkout
	for i := len(r.completed) - 1; i >= 0; i-- {
		if r.completed[i].UserID == userID {
			all = append(all, r.completed[i])
		}
	}
	total := len(all)
	offset := (page - 1) * size
	if offset >= total {
		return nil, total, nil
	}
	end := offset + size
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *repoMock) snapshotCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.snapshots)
}

func (r *repoMock) savedSnapshots() []Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Snapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

func (r *repoMock) completedWorkouts() []CompletedWorkout {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]CompletedWorkout, len(r.completed))
	copy(out, r.completed)
	return out
}

type awarderMock struct {
	mutex  sync.Mutex
	awards []awardCall
	err    error
}

type awardCall struct {
	userID string
	xp     int
}

func newAwarderMock() *awarderMock {
	return &awarderMock{}
}

func (a *awarderMock) AwardWorkoutCompletion(_ context.Context, userID string, xp int, _ time.Time) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.err != nil {
		return a.err
	}
	a.awards = append(a.awards, awardCall{userID: userID, xp: xp})
	return nil
}

func (a *awarderMock) calls() []awardCall {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	out := make([]awardCall, len(a.awards))
	copy(out, a.awards)
	return out
}

var errSaveFailed = errors.New("save failed")
