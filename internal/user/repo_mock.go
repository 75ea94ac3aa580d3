package user

import (
	"context"
	"sync"
)

type repoMock struct {
	mutex sync.RWMutex
	users map[string]*User
}

func newRepoMock() *repoMock {
	return &repoMock{
		users: make(map[string]*User),
	}
}

func (r *repoMock) Add(_ context.Context, u User) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.users[u.ID] = &u
	return &u, nil
}

func (r *repoMock) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) Get(_ context.Context, id string) (*User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *repoMock) UpdateProfile(_ context.Context, u *User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	r.users[u.ID] = u
	return nil
}
