package main

import (
	"context"
	"sync"
	"time"
)

type LoadingState struct {
	Loading  bool
	Progress int
	Message  string
}

// LoadingTracker broadcasts startup progress to its subscribers and keeps
// the loading screen up for at least minDuration so it does not flash.
type LoadingTracker struct {
	minDuration time.Duration
	now         func() time.Time

	mu      sync.Mutex
	state   LoadingState
	started time.Time
	subs    map[int]func(LoadingState)
	nextSub int
}

func NewLoadingTracker(minDuration time.Duration) *LoadingTracker {
	return &LoadingTracker{
		minDuration: minDuration,
		now:         time.Now,
		subs:        make(map[int]func(LoadingState)),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (t *LoadingTracker) Subscribe(fn func(LoadingState)) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (t *LoadingTracker) State() LoadingState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *LoadingTracker) set(state LoadingState) {
	t.mu.Lock()
	t.state = state
	subs := make([]func(LoadingState), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (t *LoadingTracker) Start(message string) {
	t.mu.Lock()
	t.started = t.now()
	t.mu.Unlock()
	t.set(LoadingState{Loading: true, Progress: 0, Message: message})
}

// Progress clamps p to 0..100. An empty message keeps the current one.
func (t *LoadingTracker) Progress(p int, message string) {
	state := t.State()
	state.Progress = min(100, max(0, p))
	if message != "" {
		state.Message = message
	}
	t.set(state)
}

// Stop waits out the rest of the minimum duration, then reports completion.
// It returns early with ctx's error if ctx ends first.
func (t *LoadingTracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	remaining := t.minDuration - t.now().Sub(t.started)
	t.mu.Unlock()

	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	t.set(LoadingState{Loading: false, Progress: 100})
	return nil
}
