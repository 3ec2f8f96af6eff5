package session

import (
	"context"
	"sync"

	"uirecorder/internal/capture"
	"uirecorder/internal/models"
)

type fakeRecorder struct {
	mu       sync.Mutex
	sink     capture.Sink
	alive    bool
	stopped  bool
	language string
	onStop   func()
	found    bool
}

func (f *fakeRecorder) Stop() error {
	f.mu.Lock()
	onStop := f.onStop
	f.stopped = true
	f.alive = false
	f.mu.Unlock()
	if onStop != nil {
		onStop()
	}
	return nil
}

func (f *fakeRecorder) SetLanguage(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.language = code
}

func (f *fakeRecorder) Highlight(context.Context, string) (bool, error) {
	return f.found, nil
}

func (f *fakeRecorder) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *fakeRecorder) kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = false
}

type fakeLauncher struct {
	mu        sync.Mutex
	err       error
	recorders map[string]*fakeRecorder
	language  string
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{recorders: map[string]*fakeRecorder{}}
}

func (l *fakeLauncher) Launch(s *models.Session, sink capture.Sink) (Recorder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	rec := &fakeRecorder{sink: sink, alive: true, language: s.Language, found: true}
	l.recorders[s.ID] = rec
	return rec, nil
}

func (l *fakeLauncher) SetLanguage(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.language = code
	for _, r := range l.recorders {
		r.SetLanguage(code)
	}
}

func (l *fakeLauncher) recorder(id string) *fakeRecorder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recorders[id]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *fakePublisher) Publish(_ string, v interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, v.(Event))
}

func (p *fakePublisher) all() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}
