package auth

import (
	"context"
	"sync"
)

type fakeIDP struct {
	mu    sync.Mutex
	calls []string

	popup   func(ctx context.Context, p Provider) (*Identity, error)
	signIn  func(ctx context.Context, email, password string) (*Identity, error)
	create  func(ctx context.Context, email, password string) (*Identity, error)
	update  func(ctx context.Context, identity *Identity, name string) error
	signOut func(ctx context.Context) error
}

func (f *fakeIDP) called(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeIDP) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeIDP) SignInWithPopup(ctx context.Context, p Provider) (*Identity, error) {
	f.called("popup:" + p.Key())
	if f.popup == nil {
		return &Identity{UID: "uid-" + p.Key(), ProviderID: p.PlatformID()}, nil
	}
	return f.popup(ctx, p)
}

func (f *fakeIDP) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*Identity, error) {
	f.called("signIn")
	if f.signIn == nil {
		return &Identity{UID: "uid-1", Email: email}, nil
	}
	return f.signIn(ctx, email, password)
}

func (f *fakeIDP) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*Identity, error) {
	f.called("create")
	if f.create == nil {
		return &Identity{UID: "uid-new", Email: email}, nil
	}
	return f.create(ctx, email, password)
}

func (f *fakeIDP) UpdateProfile(ctx context.Context, identity *Identity, name string) error {
	f.called("update")
	if f.update == nil {
		identity.DisplayName = name
		return nil
	}
	return f.update(ctx, identity, name)
}

func (f *fakeIDP) SignOut(ctx context.Context) error {
	f.called("signOut")
	if f.signOut == nil {
		return nil
	}
	return f.signOut(ctx)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

type recordingRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingRecorder) Record(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
