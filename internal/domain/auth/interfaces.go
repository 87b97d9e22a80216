// internal/domain/auth/interfaces.go
package auth

import "context"

type Validator interface {
	Validate(interface{}) error
}

// IdentityProvider is the external identity platform as seen by one browser
// tab. Failures carry a platform code (see pkg/errors.ProviderError).
type IdentityProvider interface {
	SignInWithPopup(ctx context.Context, p Provider) (*Identity, error)
	SignInWithEmailAndPassword(ctx context.Context, email, password string) (*Identity, error)
	CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*Identity, error)
	// UpdateProfile sets identity.DisplayName on success.
	UpdateProfile(ctx context.Context, identity *Identity, displayName string) error
	SignOut(ctx context.Context) error
}

type Notifier interface {
	Notify(n Notification)
}

type EventRecorder interface {
	Record(ctx context.Context, e Event) error
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }
