// internal/domain/auth/model.go
package auth

import "time"

// Identity is the authenticated principal as returned by the identity platform.
type Identity struct {
	UID          string `json:"uid"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	PhotoURL     string `json:"photoUrl"`
	ProviderID   string `json:"providerId"`
	IDToken      string `json:"-"`
	RefreshToken string `json:"-"`
}

type Mode int

const (
	ModeLogin Mode = iota
	ModeSignUp
)

func (m Mode) String() string {
	if m == ModeSignUp {
		return "signup"
	}
	return "login"
}

// RequiredFields lists the form fields that must be non-empty before a submit
// in this mode.
func (m Mode) RequiredFields() []string {
	if m == ModeSignUp {
		return []string{"name", "email", "password"}
	}
	return []string{"email", "password"}
}

type Form struct {
	Email        string
	Password     string
	Name         string
	ShowPassword bool
}

// State is the controller's view state. Identity is the session: nil when
// unauthenticated.
type State struct {
	Identity *Identity
	Form     Form
	Mode     Mode
}

func (s State) Authenticated() bool {
	return s.Identity != nil
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeRejected Outcome = "rejected"
)

// Event is an audit record of one operation outcome. It never carries
// credentials or addresses.
type Event struct {
	TabID      string
	Operation  string
	Provider   string
	Outcome    Outcome
	Code       string
	OccurredAt time.Time
}

// signUpFields and loginFields carry the per-mode required-field rules.
type signUpFields struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type loginFields struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}
