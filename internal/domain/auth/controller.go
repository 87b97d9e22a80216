// internal/domain/auth/controller.go
package auth

import (
	"context"
	"sync"
	"time"

	"authflow-server/pkg/errors"

	"github.com/sirupsen/logrus"
)

const (
	opProviderLogin = "provider_login"
	opSignUp        = "signup"
	opLogin         = "login"
	opLogout        = "logout"

	codeValidation = "validation"
	codeInFlight   = "in_flight"
)

// Controller drives the auth flow of one browser tab. Every operation recovers
// its own failures and reports them as exactly one notification.
type Controller struct {
	idp       IdentityProvider
	notifier  Notifier
	validator Validator
	recorder  EventRecorder
	log       *logrus.Entry
	tabID     string
	now       func() time.Time

	mu         sync.Mutex
	state      State
	submitting bool
}

type Option func(*Controller)

func WithRecorder(r EventRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Controller) { c.log = l }
}

func WithTabID(id string) Option {
	return func(c *Controller) { c.tabID = id }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(idp IdentityProvider, n Notifier, v Validator, opts ...Option) *Controller {
	c := &Controller{
		idp:       idp,
		notifier:  n,
		validator: v,
		recorder:  NopRecorder{},
		log:       logrus.NewEntry(logrus.StandardLogger()),
		now:       time.Now,
		state:     State{Mode: ModeLogin},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tabID != "" {
		c.log = c.log.WithField("tab", c.tabID)
	}
	return c
}

// LoginWithProvider signs in through the provider's popup flow.
func (c *Controller) LoginWithProvider(ctx context.Context, p Provider) {
	log := c.log.WithFields(logrus.Fields{"operation": opProviderLogin, "provider": p.Key()})

	identity, err := c.idp.SignInWithPopup(ctx, p)
	if err == nil && identity == nil {
		err = errors.NewProviderError(CodeInternalError, "no identity returned")
	}
	if err != nil {
		code := errors.ProviderCode(err)
		kind := c.classify(log, code, err)
		c.record(ctx, opProviderLogin, p.Key(), OutcomeFailure, code)
		c.notify(LevelError, PopupErrorMessage(kind, p.Name()))
		return
	}

	c.mu.Lock()
	c.state.Identity = identity
	c.mu.Unlock()

	log.WithField("uid", identity.UID).Info("provider sign-in succeeded")
	c.record(ctx, opProviderLogin, p.Key(), OutcomeSuccess, "")
	c.notify(LevelSuccess, LoggedInWith(p.Name()))
}

// SubmitEmailForm signs up or logs in depending on the current mode. A submit
// while another one is pending is refused without calling the platform.
func (c *Controller) SubmitEmailForm(ctx context.Context) {
	c.mu.Lock()
	form, mode := c.state.Form, c.state.Mode
	if c.submitting {
		c.mu.Unlock()
		op := opLogin
		if mode == ModeSignUp {
			op = opSignUp
		}
		c.record(ctx, op, "", OutcomeRejected, codeInFlight)
		c.notify(LevelInfo, MsgRequestInFlight)
		return
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if mode == ModeSignUp {
		c.signUp(ctx, form)
		return
	}
	c.login(ctx, form)
}

func (c *Controller) signUp(ctx context.Context, form Form) {
	log := c.log.WithField("operation", opSignUp)

	if err := c.validator.Validate(signUpFields{Name: form.Name, Email: form.Email, Password: form.Password}); err != nil {
		log.WithError(err).Debug("sign-up form incomplete")
		c.record(ctx, opSignUp, "", OutcomeRejected, codeValidation)
		c.notify(LevelError, MsgFillAllFields)
		return
	}

	identity, err := c.idp.CreateUserWithEmailAndPassword(ctx, form.Email, form.Password)
	if err == nil && identity == nil {
		err = errors.NewProviderError(CodeInternalError, "no identity returned")
	}
	if err != nil {
		c.emailFailure(ctx, log, opSignUp, err)
		return
	}
	if err := c.idp.UpdateProfile(ctx, identity, form.Name); err != nil {
		c.emailFailure(ctx, log, opSignUp, err)
		return
	}

	c.mu.Lock()
	c.state.Identity = identity
	c.mu.Unlock()

	log.WithField("uid", identity.UID).Info("account created")
	c.record(ctx, opSignUp, "", OutcomeSuccess, "")
	c.notify(LevelSuccess, MsgAccountCreated)
}

func (c *Controller) login(ctx context.Context, form Form) {
	log := c.log.WithField("operation", opLogin)

	if err := c.validator.Validate(loginFields{Email: form.Email, Password: form.Password}); err != nil {
		log.WithError(err).Debug("login form incomplete")
		c.record(ctx, opLogin, "", OutcomeRejected, codeValidation)
		c.notify(LevelError, MsgEnterEmailPassword)
		return
	}

	identity, err := c.idp.SignInWithEmailAndPassword(ctx, form.Email, form.Password)
	if err == nil && identity == nil {
		err = errors.NewProviderError(CodeInternalError, "no identity returned")
	}
	if err != nil {
		c.emailFailure(ctx, log, opLogin, err)
		return
	}

	c.mu.Lock()
	c.state.Identity = identity
	c.mu.Unlock()

	log.WithField("uid", identity.UID).Info("email sign-in succeeded")
	c.record(ctx, opLogin, "", OutcomeSuccess, "")
	c.notify(LevelSuccess, MsgLoggedIn)
}

func (c *Controller) emailFailure(ctx context.Context, log *logrus.Entry, op string, err error) {
	code := errors.ProviderCode(err)
	kind := c.classify(log, code, err)
	c.record(ctx, op, "", OutcomeFailure, code)
	c.notify(LevelError, EmailErrorMessage(kind))
}

// Logout clears the session even when the platform sign-out fails.
func (c *Controller) Logout(ctx context.Context) {
	log := c.log.WithField("operation", opLogout)
	outcome := OutcomeSuccess
	code := ""
	if err := c.idp.SignOut(ctx); err != nil {
		log.WithError(err).Warn("platform sign-out failed")
		outcome = OutcomeFailure
		code = errors.ProviderCode(err)
	}

	c.mu.Lock()
	c.state.Identity = nil
	c.mu.Unlock()

	c.record(ctx, opLogout, "", outcome, code)
	c.notify(LevelInfo, MsgLoggedOut)
}

func (c *Controller) ToggleMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Mode == ModeSignUp {
		c.state.Mode = ModeLogin
	} else {
		c.state.Mode = ModeSignUp
	}
}

func (c *Controller) TogglePasswordVisibility() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.ShowPassword = !c.state.Form.ShowPassword
}

func (c *Controller) SetEmail(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.Email = v
}

func (c *Controller) SetPassword(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.Password = v
}

func (c *Controller) SetName(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.Name = v
}

// Snapshot returns a copy of the state for rendering. The password is blanked.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Form.Password = ""
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

func (c *Controller) classify(log *logrus.Entry, code string, err error) ErrorKind {
	kind := KindOf(code)
	if kind == KindUnknown {
		log.WithError(err).WithField("code", code).Warn("unrecognised identity platform error")
	} else {
		log.WithField("code", code).Info("identity platform rejected request")
	}
	return kind
}

func (c *Controller) notify(level Level, msg string) {
	c.notifier.Notify(Notification{Level: level, Message: msg})
}

func (c *Controller) record(ctx context.Context, op, provider string, outcome Outcome, code string) {
	e := Event{
		TabID:      c.tabID,
		Operation:  op,
		Provider:   provider,
		Outcome:    outcome,
		Code:       code,
		OccurredAt: c.now().UTC(),
	}
	if err := c.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		c.log.WithError(err).WithField("operation", op).Warn("failed to record auth event")
	}
}
