// internal/identity/tab.go
package identity

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"authflow-server/internal/domain/auth"
	apperrors "authflow-server/pkg/errors"

	"github.com/dghubble/oauth1"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Window opens a provider popup in the browser tab.
type Window interface {
	OpenPopup(p auth.Provider, authURL string) error
}

// Platform bundles everything shared between tabs. Twitter and AppleSecret are
// nil when those providers are not set up that way.
type Platform struct {
	Client      *Client
	Providers   map[auth.Provider]*oauth2.Config
	Twitter     *oauth1.Config
	AppleSecret *AppleClientSecret
	Broker      *PopupBroker
	RedirectURL string
	Log         *logrus.Entry
}

// NewTab binds the platform to one browser tab.
func (pl *Platform) NewTab(id string, w Window) *Tab {
	return &Tab{
		id:       id,
		platform: pl,
		window:   w,
		log:      pl.Log.WithField("tab", id),
	}
}

// Tab is the identity platform as seen by one browser tab. It keeps the
// platform's current user so that profile updates and sign-out act on it.
type Tab struct {
	id       string
	platform *Platform
	window   Window
	log      *logrus.Entry

	mu      sync.Mutex
	current *auth.Identity
}

var _ auth.IdentityProvider = (*Tab)(nil)

func (t *Tab) ID() string { return t.id }

func (t *Tab) CurrentUser() *auth.Identity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Tab) setCurrent(identity *auth.Identity) {
	t.mu.Lock()
	t.current = identity
	t.mu.Unlock()
}

func (t *Tab) SignInWithPopup(ctx context.Context, p auth.Provider) (*auth.Identity, error) {
	if p == auth.ProviderTwitter {
		if t.platform.Twitter == nil {
			return nil, apperrors.NewProviderError(auth.CodeOperationNotAllowed, p.Key()+" is not configured")
		}
		return t.signInWithTwitter(ctx, t.platform.Twitter)
	}

	cfg, ok := t.platform.Providers[p]
	if !ok {
		return nil, apperrors.NewProviderError(auth.CodeOperationNotAllowed, p.Key()+" is not configured")
	}

	ticket, err := t.platform.Broker.Begin(ctx, t.id, p)
	if err != nil {
		return nil, err
	}

	authURL := cfg.AuthCodeURL(ticket.State, authCodeOptions(p, ticket.Verifier)...)
	if err := t.window.OpenPopup(p, authURL); err != nil {
		ticket.Release()
		return nil, apperrors.NewProviderError(auth.CodePopupBlocked, err.Error())
	}

	code, err := ticket.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if p == auth.ProviderApple && t.platform.AppleSecret != nil {
		secret, err := t.platform.AppleSecret.Secret()
		if err != nil {
			return nil, apperrors.NewProviderError(auth.CodeInternalError, err.Error())
		}
		withSecret := *cfg
		withSecret.ClientSecret = secret
		cfg = &withSecret
	}

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(ticket.Verifier))
	if err != nil {
		return nil, exchangeError(err)
	}

	postBody := url.Values{}
	postBody.Set("providerId", p.PlatformID())
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		postBody.Set("id_token", idToken)
	}
	if tok.AccessToken != "" {
		postBody.Set("access_token", tok.AccessToken)
	}

	identity, err := t.platform.Client.SignInWithIdp(ctx, t.platform.RedirectURL, postBody)
	if err != nil {
		return nil, err
	}
	t.setCurrent(identity)
	t.log.WithFields(logrus.Fields{"provider": p.Key(), "uid": identity.UID}).Debug("popup sign-in complete")
	return identity, nil
}

func (t *Tab) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*auth.Identity, error) {
	identity, err := t.platform.Client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	t.setCurrent(identity)
	return identity, nil
}

func (t *Tab) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*auth.Identity, error) {
	identity, err := t.platform.Client.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	t.setCurrent(identity)
	return identity, nil
}

func (t *Tab) UpdateProfile(ctx context.Context, identity *auth.Identity, displayName string) error {
	if identity == nil || identity.IDToken == "" {
		return apperrors.NewProviderError(auth.CodeNoCurrentUser, "")
	}
	updated, err := t.platform.Client.UpdateProfile(ctx, identity.IDToken, displayName)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	identity.DisplayName = displayName
	if updated.IDToken != "" {
		identity.IDToken = updated.IDToken
	}
	if updated.RefreshToken != "" {
		identity.RefreshToken = updated.RefreshToken
	}
	if updated.PhotoURL != "" && identity.PhotoURL == "" {
		identity.PhotoURL = updated.PhotoURL
	}
	return nil
}

// SignOut drops the platform's current user. The platform keeps no server-side
// session for this tab, so nothing is sent over the network.
func (t *Tab) SignOut(ctx context.Context) error {
	t.setCurrent(nil)
	return nil
}

func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return apperrors.NewProviderError(auth.CodeInvalidCredential, re.Error())
	}
	return apperrors.NewProviderError(auth.CodeNetworkRequestFailed, err.Error())
}
