// internal/identity/twitter.go
package identity

import (
	"context"
	"errors"
	"net/url"

	"authflow-server/internal/domain/auth"
	apperrors "authflow-server/pkg/errors"

	"github.com/dghubble/oauth1"
	"github.com/dghubble/oauth1/twitter"
	"github.com/sirupsen/logrus"
)

// NewTwitterConfig builds the OAuth 1.0a consumer for Twitter, whose client id
// and secret are the consumer key and secret. It returns nil when Twitter is not
// configured.
func NewTwitterConfig(c ProviderCredentials, redirectURL string) *oauth1.Config {
	if c.ClientID == "" {
		return nil
	}
	return &oauth1.Config{
		ConsumerKey:    c.ClientID,
		ConsumerSecret: c.ClientSecret,
		CallbackURL:    redirectURL,
		Endpoint:       twitter.AuthenticateEndpoint,
	}
}

// signInWithTwitter runs the three-legged OAuth 1.0a flow. The request token
// doubles as the popup state, and the platform needs both halves of the access
// token.
func (t *Tab) signInWithTwitter(ctx context.Context, cfg *oauth1.Config) (*auth.Identity, error) {
	requestToken, requestSecret, err := cfg.RequestToken()
	if err != nil {
		return nil, oauth1Error(err)
	}

	ticket, err := t.platform.Broker.BeginWithState(ctx, t.id, auth.ProviderTwitter, requestToken)
	if err != nil {
		return nil, err
	}

	authURL, err := cfg.AuthorizationURL(requestToken)
	if err != nil {
		ticket.Release()
		return nil, apperrors.NewProviderError(auth.CodeInternalError, err.Error())
	}
	if err := t.window.OpenPopup(auth.ProviderTwitter, authURL.String()); err != nil {
		ticket.Release()
		return nil, apperrors.NewProviderError(auth.CodePopupBlocked, err.Error())
	}

	verifier, err := ticket.Wait(ctx)
	if err != nil {
		return nil, err
	}

	accessToken, accessSecret, err := cfg.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return nil, oauth1Error(err)
	}

	postBody := url.Values{}
	postBody.Set("providerId", auth.ProviderTwitter.PlatformID())
	postBody.Set("access_token", accessToken)
	postBody.Set("oauth_token_secret", accessSecret)

	identity, err := t.platform.Client.SignInWithIdp(ctx, t.platform.RedirectURL, postBody)
	if err != nil {
		return nil, err
	}
	t.setCurrent(identity)
	t.log.WithFields(logrus.Fields{"provider": auth.ProviderTwitter.Key(), "uid": identity.UID}).Debug("popup sign-in complete")
	return identity, nil
}

func oauth1Error(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return apperrors.NewProviderError(auth.CodeNetworkRequestFailed, err.Error())
	}
	return apperrors.NewProviderError(auth.CodeInvalidCredential, err.Error())
}
