// internal/identity/providers.go
package identity

import (
	"authflow-server/internal/domain/auth"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

var (
	appleEndpoint = oauth2.Endpoint{
		AuthURL:   "https://appleid.apple.com/auth/authorize",
		TokenURL:  "https://appleid.apple.com/auth/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
)

var defaultScopes = map[auth.Provider][]string{
	auth.ProviderGoogle:    {"openid", "email", "profile"},
	auth.ProviderGitHub:    {"read:user", "user:email"},
	auth.ProviderFacebook:  {"email", "public_profile"},
	auth.ProviderMicrosoft: {"openid", "email", "profile"},
	auth.ProviderApple:     {"name", "email"},
}

// ProviderCredentials are the OAuth client settings for one provider. Tenant
// only applies to Microsoft.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	Tenant       string
}

// NewProviderConfigs builds an OAuth 2.0 config for every provider with a client
// id. Providers without one are left out and treated as disabled. Twitter signs
// in over OAuth 1.0a; see NewTwitterConfig.
func NewProviderConfigs(creds map[auth.Provider]ProviderCredentials, redirectURL string) map[auth.Provider]*oauth2.Config {
	configs := make(map[auth.Provider]*oauth2.Config)
	for _, p := range auth.Providers() {
		c, ok := creds[p]
		if !ok || c.ClientID == "" || p == auth.ProviderTwitter {
			continue
		}
		scopes := c.Scopes
		if len(scopes) == 0 {
			scopes = defaultScopes[p]
		}
		configs[p] = &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     endpointFor(p, c.Tenant),
		}
	}
	return configs
}

func endpointFor(p auth.Provider, tenant string) oauth2.Endpoint {
	switch p {
	case auth.ProviderGoogle:
		return google.Endpoint
	case auth.ProviderGitHub:
		return github.Endpoint
	case auth.ProviderFacebook:
		return facebook.Endpoint
	case auth.ProviderMicrosoft:
		if tenant == "" {
			tenant = "common"
		}
		return microsoft.AzureADEndpoint(tenant)
	case auth.ProviderApple:
		return appleEndpoint
	}
	return oauth2.Endpoint{}
}

// authCodeOptions returns the provider-specific authorization parameters.
// Apple only returns the user's name when it posts the callback as a form.
func authCodeOptions(p auth.Provider, verifier string) []oauth2.AuthCodeOption {
	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	if p == auth.ProviderApple {
		opts = append(opts, oauth2.SetAuthURLParam("response_mode", "form_post"))
	}
	return opts
}
