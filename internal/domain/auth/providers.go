// internal/domain/auth/providers.go
package auth

import "fmt"

type Provider int

const (
	ProviderGoogle Provider = iota + 1
	ProviderGitHub
	ProviderFacebook
	ProviderTwitter
	ProviderMicrosoft
	ProviderApple
)

type providerInfo struct {
	key        string
	name       string
	platformID string
}

var providerTable = map[Provider]providerInfo{
	ProviderGoogle:    {key: "google", name: "Google", platformID: "google.com"},
	ProviderGitHub:    {key: "github", name: "GitHub", platformID: "github.com"},
	ProviderFacebook:  {key: "facebook", name: "Facebook", platformID: "facebook.com"},
	ProviderTwitter:   {key: "twitter", name: "Twitter", platformID: "twitter.com"},
	ProviderMicrosoft: {key: "microsoft", name: "Microsoft", platformID: "microsoft.com"},
	ProviderApple:     {key: "apple", name: "Apple", platformID: "apple.com"},
}

// Providers returns every supported provider in display order.
func Providers() []Provider {
	return []Provider{
		ProviderGoogle,
		ProviderGitHub,
		ProviderFacebook,
		ProviderTwitter,
		ProviderMicrosoft,
		ProviderApple,
	}
}

// ParseProvider accepts the wire key ("google") or the platform id ("google.com").
func ParseProvider(s string) (Provider, error) {
	for p, info := range providerTable {
		if s == info.key || s == info.platformID {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown provider %q", s)
}

func (p Provider) Key() string { return providerTable[p].key }

// Name is the human-readable provider name used in notifications.
func (p Provider) Name() string { return providerTable[p].name }

// PlatformID is the identity platform's provider id. Microsoft and Apple are
// generic OAuth providers known only by this id.
func (p Provider) PlatformID() string { return providerTable[p].platformID }

// Generic reports whether the platform configures p by protocol name only.
func (p Provider) Generic() bool {
	return p == ProviderMicrosoft || p == ProviderApple
}

func (p Provider) String() string {
	if info, ok := providerTable[p]; ok {
		return info.key
	}
	return fmt.Sprintf("provider(%d)", int(p))
}
