// internal/identity/apple.go
package identity

import (
	"crypto/ecdsa"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	appleAudience = "https://appleid.apple.com"
	// Apple rejects client secrets valid for more than six months.
	appleSecretTTL   = 150 * 24 * time.Hour
	appleSecretRenew = 24 * time.Hour
)

// AppleClientSecret mints the ES256 client secret Apple expects in place of a
// static one, and reuses it until it is close to expiry.
type AppleClientSecret struct {
	teamID   string
	keyID    string
	clientID string
	key      *ecdsa.PrivateKey
	now      func() time.Time

	mu      sync.Mutex
	secret  string
	expires time.Time
}

// NewAppleClientSecret parses the .p8 signing key downloaded from the Apple
// developer account.
func NewAppleClientSecret(teamID, keyID, clientID string, pemKey []byte) (*AppleClientSecret, error) {
	if teamID == "" || keyID == "" || clientID == "" {
		return nil, fmt.Errorf("apple client secret: team id, key id and client id are required")
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("apple signing key: %w", err)
	}
	return &AppleClientSecret{
		teamID:   teamID,
		keyID:    keyID,
		clientID: clientID,
		key:      key,
		now:      time.Now,
	}, nil
}

func (a *AppleClientSecret) Secret() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.secret != "" && now.Add(appleSecretRenew).Before(a.expires) {
		return a.secret, nil
	}

	expires := now.Add(appleSecretTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    a.teamID,
		Subject:   a.clientID,
		Audience:  jwt.ClaimStrings{appleAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	token.Header["kid"] = a.keyID

	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign apple client secret: %w", err)
	}
	a.secret, a.expires = signed, expires
	return signed, nil
}
