// internal/identity/client.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"authflow-server/internal/domain/auth"
	apperrors "authflow-server/pkg/errors"

	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Client talks to the Identity Toolkit REST API on behalf of one project.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Entry
}

func NewClient(baseURL, apiKey string, hc *http.Client, log *logrus.Entry) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
		log:     log,
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	RequestURI          string `json:"requestUri"`
	PostBody            string `json:"postBody"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
}

type accountResponse struct {
	LocalID          string `json:"localId"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	PhotoURL         string `json:"photoUrl"`
	ProfilePicture   string `json:"profilePicture"`
	ProviderID       string `json:"providerId"`
	IDToken          string `json:"idToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        string `json:"expiresIn"`
	NeedConfirmation bool   `json:"needConfirmation"`
	ErrorMessage     string `json:"errorMessage"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*auth.Identity, error) {
	var resp accountResponse
	if err := c.call(ctx, "signUp", passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp); err != nil {
		return nil, err
	}
	return c.identityFrom(resp, "password"), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*auth.Identity, error) {
	var resp accountResponse
	if err := c.call(ctx, "signInWithPassword", passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp); err != nil {
		return nil, err
	}
	return c.identityFrom(resp, "password"), nil
}

// UpdateProfile sets the display name of the user owning idToken and returns
// the refreshed account.
func (c *Client) UpdateProfile(ctx context.Context, idToken, displayName string) (*auth.Identity, error) {
	var resp accountResponse
	if err := c.call(ctx, "update", updateRequest{IDToken: idToken, DisplayName: displayName, ReturnSecureToken: true}, &resp); err != nil {
		return nil, err
	}
	return c.identityFrom(resp, ""), nil
}

// SignInWithIdp exchanges an OAuth credential from an external provider for a
// platform session. postBody carries providerId plus id_token and/or
// access_token.
func (c *Client) SignInWithIdp(ctx context.Context, requestURI string, postBody url.Values) (*auth.Identity, error) {
	var resp accountResponse
	req := idpRequest{
		RequestURI:          requestURI,
		PostBody:            postBody.Encode(),
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}
	if err := c.call(ctx, "signInWithIdp", req, &resp); err != nil {
		return nil, err
	}
	if resp.NeedConfirmation {
		return nil, apperrors.NewProviderError(auth.CodeAccountExistsDifferentCred, resp.Email)
	}
	if resp.ErrorMessage != "" {
		return nil, apperrors.NewProviderError(codeForServerMessage(resp.ErrorMessage), resp.ErrorMessage)
	}
	return c.identityFrom(resp, postBody.Get("providerId")), nil
}

func (c *Client) call(ctx context.Context, method string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	endpoint := c.baseURL + "/accounts:" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.NewProviderError(auth.CodeTimeout, err.Error())
		}
		return apperrors.NewProviderError(auth.CodeNetworkRequestFailed, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewProviderError(auth.CodeNetworkRequestFailed, err.Error())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorResponse
		if err := json.Unmarshal(raw, &e); err != nil || e.Error.Message == "" {
			c.log.WithFields(logrus.Fields{"method": method, "status": resp.StatusCode}).Warn("unreadable identity toolkit error")
			return apperrors.NewProviderError(auth.CodeInternalError, resp.Status)
		}
		return apperrors.NewProviderError(codeForServerMessage(e.Error.Message), e.Error.Message)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewProviderError(auth.CodeInternalError, fmt.Sprintf("decode %s response: %v", method, err))
	}
	return nil
}

func (c *Client) identityFrom(resp accountResponse, providerID string) *auth.Identity {
	identity := &auth.Identity{
		UID:          resp.LocalID,
		DisplayName:  resp.DisplayName,
		Email:        resp.Email,
		PhotoURL:     resp.PhotoURL,
		ProviderID:   resp.ProviderID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}
	if identity.PhotoURL == "" {
		identity.PhotoURL = resp.ProfilePicture
	}
	if identity.ProviderID == "" {
		identity.ProviderID = providerID
	}

	if resp.IDToken != "" {
		claims, err := ParseIDToken(resp.IDToken)
		if err != nil {
			c.log.WithError(err).Debug("id token claims unavailable")
			return identity
		}
		if identity.UID == "" {
			identity.UID = claims.UserID
		}
		if identity.Email == "" {
			identity.Email = claims.Email
		}
		if identity.DisplayName == "" {
			identity.DisplayName = claims.Name
		}
		if identity.PhotoURL == "" {
			identity.PhotoURL = claims.Picture
		}
		if identity.ProviderID == "" {
			identity.ProviderID = claims.Firebase.SignInProvider
		}
	}
	return identity
}
