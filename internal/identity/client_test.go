package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"authflow-server/internal/domain/auth"
	apperrors "authflow-server/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

// toolkit fakes the Identity Toolkit endpoints. handlers is keyed by method
// name, e.g. "signInWithPassword".
func toolkit(t *testing.T, handlers map[string]func(body map[string]interface{}) (int, interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "api-key" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": map[string]interface{}{"code": 400, "message": "API key not valid. Please pass a valid API key."}})
			return
		}
		method := r.URL.Path[len("/accounts:"):]
		h, ok := handlers[method]
		if !ok {
			t.Errorf("unexpected call to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		status, resp := h(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func toolkitError(message string) (int, interface{}) {
	return http.StatusBadRequest, map[string]interface{}{"error": map[string]interface{}{"code": 400, "message": message}}
}

func TestSignInWithPassword(t *testing.T) {
	idToken := signedToken(t, jwt.MapClaims{"user_id": "uid-1", "picture": "https://img/p.png", "exp": time.Now().Add(time.Hour).Unix()})
	srv := toolkit(t, map[string]func(map[string]interface{}) (int, interface{}){
		"signInWithPassword": func(body map[string]interface{}) (int, interface{}) {
			if body["email"] != "ada@x.com" || body["password"] != "secret1" || body["returnSecureToken"] != true {
				t.Errorf("unexpected body %v", body)
			}
			return http.StatusOK, map[string]interface{}{
				"localId":      "uid-1",
				"email":        "ada@x.com",
				"displayName":  "Ada",
				"idToken":      idToken,
				"refreshToken": "refresh-1",
				"expiresIn":    "3600",
			}
		},
	})
	c := NewClient(srv.URL, "api-key", srv.Client(), testLogger())

	identity, err := c.SignInWithPassword(context.Background(), "ada@x.com", "secret1")
	if err != nil {
		t.Fatalf("SignInWithPassword returned %v", err)
	}
	if identity.UID != "uid-1" || identity.Email != "ada@x.com" || identity.DisplayName != "Ada" {
		t.Errorf("unexpected identity %+v", identity)
	}
	if identity.PhotoURL != "https://img/p.png" {
		t.Errorf("expected photo from id token, got %q", identity.PhotoURL)
	}
	if identity.ProviderID != "password" || identity.RefreshToken != "refresh-1" {
		t.Errorf("unexpected identity %+v", identity)
	}
}

func TestServerErrorsMapToCodes(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"EMAIL_NOT_FOUND", auth.CodeUserNotFound},
		{"INVALID_PASSWORD", auth.CodeWrongPassword},
		{"INVALID_EMAIL", auth.CodeInvalidEmail},
		{"MISSING_PASSWORD", auth.CodeMissingPassword},
		{"EMAIL_EXISTS", auth.CodeEmailAlreadyInUse},
		{"WEAK_PASSWORD : Password should be at least 6 characters", auth.CodeWeakPassword},
		{"INVALID_LOGIN_CREDENTIALS", auth.CodeInvalidCredential},
		{"OPERATION_NOT_ALLOWED", auth.CodeOperationNotAllowed},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled", auth.CodeTooManyRequests},
		{"SOMETHING_NEW", auth.CodeInternalError},
	}
	for _, tc := range cases {
		message, want := tc.message, tc.want
		t.Run(message, func(t *testing.T) {
			srv := toolkit(t, map[string]func(map[string]interface{}) (int, interface{}){
				"signUp": func(map[string]interface{}) (int, interface{}) { return toolkitError(message) },
			})
			c := NewClient(srv.URL, "api-key", srv.Client(), testLogger())

			_, err := c.SignUp(context.Background(), "ada@x.com", "secret1")
			if got := apperrors.ProviderCode(err); got != want {
				t.Errorf("expected %s, got %s (%v)", want, got, err)
			}
		})
	}
}

func TestInvalidAPIKey(t *testing.T) {
	srv := toolkit(t, nil)
	c := NewClient(srv.URL, "wrong", srv.Client(), testLogger())

	_, err := c.SignInWithPassword(context.Background(), "ada@x.com", "secret1")
	if got := apperrors.ProviderCode(err); got != auth.CodeInvalidAPIKey {
		t.Errorf("expected %s, got %s", auth.CodeInvalidAPIKey, got)
	}
}

func TestUnreadableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "api-key", srv.Client(), testLogger())

	_, err := c.SignInWithPassword(context.Background(), "ada@x.com", "secret1")
	if got := apperrors.ProviderCode(err); got != auth.CodeInternalError {
		t.Errorf("expected %s, got %s", auth.CodeInternalError, got)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c := NewClient(base, "api-key", nil, testLogger())

	_, err := c.SignInWithPassword(context.Background(), "ada@x.com", "secret1")
	if got := apperrors.ProviderCode(err); got != auth.CodeNetworkRequestFailed {
		t.Errorf("expected %s, got %s (%v)", auth.CodeNetworkRequestFailed, got, err)
	}
}

func TestUpdateProfile(t *testing.T) {
	srv := toolkit(t, map[string]func(map[string]interface{}) (int, interface{}){
		"update": func(body map[string]interface{}) (int, interface{}) {
			if body["idToken"] != "tok-1" || body["displayName"] != "Ada" {
				t.Errorf("unexpected body %v", body)
			}
			return http.StatusOK, map[string]interface{}{"localId": "uid-1", "displayName": "Ada", "idToken": "tok-2"}
		},
	})
	c := NewClient(srv.URL, "api-key", srv.Client(), testLogger())

	updated, err := c.UpdateProfile(context.Background(), "tok-1", "Ada")
	if err != nil {
		t.Fatalf("UpdateProfile returned %v", err)
	}
	if updated.DisplayName != "Ada" || updated.IDToken != "tok-2" {
		t.Errorf("unexpected identity %+v", updated)
	}
}

func TestSignInWithIdp(t *testing.T) {
	srv := toolkit(t, map[string]func(map[string]interface{}) (int, interface{}){
		"signInWithIdp": func(body map[string]interface{}) (int, interface{}) {
			pb, _ := url.ParseQuery(body["postBody"].(string))
			if pb.Get("providerId") != "github.com" || pb.Get("access_token") != "at-1" {
				t.Errorf("unexpected postBody %v", pb)
			}
			if body["requestUri"] != "http://localhost/auth/callback" {
				t.Errorf("unexpected requestUri %v", body["requestUri"])
			}
			return http.StatusOK, map[string]interface{}{
				"localId":     "uid-gh",
				"email":       "octo@x.com",
				"displayName": "Octo",
				"photoUrl":    "https://img/octo.png",
				"providerId":  "github.com",
				"idToken":     "not-a-jwt",
			}
		},
	})
	c := NewClient(srv.URL, "api-key", srv.Client(), testLogger())

	identity, err := c.SignInWithIdp(context.Background(), "http://localhost/auth/callback", url.Values{"providerId": {"github.com"}, "access_token": {"at-1"}})
	if err != nil {
		t.Fatalf("SignInWithIdp returned %v", err)
	}
	if identity.UID != "uid-gh" || identity.PhotoURL != "https://img/octo.png" || identity.ProviderID != "github.com" {
		t.Errorf("unexpected identity %+v", identity)
	}
}

func TestSignInWithIdpNeedsConfirmation(t *testing.T) {
	srv := toolkit(t, map[string]func(map[string]interface{}) (int, interface{}){
		"signInWithIdp": func(map[string]interface{}) (int, interface{}) {
			return http.StatusOK, map[string]interface{}{"email": "ada@x.com", "needConfirmation": true}
		},
	})
	c := NewClient(srv.URL, "api-key", srv.Client(), testLogger())

	_, err := c.SignInWithIdp(context.Background(), "http://cb", url.Values{"providerId": {"facebook.com"}})
	if got := apperrors.ProviderCode(err); got != auth.CodeAccountExistsDifferentCred {
		t.Errorf("expected %s, got %s", auth.CodeAccountExistsDifferentCred, got)
	}
}

func TestCodeForCallbackError(t *testing.T) {
	if got := codeForCallbackError("access_denied"); got != auth.CodeUserCancelled {
		t.Errorf("unexpected code %s", got)
	}
	if got := codeForCallbackError("server_error"); got != auth.CodeInvalidCredential {
		t.Errorf("unexpected code %s", got)
	}
}
