// internal/identity/errors.go
package identity

import (
	"strings"

	"authflow-server/internal/domain/auth"
)

// serverCodes maps Identity Toolkit error messages to client-side codes.
var serverCodes = map[string]string{
	"EMAIL_EXISTS":                     auth.CodeEmailAlreadyInUse,
	"EMAIL_NOT_FOUND":                  auth.CodeUserNotFound,
	"INVALID_PASSWORD":                 auth.CodeWrongPassword,
	"INVALID_EMAIL":                    auth.CodeInvalidEmail,
	"MISSING_EMAIL":                    auth.CodeMissingEmail,
	"MISSING_PASSWORD":                 auth.CodeMissingPassword,
	"WEAK_PASSWORD":                    auth.CodeWeakPassword,
	"INVALID_LOGIN_CREDENTIALS":        auth.CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":             auth.CodeInvalidCredential,
	"OPERATION_NOT_ALLOWED":            auth.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":          auth.CodeOperationNotAllowed,
	"USER_DISABLED":                    auth.CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":      auth.CodeTooManyRequests,
	"FEDERATED_USER_ID_ALREADY_LINKED": auth.CodeCredentialInUse,
	"INVALID_ID_TOKEN":                 auth.CodeUserTokenExpired,
	"TOKEN_EXPIRED":                    auth.CodeUserTokenExpired,
	"USER_NOT_FOUND":                   auth.CodeUserNotFound,
}

// codeForServerMessage classifies an Identity Toolkit error message such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func codeForServerMessage(message string) string {
	if strings.HasPrefix(message, "API key not valid") {
		return auth.CodeInvalidAPIKey
	}
	key, _, _ := strings.Cut(message, ":")
	key = strings.TrimSpace(key)
	if code, ok := serverCodes[key]; ok {
		return code
	}
	return auth.CodeInternalError
}

// codeForCallbackError classifies the "error" parameter of an OAuth redirect.
func codeForCallbackError(param string) string {
	switch param {
	case "access_denied", "user_cancelled_login", "user_cancelled_authorize":
		return auth.CodeUserCancelled
	default:
		return auth.CodeInvalidCredential
	}
}
