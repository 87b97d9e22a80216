// internal/domain/auth/messages.go
package auth

import "fmt"

// Platform error codes, in the identity platform's client naming.
const (
	CodeInvalidCredential          = "auth/invalid-credential"
	CodeOperationNotAllowed        = "auth/operation-not-allowed"
	CodeCancelledPopupRequest      = "auth/cancelled-popup-request"
	CodePopupClosedByUser          = "auth/popup-closed-by-user"
	CodeNetworkRequestFailed       = "auth/network-request-failed"
	CodeAccountExistsDifferentCred = "auth/account-exists-with-different-credential"
	CodeInvalidEmail               = "auth/invalid-email"
	CodeMissingPassword            = "auth/missing-password"
	CodeWeakPassword               = "auth/weak-password"
	CodeEmailAlreadyInUse          = "auth/email-already-in-use"
	CodeUserNotFound               = "auth/user-not-found"
	CodeWrongPassword              = "auth/wrong-password"

	// Reported by the platform but without a dedicated message.
	CodeUserDisabled     = "auth/user-disabled"
	CodeTooManyRequests  = "auth/too-many-requests"
	CodeInvalidAPIKey    = "auth/invalid-api-key"
	CodeMissingEmail     = "auth/missing-email"
	CodeTimeout          = "auth/timeout"
	CodePopupBlocked     = "auth/popup-blocked"
	CodeUserCancelled    = "auth/user-cancelled"
	CodeInternalError    = "auth/internal-error"
	CodeCredentialInUse  = "auth/credential-already-in-use"
	CodeNoCurrentUser    = "auth/no-current-user"
	CodeUserTokenExpired = "auth/user-token-expired"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidCredential
	KindOperationNotAllowed
	KindCancelledPopupRequest
	KindPopupClosedByUser
	KindNetworkRequestFailed
	KindAccountExistsWithDifferentCredential
	KindInvalidEmail
	KindMissingPassword
	KindWeakPassword
	KindEmailAlreadyInUse
	KindUserNotFound
	KindWrongPassword
)

var kindByCode = map[string]ErrorKind{
	CodeInvalidCredential:          KindInvalidCredential,
	CodeOperationNotAllowed:        KindOperationNotAllowed,
	CodeCancelledPopupRequest:      KindCancelledPopupRequest,
	CodePopupClosedByUser:          KindPopupClosedByUser,
	CodeNetworkRequestFailed:       KindNetworkRequestFailed,
	CodeAccountExistsDifferentCred: KindAccountExistsWithDifferentCredential,
	CodeInvalidEmail:               KindInvalidEmail,
	CodeMissingPassword:            KindMissingPassword,
	CodeWeakPassword:               KindWeakPassword,
	CodeEmailAlreadyInUse:          KindEmailAlreadyInUse,
	CodeUserNotFound:               KindUserNotFound,
	CodeWrongPassword:              KindWrongPassword,
}

// KindOf classifies a platform code. Unrecognised and empty codes are KindUnknown.
func KindOf(code string) ErrorKind {
	return kindByCode[code]
}

const (
	MsgFillAllFields       = "Please fill in all fields"
	MsgEnterEmailPassword  = "Please enter your email and password"
	MsgAccountCreated      = "Account created successfully"
	MsgLoggedIn            = "Logged in successfully"
	MsgLoggedOut           = "Logged out successfully"
	MsgRequestInFlight     = "Please wait for the current request to finish."
	MsgPopupGenericFailure = "Something went wrong. Please try again later."
	MsgEmailGenericFailure = "Something went wrong. Please try again."
)

func LoggedInWith(providerName string) string {
	return fmt.Sprintf("Logged in using %s", providerName)
}

// PopupErrorMessage maps a provider-popup failure to its user-facing text.
func PopupErrorMessage(kind ErrorKind, providerName string) string {
	switch kind {
	case KindInvalidCredential:
		return fmt.Sprintf("Could not authenticate with %s. Please try again.", providerName)
	case KindOperationNotAllowed:
		return fmt.Sprintf("%s login is not enabled. Please contact support.", providerName)
	case KindCancelledPopupRequest:
		return "Login was canceled. Please try again."
	case KindPopupClosedByUser:
		return "You closed the login window before completing the process."
	case KindNetworkRequestFailed:
		return "Network error. Check your internet connection and try again."
	case KindAccountExistsWithDifferentCredential:
		return "This email is already linked to another sign-in method (e.g., Google or GitHub). Please use the method you signed up with."
	default:
		return MsgPopupGenericFailure
	}
}

// EmailErrorMessage maps an email/password failure to its user-facing text.
func EmailErrorMessage(kind ErrorKind) string {
	switch kind {
	case KindInvalidEmail:
		return "Invalid email address. Please enter a valid email."
	case KindMissingPassword:
		return "Password is required."
	case KindWeakPassword:
		return "Password is too weak. It should be at least 6 characters."
	case KindEmailAlreadyInUse:
		return "This email is already registered. Try logging in."
	case KindUserNotFound:
		return "No account found with this email."
	case KindWrongPassword:
		return "Incorrect password. Please try again."
	default:
		return MsgEmailGenericFailure
	}
}
