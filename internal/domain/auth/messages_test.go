package auth

import "testing"

func TestKindOf(t *testing.T) {
	cases := map[string]ErrorKind{
		"auth/invalid-credential":                       KindInvalidCredential,
		"auth/operation-not-allowed":                    KindOperationNotAllowed,
		"auth/cancelled-popup-request":                  KindCancelledPopupRequest,
		"auth/popup-closed-by-user":                     KindPopupClosedByUser,
		"auth/network-request-failed":                   KindNetworkRequestFailed,
		"auth/account-exists-with-different-credential": KindAccountExistsWithDifferentCredential,
		"auth/invalid-email":                            KindInvalidEmail,
		"auth/missing-password":                         KindMissingPassword,
		"auth/weak-password":                            KindWeakPassword,
		"auth/email-already-in-use":                     KindEmailAlreadyInUse,
		"auth/user-not-found":                           KindUserNotFound,
		"auth/wrong-password":                           KindWrongPassword,
		"auth/user-disabled":                            KindUnknown,
		"":                                              KindUnknown,
	}
	for code, want := range cases {
		if got := KindOf(code); got != want {
			t.Errorf("KindOf(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestPopupMessagesNameTheProvider(t *testing.T) {
	if got := PopupErrorMessage(KindOperationNotAllowed, "Apple"); got != "Apple login is not enabled. Please contact support." {
		t.Errorf("unexpected message %q", got)
	}
	if got := PopupErrorMessage(KindInvalidCredential, "Twitter"); got != "Could not authenticate with Twitter. Please try again." {
		t.Errorf("unexpected message %q", got)
	}
}

func TestEmailKindsFallBackInPopupFlow(t *testing.T) {
	for _, kind := range []ErrorKind{KindInvalidEmail, KindWeakPassword, KindUserNotFound, KindUnknown} {
		if got := PopupErrorMessage(kind, "Google"); got != MsgPopupGenericFailure {
			t.Errorf("kind %v: expected generic popup message, got %q", kind, got)
		}
	}
}

func TestPopupKindsFallBackInEmailFlow(t *testing.T) {
	for _, kind := range []ErrorKind{KindPopupClosedByUser, KindInvalidCredential, KindNetworkRequestFailed, KindUnknown} {
		if got := EmailErrorMessage(kind); got != MsgEmailGenericFailure {
			t.Errorf("kind %v: expected generic email message, got %q", kind, got)
		}
	}
}
