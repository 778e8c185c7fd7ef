package firebasesvc

import "strings"

// AuthError maps a provider failure code to the message shown to the user.
type AuthError struct {
	Code    string
	Message string
}

func (err *AuthError) Error() string {
	return err.Message
}

// Provider error codes, as returned by the identity toolkit.
var authErrorMessages = map[string]string{
	"EMAIL_NOT_FOUND":             "email not found",
	"INVALID_PASSWORD":            "incorrect password",
	"INVALID_LOGIN_CREDENTIALS":   "invalid credentials",
	"INVALID_EMAIL":               "invalid email address",
	"USER_DISABLED":               "this account has been disabled",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "too many attempts, please try again later",
	"EMAIL_EXISTS":                "this email is already in use",
	"WEAK_PASSWORD":               "password is too weak (6 characters minimum)",
	"OPERATION_NOT_ALLOWED":       "this sign-in method is not allowed",
	"INVALID_ID_TOKEN":            "session expired, please log in again",
	"TOKEN_EXPIRED":               "session expired, please log in again",
	"USER_NOT_FOUND":              "account no longer exists",
}

// newAuthError normalizes a raw provider message ("WEAK_PASSWORD : Password
// should be at least 6 characters") into an AuthError.
func newAuthError(raw, fallback string) *AuthError {
	code := raw
	if idx := strings.IndexAny(code, " :"); idx > 0 {
		code = code[:idx]
	}
	if msg, ok := authErrorMessages[code]; ok {
		return &AuthError{Code: code, Message: msg}
	}
	if raw != "" {
		return &AuthError{Code: code, Message: raw}
	}
	return &AuthError{Code: code, Message: fallback}
}
