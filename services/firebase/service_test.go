package firebasesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/user"
)

func mintIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("mintIDToken() failed: %v", err)
	}
	return token
}

func testService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{}
	conf.Firebase.APIKey = "test-key"
	conf.Firebase.SignInURL = srv.URL
	conf.Firebase.TokenURL = srv.URL
	conf.Firebase.TokenLeeway = time.Minute
	return NewService(conf, core.NopLogger{}), srv
}

func TestSignInStartsSession(t *testing.T) {
	idToken := mintIDToken(t, jwt.MapClaims{
		"sub":            "uid-1",
		"email":          "nam@example.com",
		"name":           "Nam",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	var refreshCalls int
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/token") {
			refreshCalls++
			return
		}
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"idToken":      idToken,
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
			"localId":      "uid-1",
			"email":        "nam@example.com",
		})
	}))

	assert.NoError(t, svc.SignIn(context.Background(), "nam@example.com", "secret"))

	acct, ok := svc.CurrentAccount()
	assert.True(t, ok)
	assert.Equal(t, "uid-1", acct.UID)
	assert.Equal(t, "nam@example.com", acct.Email)
	// missing fields are completed from the token claims
	assert.Equal(t, "Nam", acct.DisplayName)
	assert.True(t, acct.EmailVerified)

	// far from expiry: no refresh round-trip
	token, err := svc.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, idToken, token)
	assert.Equal(t, 0, refreshCalls)
}

func TestSignInErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode string
		wantMsg  string
	}{
		{name: "known code", raw: "EMAIL_NOT_FOUND", wantCode: "EMAIL_NOT_FOUND", wantMsg: "email not found"},
		{name: "code with suffix", raw: "WEAK_PASSWORD : Password should be at least 6 characters",
			wantCode: "WEAK_PASSWORD", wantMsg: "password is too weak (6 characters minimum)"},
		{name: "lockout", raw: "TOO_MANY_ATTEMPTS_TRY_LATER", wantCode: "TOO_MANY_ATTEMPTS_TRY_LATER",
			wantMsg: "too many attempts, please try again later"},
		{name: "unknown code passes through", raw: "SOMETHING_NEW", wantCode: "SOMETHING_NEW", wantMsg: "SOMETHING_NEW"},
		{name: "empty message falls back", raw: "", wantCode: "", wantMsg: "sign-in failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"message": tt.raw},
				})
			}))

			err := svc.SignIn(context.Background(), "x@example.com", "pwd")
			assert.Error(t, err)
			var authErr *AuthError
			assert.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantCode, authErr.Code)
			assert.Equal(t, tt.wantMsg, authErr.Error())

			// a failed sign-in must not leave a session behind
			_, ok := svc.CurrentAccount()
			assert.False(t, ok)
		})
	}
}

func TestTokenFailsOpenWhenSignedOut(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	token, err := svc.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "", token)
}

func TestTokenRefreshesNearExpiry(t *testing.T) {
	var refreshCalls int
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/token"):
			refreshCalls++
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id_token":      "fresh-token",
				"refresh_token": "refresh-2",
				"expires_in":    "3600",
			})
		default:
			// expires within the leeway window
			_ = json.NewEncoder(w).Encode(map[string]string{
				"idToken":      "stale-token",
				"refreshToken": "refresh-1",
				"expiresIn":    "10",
				"localId":      "uid-1",
			})
		}
	}))

	ctx := context.Background()
	assert.NoError(t, svc.SignIn(ctx, "nam@example.com", "secret"))

	token, err := svc.Token(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, refreshCalls)

	// the refreshed expiry is far out now; no second round-trip
	token, err = svc.Token(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, refreshCalls)
}

func TestOnAuthStateChanged(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"idToken":   mintIDToken(t, jwt.MapClaims{"sub": "uid-1"}),
			"expiresIn": "3600",
			"localId":   "uid-1",
		})
	}))

	var events []*user.Account
	unsubscribe := svc.OnAuthStateChanged(func(acct *user.Account) {
		events = append(events, acct)
	})

	// fires immediately with the current (signed-out) state
	assert.Len(t, events, 1)
	assert.Nil(t, events[0])

	assert.NoError(t, svc.SignIn(context.Background(), "nam@example.com", "secret"))
	assert.Len(t, events, 2)
	assert.Equal(t, "uid-1", events[1].UID)

	svc.SignOut()
	assert.Len(t, events, 3)
	assert.Nil(t, events[2])
	_, ok := svc.CurrentAccount()
	assert.False(t, ok)

	unsubscribe()
	assert.NoError(t, svc.SignIn(context.Background(), "nam@example.com", "secret"))
	assert.Len(t, events, 3)
}

func TestRegisterSetsDisplayName(t *testing.T) {
	var updateCalled bool
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts:signUp":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"idToken":      mintIDToken(t, jwt.MapClaims{"sub": "uid-2"}),
				"refreshToken": "refresh-1",
				"expiresIn":    "3600",
				"localId":      "uid-2",
				"email":        "moi@example.com",
			})
		case "/accounts:update":
			updateCalled = true
			var body struct {
				DisplayName string `json:"displayName"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			_ = json.NewEncoder(w).Encode(map[string]string{"displayName": body.DisplayName})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	assert.NoError(t, svc.Register(context.Background(), "moi@example.com", "secret", "Người Mới"))
	assert.True(t, updateCalled)

	acct, ok := svc.CurrentAccount()
	assert.True(t, ok)
	assert.Equal(t, "Người Mới", acct.DisplayName)
}

func TestRegisterKeepsSessionOnProfileUpdateFailure(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts:signUp":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"idToken":   mintIDToken(t, jwt.MapClaims{"sub": "uid-2"}),
				"expiresIn": "3600",
				"localId":   "uid-2",
			})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	assert.NoError(t, svc.Register(context.Background(), "moi@example.com", "secret", "Người Mới"))
	_, ok := svc.CurrentAccount()
	assert.True(t, ok)
}
