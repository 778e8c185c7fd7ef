package firebasesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/user"
)

// ProviderGoogle is the providerId for Google OAuth sign-in.
const ProviderGoogle = "google.com"

// Service wraps the Firebase-compatible identity provider's REST API: sign
// in/up, OAuth credential sign-in, token refresh and sign-out, plus an
// auth-state observer. It issues the bearer tokens every authenticated API
// call carries. The user's role is NOT part of the identity token; it is
// resolved from the backend by the caller.
type Service struct {
	conf   core.FirebaseConfig
	http   *http.Client
	logger core.Logger

	mu           sync.Mutex
	sess         *session
	listeners    map[int]func(*user.Account)
	nextListener int
}

type session struct {
	account      user.Account
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

func NewService(conf *core.Config, logger core.Logger) *Service {
	return &Service{
		conf:      conf.Firebase,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
		listeners: make(map[int]func(*user.Account)),
	}
}

// SignIn authenticates with email/password and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var resp tokenResponse
	if err := s.post(ctx, s.accountsURL("signInWithPassword"), body, &resp, "sign-in failed"); err != nil {
		return err
	}
	s.startSession(resp)
	return nil
}

// Register creates an account, sets its display name and starts a session.
func (s *Service) Register(ctx context.Context, email, password, displayName string) error {
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var resp tokenResponse
	if err := s.post(ctx, s.accountsURL("signUp"), body, &resp, "sign-up failed"); err != nil {
		return err
	}

	if displayName != "" {
		update := map[string]interface{}{
			"idToken":           resp.IDToken,
			"displayName":       displayName,
			"returnSecureToken": false,
		}
		var updResp struct {
			DisplayName string `json:"displayName"`
		}
		if err := s.post(ctx, s.accountsURL("update"), update, &updResp, "profile update failed"); err != nil {
			// the account exists either way; keep the session
			s.logger.Warn(fmt.Sprintf("setting display name for %s: %v", email, err))
		} else {
			resp.DisplayName = updResp.DisplayName
		}
	}
	s.startSession(resp)
	return nil
}

// SignInWithIDP signs in with an OAuth credential (e.g. a Google ID token
// obtained from the provider's own flow).
func (s *Service) SignInWithIDP(ctx context.Context, providerID, oauthIDToken string) error {
	body := map[string]interface{}{
		"postBody":            "id_token=" + oauthIDToken + "&providerId=" + providerID,
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}
	var resp tokenResponse
	if err := s.post(ctx, s.accountsURL("signInWithIdp"), body, &resp, "provider sign-in failed"); err != nil {
		return err
	}
	s.startSession(resp)
	return nil
}

// SignOut drops the session. Listeners observe a nil account.
func (s *Service) SignOut() {
	s.mu.Lock()
	s.sess = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
}

// CurrentAccount returns the signed-in principal, if any.
func (s *Service) CurrentAccount() (user.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return user.Account{}, false
	}
	return s.sess.account, true
}

// Token returns a fresh ID token for API calls, refreshing it when close to
// expiry. Without a session it returns empty with no error, so unauthenticated
// requests can still fire (required for public read endpoints).
func (s *Service) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	sess := s.sess
	s.mu.Unlock()
	if sess == nil {
		return "", nil
	}

	leeway := s.conf.TokenLeeway
	if leeway <= 0 {
		leeway = time.Minute
	}
	if time.Until(sess.expiresAt) > leeway {
		return sess.idToken, nil
	}
	return s.refresh(ctx, sess.refreshToken)
}

// OnAuthStateChanged registers an observer, fires it immediately with the
// current state (provider semantics) and returns an unsubscribe func.
func (s *Service) OnAuthStateChanged(fn func(*user.Account)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	var current *user.Account
	if s.sess != nil {
		acct := s.sess.account
		current = &acct
	}
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// tokenResponse covers both the identity toolkit (camelCase) and secure
// token (snake_case) response shapes.
type tokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

func (s *Service) startSession(resp tokenResponse) {
	acct := user.Account{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}
	fillFromClaims(&acct, resp.IDToken)

	s.mu.Lock()
	s.sess = &session{
		account:      acct,
		idToken:      resp.IDToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    expiry(resp.ExpiresIn, resp.IDToken),
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		a := acct
		fn(&a)
	}
}

// refresh exchanges the refresh token for a new ID token and updates the
// session in place.
func (s *Service) refresh(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := s.conf.TokenURL + "/token?key=" + url.QueryEscape(s.conf.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "building refresh request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := s.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "refreshing token")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", s.authError(httpResp, "token refresh failed")
	}

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	if err = json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", errors.Wrap(err, "decoding refresh response")
	}

	s.mu.Lock()
	if s.sess != nil {
		s.sess.idToken = resp.IDToken
		if resp.RefreshToken != "" {
			s.sess.refreshToken = resp.RefreshToken
		}
		s.sess.expiresAt = expiry(resp.ExpiresIn, resp.IDToken)
	}
	s.mu.Unlock()
	return resp.IDToken, nil
}

func (s *Service) accountsURL(action string) string {
	return s.conf.SignInURL + "/accounts:" + action + "?key=" + url.QueryEscape(s.conf.APIKey)
}

func (s *Service) post(ctx context.Context, endpoint string, body, out interface{}, fallbackMsg string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshaling auth request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "building auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling identity provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.authError(resp, fallbackMsg)
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding auth response")
	}
	return nil
}

func (s *Service) authError(resp *http.Response, fallbackMsg string) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	authErr := newAuthError(payload.Error.Message, fallbackMsg)
	s.logger.Debug(fmt.Sprintf("identity provider error: %s", authErr.Code))
	return authErr
}

func (s *Service) snapshotListeners() []func(*user.Account) {
	out := make([]func(*user.Account), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// fillFromClaims completes missing principal fields from the ID token's
// claims. The token is decoded, not verified; verification is the backend's
// job.
func fillFromClaims(acct *user.Account, idToken string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return
	}
	if acct.UID == "" {
		if sub, _ := claims["sub"].(string); sub != "" {
			acct.UID = sub
		} else if uid, _ := claims["user_id"].(string); uid != "" {
			acct.UID = uid
		}
	}
	if acct.Email == "" {
		acct.Email, _ = claims["email"].(string)
	}
	if acct.DisplayName == "" {
		acct.DisplayName, _ = claims["name"].(string)
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		acct.EmailVerified = verified
	}
}

// expiry derives the session expiry from the expiresIn hint, falling back to
// the token's own exp claim.
func expiry(expiresIn, idToken string) time.Time {
	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		return time.Now().Add(time.Duration(secs) * time.Second)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Now().Add(55 * time.Minute)
}
