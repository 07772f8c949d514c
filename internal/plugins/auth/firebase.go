// Package auth wraps the Firebase Identity Toolkit REST API for
// email/password credentials. Only the session-shaped slice of the API
// is exposed; everything else Firebase can do is out of scope for the
// client.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/buddyapp/buddy/internal/domain"
	debuglog "github.com/buddyapp/buddy/internal/log"
)

const (
	defaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"
	defaultTokenURL    = "https://securetoken.googleapis.com/v1"

	authTimeout = 30 * time.Second
)

// Client calls the Identity Toolkit with one project API key.
type Client struct {
	apiKey      string
	identityURL string
	tokenURL    string
	httpClient  *http.Client
}

// NewClient builds an auth client for the given Firebase web API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:      apiKey,
		identityURL: defaultIdentityURL,
		tokenURL:    defaultTokenURL,
		httpClient:  &http.Client{Timeout: authTimeout},
	}
}

// WithEndpoints overrides the Google endpoints; tests point these at a
// local server.
func (c *Client) WithEndpoints(identityURL, tokenURL string) *Client {
	if identityURL != "" {
		c.identityURL = identityURL
	}
	if tokenURL != "" {
		c.tokenURL = tokenURL
	}
	return c
}

type credentialRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

type firebaseError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates a credential and returns the new session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.credentialCall(ctx, "accounts:signUp", email, password)
}

// SignIn exchanges a credential for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.credentialCall(ctx, "accounts:signInWithPassword", email, password)
}

// Lookup verifies an ID token and returns the account it belongs to.
// A revoked or disabled account comes back as an AuthError.
func (c *Client) Lookup(ctx context.Context, idToken string) (uid, email string, err error) {
	payload, err := json.Marshal(map[string]string{"idToken": idToken})
	if err != nil {
		return "", "", errors.Wrap(err, "auth: marshal lookup request")
	}

	endpoint := c.identityURL + "/accounts:lookup?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", "", errors.Wrap(err, "auth: build lookup request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.send(req)
	if err != nil {
		return "", "", err
	}

	var lr struct {
		Users []struct {
			LocalID string `json:"localId"`
			Email   string `json:"email"`
		} `json:"users"`
	}
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", "", errors.Wrap(err, "auth: decode lookup response")
	}
	if len(lr.Users) == 0 {
		return "", "", &domain.AuthError{Code: "USER_NOT_FOUND", Message: "your session has expired, sign in again"}
	}
	return lr.Users[0].LocalID, lr.Users[0].Email, nil
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := c.tokenURL + "/token?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "auth: build refresh request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, errors.Wrap(err, "auth: decode refresh response")
	}
	return sessionFrom(rr.UserID, "", rr.IDToken, rr.RefreshToken, rr.ExpiresIn), nil
}

func (c *Client) credentialCall(ctx context.Context, action, email, password string) (*domain.Session, error) {
	payload, err := json.Marshal(credentialRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, errors.Wrap(err, "auth: marshal credential request")
	}

	endpoint := c.identityURL + "/" + action + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "auth: build credential request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	var cr credentialResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, errors.Wrap(err, "auth: decode credential response")
	}
	sess := sessionFrom(cr.LocalID, cr.Email, cr.IDToken, cr.RefreshToken, cr.ExpiresIn)
	sess.CreatedAt = time.Now()
	return sess, nil
}

// send executes the request and maps non-2xx responses to AuthError.
func (c *Client) send(req *http.Request) ([]byte, error) {
	debuglog.Debug(debuglog.Detailed, "auth %s %s\n", req.Method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.AuthError{Code: "NETWORK", Message: "cannot reach the authentication service"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.AuthError{Code: "NETWORK", Message: "cannot read the authentication response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var fe firebaseError
		code := "UNKNOWN"
		if err := json.Unmarshal(body, &fe); err == nil && fe.Error.Message != "" {
			code = fe.Error.Message
		}
		return nil, &domain.AuthError{Code: code, Message: messageForCode(code)}
	}
	return body, nil
}

// messageForCode turns Firebase error codes into user-facing messages.
// Unknown codes pass through so nothing gets swallowed.
func messageForCode(code string) string {
	switch code {
	case "EMAIL_EXISTS":
		return "an account with this email already exists"
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return "invalid email or password"
	case "WEAK_PASSWORD", "WEAK_PASSWORD : Password should be at least 6 characters":
		return "password should be at least 6 characters"
	case "USER_DISABLED":
		return "this account has been disabled"
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "too many attempts, try again later"
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN":
		return "your session has expired, sign in again"
	default:
		return code
	}
}

func sessionFrom(uid, email, idToken, refreshToken, expiresIn string) *domain.Session {
	ttl, err := strconv.Atoi(expiresIn)
	if err != nil || ttl <= 0 {
		ttl = 3600
	}
	return &domain.Session{
		UID:          uid,
		Email:        email,
		IDToken:      idToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(ttl) * time.Second),
	}
}
