package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buddyapp/buddy/internal/domain"
)

func TestSignInParsesSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:signInWithPassword" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}
		var req credentialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.ReturnSecureToken {
			t.Error("returnSecureToken must be set")
		}
		json.NewEncoder(w).Encode(credentialResponse{
			LocalID:      "U1",
			Email:        req.Email,
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    "3600",
		})
	}))
	defer ts.Close()

	c := NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	sess, err := c.SignIn(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if sess.UID != "U1" || sess.Email != "a@b.com" || sess.IDToken != "id-token" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.Expired() {
		t.Error("fresh session must not be expired")
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "EMAIL_EXISTS"}}`))
	}))
	defer ts.Close()

	c := NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	_, err := c.SignUp(context.Background(), "a@b.com", "secret1")
	if err == nil {
		t.Fatal("expected error")
	}
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error type = %T", err)
	}
	if authErr.Code != "EMAIL_EXISTS" {
		t.Errorf("Code = %q", authErr.Code)
	}
	if authErr.Message != "an account with this email already exists" {
		t.Errorf("Message = %q", authErr.Message)
	}
}

func TestSignInBadCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "INVALID_LOGIN_CREDENTIALS"}}`))
	}))
	defer ts.Close()

	c := NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	_, err := c.SignIn(context.Background(), "a@b.com", "wrong")
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v", err)
	}
	if authErr.Message != "invalid email or password" {
		t.Errorf("Message = %q", authErr.Message)
	}
}

func TestLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:lookup" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"users": [{"localId": "U1", "email": "a@b.com"}]}`))
	}))
	defer ts.Close()

	c := NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	uid, email, err := c.Lookup(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if uid != "U1" || email != "a@b.com" {
		t.Errorf("got (%q, %q)", uid, email)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users": []}`))
	}))
	defer ts.Close()

	c := NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	_, _, err := c.Lookup(context.Background(), "stale-token")
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v", err)
	}
	if authErr.Code != "USER_NOT_FOUND" {
		t.Errorf("Code = %q", authErr.Code)
	}
}

func TestRefresh(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		json.NewEncoder(w).Encode(refreshResponse{
			UserID:       "U1",
			IDToken:      "new-id-token",
			RefreshToken: "new-refresh-token",
			ExpiresIn:    "3600",
		})
	}))
	defer ts.Close()

	c := NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	sess, err := c.Refresh(context.Background(), "old-refresh-token")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if sess.IDToken != "new-id-token" || sess.RefreshToken != "new-refresh-token" {
		t.Errorf("unexpected session: %+v", sess)
	}
}
