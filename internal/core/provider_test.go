package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddyapp/buddy/internal/domain"
	"github.com/buddyapp/buddy/internal/plugins/auth"
	"github.com/buddyapp/buddy/internal/plugins/db/firedb"
	"github.com/buddyapp/buddy/internal/plugins/db/fsdb"
)

// fakeBackends stands in for the Identity Toolkit and Firestore at the
// same time: auth actions mint sessions, document paths hold profiles.
type fakeBackends struct {
	mu       sync.Mutex
	nextUID  string
	accounts map[string]string // email -> password
	docs     map[string]json.RawMessage
	failDocs bool
	revoked  bool
}

func newFakeBackends() *fakeBackends {
	return &fakeBackends{
		nextUID:  "U1",
		accounts: map[string]string{},
		docs:     map[string]json.RawMessage{},
	}
}

func (f *fakeBackends) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case strings.HasSuffix(r.URL.Path, "accounts:signUp"):
			var req struct{ Email, Password string }
			json.NewDecoder(r.Body).Decode(&req)
			if _, dup := f.accounts[req.Email]; dup {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": {"message": "EMAIL_EXISTS"}}`))
				return
			}
			f.accounts[req.Email] = req.Password
			json.NewEncoder(w).Encode(map[string]string{
				"localId": f.nextUID, "email": req.Email,
				"idToken": "token-" + f.nextUID, "refreshToken": "refresh", "expiresIn": "3600",
			})
		case strings.HasSuffix(r.URL.Path, "accounts:signInWithPassword"):
			var req struct{ Email, Password string }
			json.NewDecoder(r.Body).Decode(&req)
			if pw, ok := f.accounts[req.Email]; !ok || pw != req.Password {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": {"message": "INVALID_LOGIN_CREDENTIALS"}}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"localId": f.nextUID, "email": req.Email,
				"idToken": "token-" + f.nextUID, "refreshToken": "refresh", "expiresIn": "3600",
			})
		case strings.HasSuffix(r.URL.Path, "accounts:lookup"):
			if f.revoked {
				w.Write([]byte(`{"users": []}`))
				return
			}
			w.Write([]byte(`{"users": [{"localId": "U1", "email": "a@b.com"}]}`))
		case strings.HasSuffix(r.URL.Path, "/token"):
			json.NewEncoder(w).Encode(map[string]string{
				"user_id": "U1", "id_token": "token-fresh",
				"refresh_token": "refresh-fresh", "expires_in": "3600",
			})
		case strings.Contains(r.URL.Path, "/documents/"):
			if f.failDocs {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			switch r.Method {
			case http.MethodGet:
				doc, ok := f.docs[r.URL.Path]
				if !ok {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.Write(doc)
			case http.MethodPatch:
				body, _ := json.Marshal(mergeDoc(f.docs[r.URL.Path], r))
				f.docs[r.URL.Path] = body
				w.Write(body)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

// mergeDoc merges a PATCH body over the stored document the way
// Firestore does with an update mask.
func mergeDoc(existing json.RawMessage, r *http.Request) map[string]any {
	var doc struct {
		Fields map[string]any `json:"fields"`
	}
	json.NewDecoder(r.Body).Decode(&doc)

	merged := map[string]any{}
	if existing != nil {
		var prev struct {
			Fields map[string]any `json:"fields"`
		}
		json.Unmarshal(existing, &prev)
		for k, v := range prev.Fields {
			merged[k] = v
		}
	}
	for k, v := range doc.Fields {
		merged[k] = v
	}
	return map[string]any{"fields": merged}
}

func newTestProvider(t *testing.T) (*SessionProvider, *fakeBackends) {
	fake := newFakeBackends()
	ts := httptest.NewServer(fake.handler(t))
	t.Cleanup(ts.Close)

	authClient := auth.NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	store := firedb.NewClient("proj").WithBaseURL(ts.URL)
	return NewSessionProvider(authClient, store.Profiles(), nil), fake
}

func TestSignUpCreatesSessionAndProfile(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	sess, err := provider.SignUp(ctx, "a@b.com", "secret1", RegisterFields{
		Nombre: "Ana", Apellido: "Ruiz", Tipo: domain.AccountParticular, Bio: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "U1", sess.UID)

	snap := provider.Snapshot()
	require.NotNil(t, snap.Session)
	assert.False(t, snap.Loading)

	// A fresh fetch must return exactly the submitted fields.
	editor := NewProfileEditor(provider, profilesOf(t, provider))
	require.NoError(t, editor.Load(ctx))
	p := editor.Profile()
	assert.Equal(t, "Ana", p.Nombre)
	assert.Equal(t, "Ruiz", p.Apellido)
	assert.Equal(t, "a@b.com", p.Email)
	assert.Equal(t, domain.AccountParticular, p.Tipo)
	assert.Equal(t, "hi", p.Bio)
}

func TestSignUpProfileWriteFailureKeepsSession(t *testing.T) {
	provider, fake := newTestProvider(t)
	fake.failDocs = true

	sess, err := provider.SignUp(context.Background(), "a@b.com", "secret1", RegisterFields{
		Nombre: "Ana", Apellido: "Ruiz", Tipo: domain.AccountParticular,
	})
	require.Error(t, err, "profile write failure must be reported")
	require.NotNil(t, sess, "the credential has no rollback; the session stands")
	assert.NotNil(t, provider.Snapshot().Session)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "a@b.com", "secret1", RegisterFields{
		Nombre: "Ana", Apellido: "Ruiz", Tipo: domain.AccountParticular,
	})
	require.NoError(t, err)
	provider.SignOut()

	_, err = provider.SignIn(ctx, "a@b.com", "wrong")
	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid email or password", authErr.Message)
	assert.Nil(t, provider.Snapshot().Session)
}

func TestSignOutIsIdempotent(t *testing.T) {
	provider, _ := newTestProvider(t)
	provider.SignOut()
	provider.SignOut()
	snap := provider.Snapshot()
	assert.Nil(t, snap.Session)
	assert.False(t, snap.Loading)
}

func TestSubscribeDeliversCurrentAndChanges(t *testing.T) {
	provider, _ := newTestProvider(t)
	ch := provider.Subscribe()

	first := <-ch
	assert.True(t, first.Loading, "initial snapshot arrives before resolution")

	provider.Resolve(context.Background())
	second := <-ch
	assert.False(t, second.Loading)
	assert.Nil(t, second.Session)

	_, err := provider.SignUp(context.Background(), "a@b.com", "secret1", RegisterFields{
		Nombre: "Ana", Apellido: "Ruiz", Tipo: domain.AccountParticular,
	})
	require.NoError(t, err)
	third := <-ch
	require.NotNil(t, third.Session)
	assert.Equal(t, "U1", third.Session.UID)
}

// newCachedProvider seeds a session cache on disk and builds a provider
// over it, for resolution tests.
func newCachedProvider(t *testing.T, sess *domain.Session) (*SessionProvider, *fakeBackends, *fsdb.SessionStore) {
	t.Helper()
	fake := newFakeBackends()
	ts := httptest.NewServer(fake.handler(t))
	t.Cleanup(ts.Close)

	cache := fsdb.NewSessionStore(t.TempDir())
	require.NoError(t, cache.Save(sess))

	authClient := auth.NewClient("test-key").WithEndpoints(ts.URL, ts.URL)
	store := firedb.NewClient("proj").WithBaseURL(ts.URL)
	return NewSessionProvider(authClient, store.Profiles(), cache), fake, cache
}

func TestResolveRestoresCachedSession(t *testing.T) {
	provider, _, _ := newCachedProvider(t, &domain.Session{
		UID: "U1", Email: "a@b.com", IDToken: "token-U1",
		RefreshToken: "refresh", ExpiresAt: time.Now().Add(time.Hour),
	})

	provider.Resolve(context.Background())
	snap := provider.Snapshot()
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.Session)
	assert.Equal(t, "U1", snap.Session.UID)
}

func TestResolveRevokedTokenSignsOut(t *testing.T) {
	provider, fake, cache := newCachedProvider(t, &domain.Session{
		UID: "U1", Email: "a@b.com", IDToken: "token-U1",
		RefreshToken: "refresh", ExpiresAt: time.Now().Add(time.Hour),
	})
	fake.revoked = true

	provider.Resolve(context.Background())
	assert.Nil(t, provider.Snapshot().Session)

	cached, err := cache.Load()
	require.NoError(t, err)
	assert.Nil(t, cached, "revoked sessions must not survive on disk")
}

func TestResolveRefreshesExpiredSession(t *testing.T) {
	provider, _, _ := newCachedProvider(t, &domain.Session{
		UID: "U1", Email: "a@b.com", IDToken: "token-stale",
		RefreshToken: "refresh", ExpiresAt: time.Now().Add(-time.Minute),
	})

	provider.Resolve(context.Background())
	snap := provider.Snapshot()
	require.NotNil(t, snap.Session)
	assert.Equal(t, "token-fresh", snap.Session.IDToken)
	assert.Equal(t, "a@b.com", snap.Session.Email, "the refresh keeps the cached email")
}

// profilesOf digs the repository back out for editor tests sharing the
// provider's fake.
func profilesOf(t *testing.T, provider *SessionProvider) *firedb.ProfileRepository {
	t.Helper()
	return provider.profiles
}
