package core

import (
	"context"
	"errors"
	"sync"

	"github.com/buddyapp/buddy/internal/domain"
	debuglog "github.com/buddyapp/buddy/internal/log"
	"github.com/buddyapp/buddy/internal/plugins/auth"
	"github.com/buddyapp/buddy/internal/plugins/db/firedb"
	"github.com/buddyapp/buddy/internal/plugins/db/fsdb"
)

// Snapshot is the (user, loading) pair every consumer of the session
// subscribes to. Loading true means "wait, do not redirect yet".
type Snapshot struct {
	Session *domain.Session
	Loading bool
}

// RegisterFields are the profile fields collected by the register form
// alongside the credential.
type RegisterFields struct {
	Nombre   string             `validate:"required"`
	Apellido string             `validate:"required"`
	Tipo     domain.AccountType `validate:"required,oneof=particular empresa"`
	Bio      string
}

// SessionProvider owns the session and broadcasts changes. It is the
// only state shared across panels.
type SessionProvider struct {
	mu       sync.Mutex
	auth     *auth.Client
	profiles *firedb.ProfileRepository
	store    *fsdb.SessionStore

	session *domain.Session
	loading bool
	subs    []chan Snapshot
}

// NewSessionProvider starts in the loading state; call Resolve to reach
// a settled signed-in or signed-out snapshot. The store may be nil when
// persistence across runs is not wanted.
func NewSessionProvider(authClient *auth.Client, profiles *firedb.ProfileRepository, store *fsdb.SessionStore) *SessionProvider {
	return &SessionProvider{auth: authClient, profiles: profiles, store: store, loading: true}
}

// Resolve performs the initial session resolution: reuse the cached
// session, refreshing its token when stale. A failed refresh means
// signed out, never an error surfaced to the user.
func (p *SessionProvider) Resolve(ctx context.Context) {
	var sess *domain.Session
	if p.store != nil {
		cached, err := p.store.Load()
		if err != nil {
			debuglog.Debug(debuglog.Basic, "session cache unreadable: %v\n", err)
		}
		if cached != nil {
			if cached.Expired() {
				refreshed, err := p.auth.Refresh(ctx, cached.RefreshToken)
				if err == nil {
					refreshed.Email = cached.Email
					refreshed.CreatedAt = cached.CreatedAt
					sess = refreshed
					if err := p.store.Save(sess); err != nil {
						debuglog.Debug(debuglog.Basic, "session cache write failed: %v\n", err)
					}
				} else {
					_ = p.store.Clear()
				}
			} else {
				sess = cached
				// Verify the token still maps to a live account. Only a
				// definite rejection signs the user out; network trouble
				// keeps the cached session so offline starts still work.
				if _, _, err := p.auth.Lookup(ctx, cached.IDToken); err != nil {
					var authErr *domain.AuthError
					if errors.As(err, &authErr) && authErr.Code != "NETWORK" {
						sess = nil
						_ = p.store.Clear()
					}
				}
			}
		}
	}

	p.mu.Lock()
	p.session = sess
	p.loading = false
	p.broadcastLocked()
	p.mu.Unlock()
}

// SignUp creates the credential, then writes the profile document for
// the new UID. There is no compensating transaction: if the profile
// write fails the session stands and the failure is returned alongside
// it so the caller can tell the user.
func (p *SessionProvider) SignUp(ctx context.Context, email, password string, fields RegisterFields) (*domain.Session, error) {
	if err := validate.Struct(fields); err != nil {
		return nil, err
	}

	sess, err := p.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.setSession(sess)

	profile := &domain.Profile{
		UID:      sess.UID,
		Nombre:   fields.Nombre,
		Apellido: fields.Apellido,
		Email:    email,
		Tipo:     fields.Tipo,
		Bio:      fields.Bio,
	}
	if err := p.profiles.Create(ctx, sess, profile); err != nil {
		return sess, err
	}
	return sess, nil
}

// SignIn exchanges credentials for a session.
func (p *SessionProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	sess, err := p.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.setSession(sess)
	return sess, nil
}

// SignOut clears the session. Calling it signed out is a no-op, not an
// error.
func (p *SessionProvider) SignOut() {
	p.mu.Lock()
	p.session = nil
	p.loading = false
	p.broadcastLocked()
	p.mu.Unlock()

	if p.store != nil {
		_ = p.store.Clear()
	}
}

// Snapshot returns the current (session, loading) pair.
func (p *SessionProvider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Session: p.session, Loading: p.loading}
}

// ActiveSession returns the signed-in session or an AuthError when
// there is none.
func (p *SessionProvider) ActiveSession() (*domain.Session, error) {
	snap := p.Snapshot()
	if snap.Session == nil {
		return nil, &domain.AuthError{Code: "NO_SESSION", Message: "you are not signed in"}
	}
	return snap.Session, nil
}

// Subscribe returns a channel that receives the current snapshot
// immediately and every change after it. Slow subscribers only ever lag
// by one snapshot; older ones are dropped.
func (p *SessionProvider) Subscribe() <-chan Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan Snapshot, 1)
	ch <- Snapshot{Session: p.session, Loading: p.loading}
	p.subs = append(p.subs, ch)
	return ch
}

func (p *SessionProvider) setSession(sess *domain.Session) {
	p.mu.Lock()
	p.session = sess
	p.loading = false
	p.broadcastLocked()
	p.mu.Unlock()

	if p.store != nil && sess != nil {
		if err := p.store.Save(sess); err != nil {
			debuglog.Debug(debuglog.Basic, "session cache write failed: %v\n", err)
		}
	}
}

func (p *SessionProvider) broadcastLocked() {
	snap := Snapshot{Session: p.session, Loading: p.loading}
	for _, ch := range p.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
