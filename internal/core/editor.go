package core

import (
	"context"
	"fmt"

	"github.com/buddyapp/buddy/internal/domain"
	"github.com/buddyapp/buddy/internal/plugins/db/firedb"
)

// EditorMode is the binary view/edit state of the profile editor.
type EditorMode int

const (
	Viewing EditorMode = iota
	Editing
)

// ProfileEditor loads the signed-in user's profile, toggles between
// viewing and editing, and persists edits wholesale. Email stays
// read-only in every mode; concurrent editors are last-write-wins.
type ProfileEditor struct {
	provider *SessionProvider
	profiles *firedb.ProfileRepository

	mode    EditorMode
	profile *domain.Profile
	loaded  bool
}

// NewProfileEditor builds an editor over the current session.
func NewProfileEditor(provider *SessionProvider, profiles *firedb.ProfileRepository) *ProfileEditor {
	return &ProfileEditor{provider: provider, profiles: profiles}
}

// Load fetches the profile for the signed-in user. A missing document
// leaves type-appropriate defaults seeded from the session.
func (e *ProfileEditor) Load(ctx context.Context) error {
	sess, err := e.provider.ActiveSession()
	if err != nil {
		return err
	}
	profile, err := e.profiles.Get(ctx, sess, sess.UID)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &domain.Profile{UID: sess.UID, Email: sess.Email, Tipo: domain.AccountParticular}
	}
	e.profile = profile
	e.mode = Viewing
	e.loaded = true
	return nil
}

// BeginEdit switches to editing. The profile must be loaded first.
func (e *ProfileEditor) BeginEdit() error {
	if !e.loaded {
		return fmt.Errorf("profile not loaded")
	}
	e.mode = Editing
	return nil
}

// SetFields updates the mutable fields while editing. Email is not a
// parameter: it cannot be changed from the client.
func (e *ProfileEditor) SetFields(nombre, apellido string, tipo domain.AccountType, bio string) error {
	if e.mode != Editing {
		return fmt.Errorf("profile is not in edit mode")
	}
	if _, err := domain.ParseAccountType(string(tipo)); err != nil {
		return err
	}
	e.profile.Nombre = nombre
	e.profile.Apellido = apellido
	e.profile.Tipo = tipo
	e.profile.Bio = bio
	return nil
}

// Save persists the full field set and returns to viewing on success.
// On failure the editor stays in editing with the user's values intact.
func (e *ProfileEditor) Save(ctx context.Context) error {
	if e.mode != Editing {
		return fmt.Errorf("profile is not in edit mode")
	}
	sess, err := e.provider.ActiveSession()
	if err != nil {
		return err
	}
	if err := validate.Struct(e.profile); err != nil {
		return err
	}
	if err := e.profiles.Save(ctx, sess, e.profile); err != nil {
		return err
	}
	e.mode = Viewing
	return nil
}

// Mode returns the current editor mode.
func (e *ProfileEditor) Mode() EditorMode { return e.mode }

// Profile returns the loaded profile, nil before Load.
func (e *ProfileEditor) Profile() *domain.Profile { return e.profile }
