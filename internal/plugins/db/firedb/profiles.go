package firedb

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/buddyapp/buddy/internal/domain"
	debuglog "github.com/buddyapp/buddy/internal/log"
)

const profileCollection = "users"

// ProfileRepository reads and writes the per-user profile document,
// keyed by UID. Writes are wholesale: last writer wins, no concurrency
// check.
type ProfileRepository struct {
	client *Client
}

// Get fetches the profile for a UID. A missing document is not an
// error; it returns (nil, nil) so callers can fall back to defaults.
func (r *ProfileRepository) Get(ctx context.Context, sess *domain.Session, uid string) (*domain.Profile, error) {
	endpoint := r.client.docURL(profileCollection, uid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.ProfileError{Op: domain.ProfileLoad, UID: uid, Err: err}
	}

	body, status, err := r.send(req, sess)
	if err != nil {
		return nil, &domain.ProfileError{Op: domain.ProfileLoad, UID: uid, Err: err}
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status > 299 {
		return nil, &domain.ProfileError{
			Op: domain.ProfileLoad, UID: uid,
			Err: errors.Errorf("firestore returned status %d", status),
		}
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &domain.ProfileError{Op: domain.ProfileLoad, UID: uid, Err: err}
	}
	return decodeProfile(doc), nil
}

// Create writes the initial profile document at registration, email
// included. It is the only write that carries the email field.
func (r *ProfileRepository) Create(ctx context.Context, sess *domain.Session, p *domain.Profile) error {
	return r.patch(ctx, sess, p, true)
}

// Save persists an edited profile wholesale. The email field never
// leaves the client here; the update mask excludes it.
func (r *ProfileRepository) Save(ctx context.Context, sess *domain.Session, p *domain.Profile) error {
	return r.patch(ctx, sess, p, false)
}

func (r *ProfileRepository) patch(ctx context.Context, sess *domain.Session, p *domain.Profile, includeEmail bool) error {
	doc := encodeProfile(p, includeEmail)
	payload, err := json.Marshal(doc)
	if err != nil {
		return &domain.ProfileError{Op: domain.ProfileSave, UID: p.UID, Err: err}
	}

	q := url.Values{}
	for name := range doc.Fields {
		q.Add("updateMask.fieldPaths", name)
	}
	endpoint := r.client.docURL(profileCollection, p.UID) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &domain.ProfileError{Op: domain.ProfileSave, UID: p.UID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	_, status, err := r.send(req, sess)
	if err != nil {
		return &domain.ProfileError{Op: domain.ProfileSave, UID: p.UID, Err: err}
	}
	if status < 200 || status > 299 {
		return &domain.ProfileError{
			Op: domain.ProfileSave, UID: p.UID,
			Err: errors.Errorf("firestore returned status %d", status),
		}
	}
	return nil
}

func (r *ProfileRepository) send(req *http.Request, sess *domain.Session) ([]byte, int, error) {
	if sess != nil && sess.IDToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.IDToken)
	}
	debuglog.Debug(debuglog.Detailed, "firestore %s %s\n", req.Method, req.URL.Path)

	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
