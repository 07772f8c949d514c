// Package firedb is the Firestore REST client behind the profile store.
// Requests authenticate with the signed-in user's ID token, so the
// client can only touch documents the user's security rules allow.
package firedb

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultFirestoreURL = "https://firestore.googleapis.com/v1"

const storeTimeout = 30 * time.Second

// Client scopes document access to one Firebase project.
type Client struct {
	projectID  string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Firestore client for the given project.
func NewClient(projectID string) *Client {
	return &Client{
		projectID:  projectID,
		baseURL:    defaultFirestoreURL,
		httpClient: &http.Client{Timeout: storeTimeout},
	}
}

// WithBaseURL overrides the Firestore endpoint; tests point it at a
// local server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// Profiles returns the typed repository for profile documents.
func (c *Client) Profiles() *ProfileRepository {
	return &ProfileRepository{client: c}
}

func (c *Client) docURL(collection, id string) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s/%s",
		c.baseURL, c.projectID, collection, id)
}
