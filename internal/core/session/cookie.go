package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// CookieName is the name of the session cookie
const CookieName = "inkwell_session"

// MinCookieSecretLength is the minimum length of the cookie signing secret
const MinCookieSecretLength = 32

// CookieStore issues per-request cookie storages signed with one secret
type CookieStore struct {
	store *sessions.CookieStore
}

// NewCookieStore creates a cookie store. secure marks cookies HTTPS-only.
func NewCookieStore(secret string, secure bool, maxAgeSeconds int) (*CookieStore, error) {
	if len(secret) < MinCookieSecretLength {
		return nil, fmt.Errorf("session cookie secret must be at least %d bytes for security", MinCookieSecretLength)
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieStore{store: store}, nil
}

// For returns the Storage bound to one request/response pair.
// A cookie that fails to decode yields an empty storage instead of an error.
func (c *CookieStore) For(w http.ResponseWriter, r *http.Request) *CookieStorage {
	sess, err := c.store.Get(r, CookieName)
	if err != nil {
		// gorilla returns a fresh session alongside the decode error
		sess, _ = c.store.New(r, CookieName)
	}
	return &CookieStorage{session: sess, w: w, r: r}
}

// CookieStorage is a Storage persisted in a signed cookie
type CookieStorage struct {
	session *sessions.Session
	w       http.ResponseWriter
	r       *http.Request
}

func (c *CookieStorage) Get(key string) (string, bool, error) {
	raw, ok := c.session.Values[key]
	if !ok {
		return "", false, nil
	}
	v, ok := raw.(string)
	if !ok {
		// present but unusable; Load treats the empty value as corrupt
		return "", true, nil
	}
	return v, true, nil
}

func (c *CookieStorage) Set(key, value string) error {
	c.session.Values[key] = value
	return c.save()
}

func (c *CookieStorage) Delete(keys ...string) error {
	for _, k := range keys {
		delete(c.session.Values, k)
	}
	if len(c.session.Values) == 0 {
		c.session.Options.MaxAge = -1
	}
	return c.save()
}

func (c *CookieStorage) save() error {
	if c.w == nil {
		return nil
	}
	if err := c.session.Save(c.r, c.w); err != nil {
		return fmt.Errorf("failed to save session cookie: %w", err)
	}
	return nil
}
