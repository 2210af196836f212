// Package storage owns every value the browser keeps for eventdesk: the
// session and its mirrored cookies, the redirect target, the CSRF token, the
// one-shot popup flag and the draft marker. Handlers never touch these cookies
// by name; they go through CookieJar.
package storage

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"

	"eventdesk/pkg/types"
)

const (
	KeySession    = "eventdesk_session"
	KeyAuthToken  = "authToken"
	KeyUser       = "user"
	KeyEventDraft = "eventDraft"
	KeyPopupShown = "popupShown"
	KeyRedirect   = "eventdesk_redirect"
)

const redirectMaxAge = 5 * time.Minute

type CookieJar struct {
	codec   *securecookie.SecureCookie
	logger  logrus.FieldLogger
	secure  bool
	maxAge  int
	csrfKey string
}

// NewCookieJar builds a jar from base64 encoded hash and block keys. Empty
// keys generate random ones, which invalidates sessions on restart.
func NewCookieJar(config *types.Config, logger logrus.FieldLogger) (*CookieJar, error) {
	hashKey, err := decodeKey(config.CookieHashKey, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_HASH_KEY: %w", err)
	}
	blockKey, err := decodeKey(config.CookieBlockKey, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_BLOCK_KEY: %w", err)
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(config.SessionMaxAgeSec)

	csrfKey := config.CSRFCookieName
	if csrfKey == "" {
		csrfKey = "csrftoken"
	}

	return &CookieJar{
		codec:   codec,
		logger:  logger,
		secure:  config.CookieSecure,
		maxAge:  config.SessionMaxAgeSec,
		csrfKey: csrfKey,
	}, nil
}

func decodeKey(encoded string, size int) ([]byte, error) {
	if encoded == "" {
		return securecookie.GenerateRandomKey(size), nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (j *CookieJar) set(w http.ResponseWriter, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   j.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (j *CookieJar) clear(w http.ResponseWriter, name string) {
	j.set(w, name, "", -1, true)
}

// SetSession stores the token and profile in the encrypted session cookie and
// mirrors both into the plain authToken and user cookies.
func (j *CookieJar) SetSession(w http.ResponseWriter, session *types.Session) error {
	encoded, err := j.codec.Encode(KeySession, session)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	j.set(w, KeySession, encoded, j.maxAge, true)
	j.set(w, KeyAuthToken, session.Token, j.maxAge, false)

	if session.User != nil {
		if err := j.setUser(w, session.User); err != nil {
			return err
		}
	}
	return nil
}

func (j *CookieJar) setUser(w http.ResponseWriter, user *types.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user cookie: %w", err)
	}
	j.set(w, KeyUser, url.QueryEscape(string(data)), j.maxAge, false)
	return nil
}

// Session returns the stored session. When the encrypted cookie is missing or
// unreadable the mirrored cookies are used instead and the result is marked
// Mirrored. A malformed value is logged and treated as absent.
func (j *CookieJar) Session(r *http.Request) (*types.Session, bool) {
	if c, err := r.Cookie(KeySession); err == nil {
		var session types.Session
		if err := j.codec.Decode(KeySession, c.Value, &session); err == nil && session.Token != "" {
			return &session, true
		} else if err != nil {
			j.logger.WithError(err).Warn("ignoring unreadable session cookie")
		}
	}

	c, err := r.Cookie(KeyAuthToken)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return &types.Session{Token: c.Value, User: j.User(r), Mirrored: true}, true
}

// SignedIn reports whether the encrypted session cookie holds a session.
func (j *CookieJar) SignedIn(r *http.Request) bool {
	session, ok := j.Session(r)
	return ok && !session.Mirrored
}

// User returns the profile from the mirrored user cookie.
func (j *CookieJar) User(r *http.Request) *types.User {
	c, err := r.Cookie(KeyUser)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		j.logger.WithError(err).Warn("ignoring malformed user cookie")
		return nil
	}
	var user types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		j.logger.WithError(err).Warn("ignoring malformed user cookie")
		return nil
	}
	return &user
}

// UpdateUser rewrites the stored profile while keeping the token.
func (j *CookieJar) UpdateUser(w http.ResponseWriter, r *http.Request, user *types.User) error {
	session, ok := j.Session(r)
	if !ok || session.Mirrored {
		return j.setUser(w, user)
	}
	session.User = user
	return j.SetSession(w, session)
}

// ClearSession removes every trace of the session.
func (j *CookieJar) ClearSession(w http.ResponseWriter) {
	for _, name := range []string{KeySession, KeyAuthToken, KeyUser, KeyEventDraft, KeyPopupShown} {
		j.clear(w, name)
	}
}

// SetRedirect remembers where to send the user after logging in.
func (j *CookieJar) SetRedirect(w http.ResponseWriter, path string) {
	j.set(w, KeyRedirect, url.QueryEscape(path), int(redirectMaxAge.Seconds()), true)
}

// PopRedirect returns and clears the remembered path. Anything that is not a
// local path is dropped.
func (j *CookieJar) PopRedirect(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, err := r.Cookie(KeyRedirect)
	if err != nil {
		return "", false
	}
	j.clear(w, KeyRedirect)

	path, err := url.QueryUnescape(c.Value)
	if err != nil || !LocalPath(path) {
		return "", false
	}
	return path, true
}

// LocalPath reports whether path is safe to redirect to.
func LocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.Contains(path, "\\")
}

func (j *CookieJar) CSRFToken(r *http.Request) string {
	c, err := r.Cookie(j.csrfKey)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetCSRFToken stores a token fetched from the backend. The cookie is readable
// by scripts, like the backend's own.
func (j *CookieJar) SetCSRFToken(w http.ResponseWriter, token string) {
	j.set(w, j.csrfKey, token, j.maxAge, false)
}

func (j *CookieJar) PopupShown(r *http.Request) bool {
	c, err := r.Cookie(KeyPopupShown)
	return err == nil && c.Value == "true"
}

func (j *CookieJar) MarkPopupShown(w http.ResponseWriter) {
	j.set(w, KeyPopupShown, "true", j.maxAge, false)
}

// DraftSavedAt returns when the current user's wizard draft was last saved.
func (j *CookieJar) DraftSavedAt(r *http.Request) (time.Time, bool) {
	c, err := r.Cookie(KeyEventDraft)
	if err != nil || c.Value == "" {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(c.Value, 10, 64)
	if err != nil {
		j.logger.WithError(err).Warn("ignoring malformed draft cookie")
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}

func (j *CookieJar) MarkDraftSaved(w http.ResponseWriter, at time.Time) {
	j.set(w, KeyEventDraft, strconv.FormatInt(at.Unix(), 10), j.maxAge, true)
}

func (j *CookieJar) ClearDraft(w http.ResponseWriter) {
	j.clear(w, KeyEventDraft)
}
