package server

import (
	"errors"
	"net/http"
	"net/url"

	"eventdesk/internal/api"
	"eventdesk/internal/storage"
)

// redirectToLogin remembers the requested path, both in a short lived cookie
// and as the next parameter, before sending the user to the login screen.
func (s *Service) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		next = r.URL.Path
	}
	s.cookies.SetRedirect(w, next)

	v := url.Values{}
	v.Set("next", next)
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

// loginDestination picks where a freshly signed in user lands. The posted
// next value wins over the redirect cookie; both must be local paths.
func (s *Service) loginDestination(w http.ResponseWriter, r *http.Request, next string) string {
	cookiePath, fromCookie := s.cookies.PopRedirect(w, r)
	if storage.LocalPath(next) {
		return next
	}
	if fromCookie {
		return cookiePath
	}
	return "/dashboard"
}

// sessionRejected ends the session when the backend refused the stored token
// and sends the user back through login. It reports whether it did.
func (s *Service) sessionRejected(w http.ResponseWriter, r *http.Request, err error) bool {
	var se *api.ServerError
	if !errors.As(err, &se) || !se.Unauthorized() {
		return false
	}

	s.cookies.ClearSession(w)
	s.redirectToLogin(w, r)
	return true
}
