package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventdesk/internal/utils"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeySession contextKey = "session"
)

// TokenCheck selects how strictly RequireAuth looks at the stored token.
type TokenCheck string

const (
	// TokenCheckPresence accepts any non-empty token.
	TokenCheckPresence TokenCheck = "presence"
	// TokenCheckExpiry parses the token as a JWT without verifying it and
	// rejects it once expired.
	TokenCheckExpiry TokenCheck = "expiry"
	// TokenCheckJWKS verifies the signature against the configured key set.
	TokenCheckJWKS TokenCheck = "jwks"
)

func ParseTokenCheck(s string) (TokenCheck, error) {
	switch TokenCheck(strings.ToLower(strings.TrimSpace(s))) {
	case TokenCheckPresence, "":
		return TokenCheckPresence, nil
	case TokenCheckExpiry:
		return TokenCheckExpiry, nil
	case TokenCheckJWKS:
		return TokenCheckJWKS, nil
	}
	return "", fmt.Errorf("unknown token check %q", s)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = utils.RequestID()
		}
		rw.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth lets a request through when a session token is stored and passes
// the configured check. Otherwise the requested path is remembered and the
// user is sent to the login screen. A token found only in the mirrored cookies
// is present but unsigned, so the signed session is re-established at login.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.cookies.Session(r)
		if !ok {
			s.logger.WithField("path", r.URL.Path).Debug("no session token found")
			s.redirectToLogin(w, r)
			return
		}

		if session.Mirrored {
			s.logger.WithField("path", r.URL.Path).Info("session found only in mirrored cookies")
			s.redirectToLogin(w, r)
			return
		}

		if err := s.checkToken(r.Context(), session.Token); err != nil {
			s.logger.WithError(err).Info("rejecting stored session token")
			s.cookies.ClearSession(w)
			s.redirectToLogin(w, r)
			return
		}

		fields := logrus.Fields{}
		if session.User != nil {
			fields["user_id"] = session.User.UserID
		}
		s.logger.WithFields(fields).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) checkToken(ctx context.Context, token string) error {
	switch s.tokenCheck {
	case TokenCheckExpiry:
		parsed, err := jwt.ParseInsecure([]byte(token))
		if err != nil {
			return fmt.Errorf("failed to parse token: %w", err)
		}
		return jwt.Validate(parsed)
	case TokenCheckJWKS:
		set, err := s.jwksCache.Lookup(ctx, s.jwksURL)
		if err != nil {
			return fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		_, err = jwt.Parse([]byte(token), jwt.WithKeySet(set), jwt.WithValidate(true))
		if err != nil {
			return fmt.Errorf("failed to verify token: %w", err)
		}
		return nil
	}
	return nil
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
