package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"eventdesk/internal/api"
	"eventdesk/pkg/types"
)

// backendContext detaches a backend call from the request so a user who
// navigates away does not cancel a write that is already in flight.
func (s *Service) backendContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.config.APITimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
	return api.WithCSRFToken(ctx, s.cookies.CSRFToken(r)), cancel
}

// ensureCSRFToken fetches a token from the backend when the browser has none.
func (s *Service) ensureCSRFToken(w http.ResponseWriter, r *http.Request) {
	if s.cookies.CSRFToken(r) != "" {
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	token, err := s.api.FetchCSRFToken(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to fetch csrf token")
		return
	}
	if token != "" {
		s.cookies.SetCSRFToken(w, token)
	}
}

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if s.cookies.SignedIn(r) {
		s.logger.Debug("user is already logged in, redirecting to dashboard")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	s.ensureCSRFToken(w, r)

	data := &types.LoginPageData{
		BasePageData: flash(r),
		Next:         r.URL.Query().Get("next"),
	}
	data.Title = "Login"
	if r.URL.Query().Get("reset") == "true" {
		data.Notice = "Password reset. Please log in with your new password."
	}
	if r.URL.Query().Get("registered") == "true" {
		data.Notice = "Account created. Please log in."
	}

	s.render(w, r, "page.login", data)
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
		Email:        email,
		Next:         r.PostFormValue("next"),
	}

	data.FieldErrors = validate(loginRules, map[string]string{"email": email, "password": password})
	if data.FieldErrors != nil {
		data.Error = "Please fix the highlighted fields."
		s.render(w, r, "page.login", data)
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	session, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.WithError(err).Info("login failed")
		data.Error = api.UserMessage(err)
		s.render(w, r, "page.login", data)
		return
	}

	if err := s.cookies.SetSession(w, session); err != nil {
		s.logger.WithError(err).Error("failed to store session")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, s.loginDestination(w, r, data.Next), http.StatusSeeOther)
}

// handleLogout drops the stored session and the user's in-memory wizard.
func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := s.cookies.Session(r); ok && !session.Mirrored && session.User != nil {
		s.wizards.forget(session.User.UserID)
	}
	s.cookies.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Service) handleGetForgotPassword(w http.ResponseWriter, r *http.Request) {
	data := &types.ResetPageData{BasePageData: flash(r)}
	data.Title = "Reset Password"
	s.render(w, r, "page.reset", data)
}

// handlePostForgotPassword asks the backend to email a reset code.
func (s *Service) handlePostForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	data := &types.ResetPageData{
		BasePageData: types.BasePageData{Title: "Reset Password"},
		Email:        email,
	}

	data.FieldErrors = validate(resetRequestRules, map[string]string{"email": email})
	if data.FieldErrors != nil {
		s.render(w, r, "page.reset", data)
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	if err := s.api.RequestPasswordReset(ctx, email); err != nil {
		s.logger.WithError(err).Info("password reset request failed")
		data.Error = api.UserMessage(err)
		s.render(w, r, "page.reset", data)
		return
	}

	data.CodeSent = true
	data.Notice = "A reset code has been sent to your email."
	s.render(w, r, "page.reset", data)
}

// handlePostResetPassword verifies the emailed code and sets the new password.
func (s *Service) handlePostResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	var input types.PasswordResetInput
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	input.Code = strings.TrimSpace(input.Code)

	data := &types.ResetPageData{
		BasePageData: types.BasePageData{Title: "Reset Password"},
		Email:        input.Email,
		CodeSent:     true,
	}

	data.FieldErrors = validate(resetVerifyRules, map[string]string{
		"code":                 input.Code,
		"new_password":         input.NewPassword,
		"confirm_new_password": input.ConfirmNewPassword,
	})
	if data.FieldErrors != nil {
		s.render(w, r, "page.reset", data)
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	if err := s.api.VerifyResetCode(ctx, &input); err != nil {
		s.logger.WithError(err).Info("password reset verification failed")
		data.Error = api.UserMessage(err)
		s.render(w, r, "page.reset", data)
		return
	}

	http.Redirect(w, r, "/login?reset=true", http.StatusSeeOther)
}
