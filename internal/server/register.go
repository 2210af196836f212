package server

import (
	"net/http"
	"strings"

	"eventdesk/internal/api"
	"eventdesk/pkg/types"
)

func (s *Service) handleGetSignup(w http.ResponseWriter, r *http.Request) {
	if s.cookies.SignedIn(r) {
		s.logger.Debug("user is already logged in, redirecting to dashboard")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	s.ensureCSRFToken(w, r)

	data := &types.SignupPageData{
		BasePageData: types.BasePageData{Title: "Sign Up"},
	}

	s.render(w, r, "page.signup", data)
}

func (s *Service) handlePostSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	var input types.SignupInput
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}
	trimSignup(&input)

	data := &types.SignupPageData{
		BasePageData: types.BasePageData{Title: "Sign Up"},
		Input:        input,
	}
	data.Input.Password, data.Input.ConfirmPassword = "", ""

	data.FieldErrors = validate(signupRules, signupValues(&input))
	if data.FieldErrors != nil {
		s.logger.WithField("field_errors", data.FieldErrors).Info("validation errors during signup")
		data.Error = "Please fix the highlighted fields."
		s.render(w, r, "page.signup", data)
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	if err := s.api.Signup(ctx, &input); err != nil {
		s.logger.WithError(err).Info("signup failed")
		data.Error = api.UserMessage(err)
		s.render(w, r, "page.signup", data)
		return
	}

	http.Redirect(w, r, "/login?registered=true", http.StatusSeeOther)
}

func trimSignup(in *types.SignupInput) {
	for _, f := range []*string{&in.Name, &in.Email, &in.PhoneNumber, &in.Address, &in.City, &in.State, &in.Country} {
		*f = strings.TrimSpace(*f)
	}
}
