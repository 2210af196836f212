package server

import (
	"net/http"
	"strings"

	"eventdesk/internal/api"
	"eventdesk/pkg/types"
)

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	data := &types.ProfilePageData{BasePageData: flash(r), User: *user}
	data.Title = "Profile"

	s.render(w, r, "page.profile", data)
}

// handlePostProfile saves the edited profile and rewrites the copy kept in
// the session cookies.
func (s *Service) handlePostProfile(w http.ResponseWriter, r *http.Request) {
	current, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	var updated types.User
	if err := decoder.Decode(&updated, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}
	updated.UserID = current.UserID
	trimUser(&updated)

	data := &types.ProfilePageData{BasePageData: types.BasePageData{Title: "Profile"}, User: updated}

	data.FieldErrors = validate(profileRules, profileValues(&updated))
	if data.FieldErrors != nil {
		data.Error = "Please fix the highlighted fields."
		s.render(w, r, "page.profile", data)
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	if err := s.api.UpdateUser(ctx, &updated); err != nil {
		s.logger.WithError(err).WithField("user_id", updated.UserID).Error("failed to update profile")
		data.Error = api.UserMessage(err)
		s.render(w, r, "page.profile", data)
		return
	}

	if err := s.cookies.UpdateUser(w, r, &updated); err != nil {
		s.logger.WithError(err).WithField("user_id", updated.UserID).Error("failed to rewrite session cookies")
		s.internalServerError(w)
		return
	}

	s.redirectWithNotice(w, r, "/profile", "Profile updated successfully!")
}

func trimUser(u *types.User) {
	for _, field := range []*string{&u.Name, &u.Email, &u.PhoneNumber, &u.Address, &u.City, &u.State, &u.Country} {
		*field = strings.TrimSpace(*field)
	}
}
