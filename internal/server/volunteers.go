package server

import (
	"net/http"
	"strings"

	"eventdesk/internal/api"
	"eventdesk/pkg/types"
)

type volunteerInput struct {
	EventID   int64           `form:"event_id"`
	Volunteer types.Volunteer `form:"volunteer"`
}

type volunteerRemovalInput struct {
	EventID     int64  `form:"event_id"`
	VolunteerID int64  `form:"volunteer_id"`
	Email       string `form:"email"`
}

func (s *Service) handleGetVolunteers(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	data := &types.VolunteersPageData{BasePageData: flash(r), Levels: types.VolunteerLevels}
	data.Title = "Volunteers"

	ctx, cancel := s.backendContext(r)
	defer cancel()

	events, err := s.api.ListEventVolunteers(ctx, user.UserID)
	if s.sessionRejected(w, r, err) {
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to fetch volunteers")
		data.Error = api.UserMessage(err)
	}
	data.Events = events

	s.render(w, r, "page.volunteers", data)
}

func (s *Service) handlePostVolunteer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	var input volunteerInput
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}

	v := input.Volunteer
	v.Name = strings.TrimSpace(v.Name)
	v.Email = strings.TrimSpace(v.Email)
	if v.Level == "" {
		v.Level = types.VolunteerLevelBeginner
	}
	// the backend invites volunteers added to an existing event
	v.Sent = true

	if input.EventID <= 0 {
		s.redirectWithError(w, r, "/volunteers", "Choose an event.")
		return
	}
	if errs := validate(volunteerRules, map[string]string{
		"name":     v.Name,
		"email":    v.Email,
		"password": v.Password,
		"level":    string(v.Level),
	}); errs != nil {
		s.redirectWithError(w, r, "/volunteers", firstMessage(errs, "name", "email", "password", "level"))
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	id, err := s.api.AddVolunteer(ctx, &types.VolunteerAssignment{EventID: input.EventID, Volunteer: v})
	if err != nil {
		s.logger.WithError(err).WithField("event_id", input.EventID).Error("failed to add volunteer")
		s.redirectWithError(w, r, "/volunteers", api.UserMessage(err))
		return
	}

	s.logger.WithField("event_id", input.EventID).WithField("volunteer_id", id).Info("volunteer added")
	s.redirectWithNotice(w, r, "/volunteers", "Volunteer added.")
}

func (s *Service) handlePostRemoveVolunteer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	var input volunteerRemovalInput
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}
	if input.EventID <= 0 || input.VolunteerID <= 0 {
		s.redirectWithError(w, r, "/volunteers", "Volunteer not found.")
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	err := s.api.RemoveVolunteer(ctx, &types.VolunteerRemoval{
		EventID:     input.EventID,
		VolunteerID: input.VolunteerID,
		Email:       strings.TrimSpace(input.Email),
	})
	if err != nil {
		s.logger.WithError(err).WithField("volunteer_id", input.VolunteerID).Error("failed to remove volunteer")
		s.redirectWithError(w, r, "/volunteers", api.UserMessage(err))
		return
	}

	s.redirectWithNotice(w, r, "/volunteers", "Volunteer removed.")
}

// firstMessage picks the message of the first failing field in display order.
func firstMessage(errs map[string]string, order ...string) string {
	for _, field := range order {
		if msg, ok := errs[field]; ok {
			return msg
		}
	}
	for _, msg := range errs {
		return msg
	}
	return ""
}
