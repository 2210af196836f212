package server

import (
	"net/http"
	"strings"

	"eventdesk/internal/api"
	"eventdesk/pkg/types"
)

func (s *Service) handleGetSupport(w http.ResponseWriter, r *http.Request) {
	data := &types.SupportPageData{BasePageData: flash(r)}
	data.Title = "Support"
	s.renderSupport(w, r, data)
}

func (s *Service) renderSupport(w http.ResponseWriter, r *http.Request, data *types.SupportPageData) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	tickets, err := s.api.ListSupportTickets(ctx, user.UserID)
	if s.sessionRejected(w, r, err) {
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to fetch support tickets")
		if data.Error == "" {
			data.Error = api.UserMessage(err)
		}
	}
	data.Tickets = tickets

	s.render(w, r, "page.support", data)
}

func (s *Service) handlePostSupport(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
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

	var input types.SupportTicketInput
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}
	input.UserID = user.UserID
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	data := &types.SupportPageData{
		BasePageData: types.BasePageData{Title: "Support"},
		Input:        input,
	}

	data.FieldErrors = validate(supportRules, map[string]string{"title": input.Title, "description": input.Description})
	if data.FieldErrors != nil {
		data.Error = "Please fill in all fields"
		s.renderSupport(w, r, data)
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	if err := s.api.SubmitSupportTicket(ctx, &input); err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to submit support ticket")
		data.Error = api.UserMessage(err)
		s.renderSupport(w, r, data)
		return
	}

	s.redirectWithNotice(w, r, "/support", "Issue submitted successfully!")
}
