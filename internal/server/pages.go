package server

import (
	"net/http"

	"eventdesk/internal/api"
	"eventdesk/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	if s.cookies.SignedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleGetDashboard shows the welcome popup once per session and points at
// an unfinished wizard draft.
func (s *Service) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	data := &types.DashboardPageData{
		BasePageData: flash(r),
		User:         session.User,
		ShowPopup:    !s.cookies.PopupShown(r),
	}
	data.Title = "Dashboard"

	if savedAt, ok := s.cookies.DraftSavedAt(r); ok {
		data.DraftSavedAt = &savedAt
	}
	if data.ShowPopup {
		s.cookies.MarkPopupShown(w)
	}

	s.render(w, r, "page.dashboard", data)
}

func (s *Service) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	data := &types.EventsPageData{BasePageData: flash(r)}
	data.Title = "Your Events"

	ctx, cancel := s.backendContext(r)
	defer cancel()

	events, err := s.api.ListEvents(ctx, user.UserID)
	if s.sessionRejected(w, r, err) {
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to fetch events")
		data.Error = api.UserMessage(err)
	}
	data.Events = events

	s.render(w, r, "page.events", data)
}
