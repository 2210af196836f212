package server

import (
	"net/http"
	"net/url"

	"eventdesk/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	if setter, ok := data.(types.NavbarDataSetter); ok {
		navbar := types.NavbarData{}
		if session, err := s.sessionFromContext(r.Context()); err == nil {
			navbar.IsAuthenticated = true
			if session.User != nil {
				navbar.UserID = session.User.UserID
				navbar.UserEmail = session.User.Email
				navbar.UserName = session.User.Name
			}
		}
		setter.SetNavbarData(navbar)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}

// render writes the page and turns a template failure into a 500.
func (s *Service) render(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	if err := s.renderTemplate(w, r, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render page")
		s.internalServerError(w)
	}
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// flash copies the notice and error query parameters set by a redirect.
func flash(r *http.Request) types.BasePageData {
	q := r.URL.Query()
	return types.BasePageData{Notice: q.Get("notice"), Error: q.Get("error")}
}

func (s *Service) redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	v := url.Values{}
	v.Set("notice", notice)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	v := url.Values{}
	v.Set("error", msg)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}
