package server

import (
	"net/http"
	"strconv"
	"strings"

	"eventdesk/internal/api"
	"eventdesk/internal/billing"
	"eventdesk/pkg/types"
)

type formRow struct {
	types.ListedForm
	Paid      bool
	Breakdown billing.Breakdown
}

type eventFormsView struct {
	EventID   int64
	EventName string
	EventType string
	Forms     []formRow
}

type formsPageData struct {
	types.BasePageData
	Events     []eventFormsView
	GSTPercent string
	FeePercent string
}

func (s *Service) handleGetForms(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	data := &formsPageData{
		BasePageData: flash(r),
		GSTPercent:   billing.Percent(s.rates.GST),
		FeePercent:   billing.Percent(s.rates.ProcessingFee),
	}
	data.Title = "Your Forms"

	ctx, cancel := s.backendContext(r)
	defer cancel()

	events, err := s.api.ListEventForms(ctx, user.UserID)
	if s.sessionRejected(w, r, err) {
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to fetch forms")
		data.Error = api.UserMessage(err)
	}

	for _, event := range events {
		view := eventFormsView{EventID: event.EventID, EventName: event.EventName, EventType: event.EventType}
		for _, f := range event.Forms {
			row := formRow{ListedForm: f}
			if f.Price != nil && *f.Price > 0 {
				row.Paid = true
				row.Breakdown = s.rates.FormPrice(*f.Price)
			}
			view.Forms = append(view.Forms, row)
		}
		data.Events = append(data.Events, view)
	}

	s.render(w, r, "page.forms", data)
}

// handlePostFormFields replaces the field labels of a saved form. Rows left
// blank are dropped; blanking every row is refused.
func (s *Service) handlePostFormFields(w http.ResponseWriter, r *http.Request) {
	formID, err := strconv.ParseInt(r.PathValue("formID"), 10, 64)
	if err != nil || formID <= 0 {
		s.redirectWithError(w, r, "/forms", "Form not found.")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	labels := keepLabels(r.PostForm["fields"])
	if len(labels) == 0 {
		s.redirectWithError(w, r, "/forms", "At least one field must have a non-empty label")
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	err = s.api.UpdateFormFields(ctx, &types.FormFieldsUpdate{FormID: formID, Fields: labels})
	if err != nil {
		s.logger.WithError(err).WithField("form_id", formID).Error("failed to update form fields")
		s.redirectWithError(w, r, "/forms", api.UserMessage(err))
		return
	}

	s.redirectWithNotice(w, r, "/forms", "Form fields updated.")
}

func keepLabels(posted []string) []string {
	labels := make([]string, 0, len(posted))
	for _, label := range posted {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}
