package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"
)

type customFieldInput struct {
	Label    string          `form:"label"`
	Type     types.FieldType `form:"type"`
	Required bool            `form:"required"`
}

// wizardForm is everything the wizard page can post. Inputs of the current
// step are applied before the action runs, so no typing is lost when the
// action is something other than next.
type wizardForm struct {
	Action     string                       `form:"action"`
	Values     map[string]string            `form:"values"`
	FormName   *string                      `form:"form_name"`
	Price      string                       `form:"price"`
	Custom     []customFieldInput           `form:"custom"`
	Volunteers map[string][]types.Volunteer `form:"volunteers"`
}

// wizardAction is a verb plus its colon separated arguments, e.g.
// "remove-volunteer:2:0".
type wizardAction struct {
	verb string
	args []string
}

func parseWizardAction(raw string) wizardAction {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	return wizardAction{verb: parts[0], args: parts[1:]}
}

func (a wizardAction) arg(i int) string {
	if i < len(a.args) {
		return a.args[i]
	}
	return ""
}

func (a wizardAction) intArg(i int) (int, error) {
	n, err := strconv.Atoi(a.arg(i))
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument %q", a.verb, a.arg(i))
	}
	return n, nil
}

func (s *Service) handlePostWizard(w http.ResponseWriter, r *http.Request) {
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

	var input wizardForm
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode wizard form")
		s.internalServerError(w)
		return
	}

	c, _ := s.wizards.get(r.Context(), user.UserID)
	logger := s.logger.WithField("user_id", user.UserID)

	s.applyWizardInputs(c, &input)

	action := parseWizardAction(input.Action)

	ctx, cancel := s.backendContext(r)
	defer cancel()

	notice, err := s.runWizardAction(ctx, c, action)
	if err != nil {
		logger.WithError(err).WithField("action", action.verb).Info("wizard action refused")
		s.saveWizardDraft(ctx, w, c)
		s.redirectWithError(w, r, "/create-event", wizardErrorMessage(err))
		return
	}

	switch {
	case notice == eventCreatedNotice:
		s.cookies.ClearDraft(w)
		s.redirectWithNotice(w, r, "/events", notice)
		return
	case action.verb == "discard":
		s.cookies.ClearDraft(w)
	case action.verb != "save-draft":
		s.saveWizardDraft(ctx, w, c)
	default:
		s.cookies.MarkDraftSaved(w, time.Now())
	}

	if notice == "" {
		http.Redirect(w, r, "/create-event", http.StatusSeeOther)
		return
	}
	s.redirectWithNotice(w, r, "/create-event", notice)
}

const eventCreatedNotice = "Event created successfully!"

// applyWizardInputs copies the posted inputs of the current step into the
// controller. Fields of other steps are ignored.
func (s *Service) applyWizardInputs(c *wizard.Controller, in *wizardForm) {
	step := c.Step()

	values := make(map[string]string)
	for _, field := range step.Fields() {
		if v, ok := in.Values[field]; ok {
			values[field] = v
		}
	}
	if len(values) > 0 {
		c.SetValues(values)
	}

	switch step {
	case wizard.StepFormCreation:
		if in.FormName == nil {
			return
		}
		if err := c.SetFormMeta(*in.FormName, in.Price); err != nil {
			s.logger.WithError(err).Debug("ignoring edits to a saved form tab")
			return
		}
		rows := len(c.View().Builder().Custom)
		for i, f := range in.Custom {
			if i >= rows {
				break
			}
			if err := c.UpdateCustomField(i, f.Label, f.Type, f.Required); err != nil {
				s.logger.WithError(err).WithField("field", i).Debug("ignoring stale custom field row")
			}
		}
	case wizard.StepVolunteers:
		for cp, roster := range in.Volunteers {
			for i, v := range roster {
				if err := c.SetVolunteer(cp, i, v); err != nil {
					s.logger.WithError(err).WithField("checkpoint", cp).Debug("ignoring stale volunteer row")
				}
			}
		}
	}
}

func (s *Service) runWizardAction(ctx context.Context, c *wizard.Controller, a wizardAction) (string, error) {
	switch a.verb {
	case "", "stay":
		return "", nil
	case "next", "submit":
		tr, err := c.Advance(ctx)
		if err != nil {
			return "", err
		}
		if tr.Submitted {
			return eventCreatedNotice, nil
		}
		return "", nil
	case "back":
		_, err := c.Retreat(ctx)
		return "", err
	case "toggle-field":
		return "", c.ToggleField(a.arg(0))
	case "add-custom":
		return "", c.AddCustomField()
	case "remove-custom":
		i, err := a.intArg(0)
		if err != nil {
			return "", err
		}
		return "", c.RemoveCustomField(i)
	case "generate":
		c.GenerateForm()
		return "", nil
	case "save-form":
		form, err := c.SaveForm()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Form %q saved.", form.Name), nil
	case "view-form":
		id, err := a.intArg(0)
		if err != nil {
			return "", err
		}
		return "", c.ViewForm(id)
	case "switch-tab":
		i, err := a.intArg(0)
		if err != nil {
			return "", err
		}
		return "", c.SwitchTab(i)
	case "add-volunteer":
		return "", c.AddVolunteer(a.arg(0))
	case "remove-volunteer":
		i, err := a.intArg(1)
		if err != nil {
			return "", err
		}
		return "", c.RemoveVolunteer(a.arg(0), i)
	case "send-invitation":
		i, err := a.intArg(1)
		if err != nil {
			return "", err
		}
		if err := c.SendInvitation(ctx, a.arg(0), i); err != nil {
			return "", err
		}
		return "Invitation sent.", nil
	case "save-draft":
		if err := c.SaveDraft(ctx); err != nil {
			return "", err
		}
		return "Draft saved.", nil
	case "discard":
		if err := c.DiscardDraft(ctx); err != nil {
			return "", err
		}
		return "Draft discarded.", nil
	}
	return "", fmt.Errorf("unknown wizard action %q", a.verb)
}

// saveWizardDraft persists the wizard after a change. Failures only cost the
// user their resume point, so they are logged and otherwise ignored.
func (s *Service) saveWizardDraft(ctx context.Context, w http.ResponseWriter, c *wizard.Controller) {
	if err := c.SaveDraft(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to save wizard draft")
		return
	}
	s.cookies.MarkDraftSaved(w, time.Now())
}

var errAssetsDisabled = errors.New("branding uploads are not configured")

// handlePostBrandingAsset uploads the logo or banner chosen on the email
// template step and stores its public URL as the branding asset.
func (s *Service) handlePostBrandingAsset(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	if s.assets == nil {
		s.redirectWithError(w, r, "/create-event", sentence(errAssetsDisabled.Error()))
		return
	}

	file, header, err := r.FormFile("asset")
	if err != nil {
		s.redirectWithError(w, r, "/create-event", "Choose an image to upload.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		s.redirectWithError(w, r, "/create-event", "Branding assets must be images.")
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	key, err := s.assets.UploadFile(ctx, user.UserID, header.Filename, file, contentType)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to upload branding asset")
		s.redirectWithError(w, r, "/create-event", "Could not upload the file. Please try again.")
		return
	}

	c, _ := s.wizards.get(r.Context(), user.UserID)
	previous := c.View().Values.Get(wizard.FieldBrandingAssetKey)

	c.SetValues(map[string]string{
		wizard.FieldBrandingAssets:   s.assets.PublicURL(key),
		wizard.FieldBrandingAssetKey: key,
	})

	if previous != "" && previous != key {
		if err := s.assets.DeleteFile(ctx, previous); err != nil {
			s.logger.WithError(err).WithField("storage_key", previous).Warn("failed to delete replaced branding asset")
		}
	}

	s.saveWizardDraft(ctx, w, c)
	s.redirectWithNotice(w, r, "/create-event", "Branding asset uploaded.")
}
