package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"eventdesk/internal/api"
	"eventdesk/internal/billing"
	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

// wizardRegistry holds one controller per signed in user for the lifetime of
// the process.
type wizardRegistry struct {
	mu       sync.Mutex
	variant  wizard.Variant
	client   *api.Client
	drafts   wizard.DraftStore
	logger   *logrus.Logger
	sessions map[int64]*wizard.Controller
}

func newWizardRegistry(variant wizard.Variant, client *api.Client, drafts wizard.DraftStore, logger *logrus.Logger) *wizardRegistry {
	return &wizardRegistry{
		variant:  variant,
		client:   client,
		drafts:   drafts,
		logger:   logger,
		sessions: make(map[int64]*wizard.Controller),
	}
}

// get returns the user's controller, creating it on first use. A new
// controller picks up the user's stored draft; resumed reports whether it did.
func (reg *wizardRegistry) get(ctx context.Context, userID int64) (c *wizard.Controller, resumed bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if c, ok := reg.sessions[userID]; ok {
		return c, false
	}

	logger := reg.logger.WithField("user_id", userID)
	opts := wizard.Options{
		Variant: reg.variant,
		UserID:  userID,
		Drafts:  reg.drafts,
		Logger:  logger,
	}
	if reg.client != nil {
		opts.Submitter = reg.client
		opts.Inviter = reg.client
	}
	c = wizard.New(opts)

	resumed, err := c.ResumeDraft(ctx)
	if err != nil {
		logger.WithError(err).Warn("failed to resume wizard draft")
	}

	reg.sessions[userID] = c
	return c, resumed
}

func (reg *wizardRegistry) forget(userID int64) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.sessions, userID)
}

type stepTab struct {
	Step   wizard.Step
	Title  string
	Active bool
	Done   bool
}

// stepKeys name the template section of each step.
var stepKeys = map[wizard.Step]string{
	wizard.StepEventType:         "event-type",
	wizard.StepEventDetails:      "event-details",
	wizard.StepAdditionalDetails: "additional-details",
	wizard.StepFormCreation:      "form-creation",
	wizard.StepEmailTemplate:     "email-template",
	wizard.StepVolunteers:        "volunteers",
	wizard.StepSubmission:        "submission",
}

type volunteerRow struct {
	Index     int
	Volunteer types.Volunteer
	CanSend   bool
	Sending   bool
}

type checkpointRoster struct {
	Key        string
	Volunteers []volunteerRow
	Error      string
}

type wizardPageData struct {
	types.BasePageData
	Variant     wizard.Variant
	Tabs        []stepTab
	Step        wizard.Step
	StepKey     string
	StepTitle   string
	IsFirst     bool
	IsLast      bool
	Submitting  bool
	State       *wizard.State
	Builder     *wizard.Builder
	Breakdown   billing.Breakdown
	Checkpoints []checkpointRoster

	Predefined      []types.FieldDescriptor
	FieldTypes      []types.FieldType
	EventTypes      []string
	EventCategories []string
	TemplateTypes   []string
	Levels          []types.VolunteerLevel
	AssetsEnabled   bool
}

func (s *Service) handleGetWizard(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	c, resumed := s.wizards.get(r.Context(), user.UserID)

	data := s.wizardPage(c)
	data.BasePageData = flash(r)
	if resumed {
		data.Notice = "Your saved draft has been restored."
	}

	s.render(w, r, "page.wizard", data)
}

func (s *Service) wizardPage(c *wizard.Controller) *wizardPageData {
	state := c.View()
	steps := c.Steps()

	data := &wizardPageData{
		Variant:         c.Variant(),
		Step:            state.Step,
		StepKey:         stepKeys[state.Step],
		StepTitle:       state.Step.Title(),
		IsFirst:         state.Step == steps[0],
		IsLast:          state.Step == steps[len(steps)-1],
		Submitting:      c.Submitting(),
		State:           state,
		Builder:         state.Builder(),
		Predefined:      wizard.PredefinedFields,
		FieldTypes:      types.FieldTypes,
		EventTypes:      wizard.EventTypes,
		EventCategories: wizard.EventCategories,
		TemplateTypes:   wizard.TemplateTypes,
		Levels:          types.VolunteerLevels,
		AssetsEnabled:   s.assets != nil,
	}
	data.Title = "Create Event"

	for _, step := range steps {
		data.Tabs = append(data.Tabs, stepTab{
			Step:   step,
			Title:  step.Title(),
			Active: step == state.Step,
			Done:   step < state.Step,
		})
	}

	if price, err := strconv.ParseFloat(data.Builder.Price, 64); err == nil && state.Values.Get(wizard.FieldEventType) == string(types.EventTypePaid) {
		data.Breakdown = s.rates.FormPrice(price)
	}

	checkpoints := state.Values.Bounded(wizard.FieldCheckpoints, wizard.MaxCheckpoints)
	for cp := 1; cp <= checkpoints; cp++ {
		key := strconv.Itoa(cp)
		roster := checkpointRoster{Key: key, Error: state.Errors[wizard.FieldVolunteers+"."+key]}
		for i, v := range state.Volunteers[key] {
			roster.Volunteers = append(roster.Volunteers, volunteerRow{
				Index:     i,
				Volunteer: v,
				CanSend:   c.CanSendInvitation(key, i),
				Sending:   state.Sending[key+"_"+strconv.Itoa(i)],
			})
		}
		data.Checkpoints = append(data.Checkpoints, roster)
	}

	return data
}

// wizardErrorMessage turns a wizard or backend failure into the notice shown
// above the step.
func wizardErrorMessage(err error) string {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		return "Please fix the highlighted fields."
	}

	for _, known := range []error{
		wizard.ErrNoSavedForms,
		wizard.ErrFormCountMismatch,
		wizard.ErrNoFormViewed,
		wizard.ErrSubmissionInFlight,
		wizard.ErrEmptyFieldLabel,
		wizard.ErrUnknownField,
		wizard.ErrFieldIndex,
		wizard.ErrFormNotFound,
		wizard.ErrTabLocked,
		wizard.ErrTabIndex,
		wizard.ErrVolunteerIndex,
		wizard.ErrUnknownCheckpoint,
		wizard.ErrInvalidVolunteer,
		wizard.ErrMissingEventDetails,
		wizard.ErrInvitationInFlight,
	} {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}

	return api.UserMessage(err)
}

func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	b := []byte(msg)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b) + "."
}
