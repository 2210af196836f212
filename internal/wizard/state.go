package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"eventdesk/internal/utils"
	"eventdesk/pkg/types"
)

// State is the complete, serializable state of one wizard run.
type State struct {
	Step       Step                         `json:"step"`
	Values     Values                       `json:"values"`
	Errors     map[string]string            `json:"-"`
	Forms      []types.SavedForm            `json:"forms"`
	NextFormID int                          `json:"nextFormId"`
	Viewed     map[int]bool                 `json:"viewed"`
	Tabs       []*Builder                   `json:"tabs"`
	ActiveTab  int                          `json:"activeTab"`
	Volunteers map[string][]types.Volunteer `json:"volunteers"`
	// Sending flags in-flight invitations keyed "<checkpoint>_<index>".
	Sending map[string]bool `json:"-"`
}

func newState() *State {
	return &State{
		Step:       StepEventType,
		Values:     make(Values),
		Errors:     make(map[string]string),
		Viewed:     make(map[int]bool),
		Tabs:       []*Builder{{}},
		Volunteers: make(map[string][]types.Volunteer),
		Sending:    make(map[string]bool),
	}
}

// ensure fills in maps that a decoded snapshot may lack.
func (s *State) ensure() {
	if s.Values == nil {
		s.Values = make(Values)
	}
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	if s.Viewed == nil {
		s.Viewed = make(map[int]bool)
	}
	if len(s.Tabs) == 0 {
		s.Tabs = []*Builder{{}}
	}
	if s.ActiveTab < 0 || s.ActiveTab >= len(s.Tabs) {
		s.ActiveTab = 0
	}
	if s.Volunteers == nil {
		s.Volunteers = make(map[string][]types.Volunteer)
	}
	if s.Sending == nil {
		s.Sending = make(map[string]bool)
	}
}

func (s *State) clone() *State {
	out := &State{
		Step:       s.Step,
		Values:     s.Values.clone(),
		Errors:     make(map[string]string, len(s.Errors)),
		Forms:      make([]types.SavedForm, len(s.Forms)),
		NextFormID: s.NextFormID,
		Viewed:     make(map[int]bool, len(s.Viewed)),
		Tabs:       make([]*Builder, len(s.Tabs)),
		ActiveTab:  s.ActiveTab,
		Volunteers: make(map[string][]types.Volunteer, len(s.Volunteers)),
		Sending:    make(map[string]bool, len(s.Sending)),
	}
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	for i, f := range s.Forms {
		out.Forms[i] = cloneForm(f)
	}
	for k, v := range s.Viewed {
		out.Viewed[k] = v
	}
	for i, b := range s.Tabs {
		out.Tabs[i] = b.clone()
	}
	for cp, roster := range s.Volunteers {
		out.Volunteers[cp] = append([]types.Volunteer(nil), roster...)
	}
	for k, v := range s.Sending {
		out.Sending[k] = v
	}
	return out
}

func cloneForm(f types.SavedForm) types.SavedForm {
	out := f
	out.Fields = append([]types.FieldDescriptor(nil), f.Fields...)
	if f.Price != nil {
		out.Price = utils.Float64Ptr(*f.Price)
	}
	return out
}

// Builder returns the active tab's builder.
func (s *State) Builder() *Builder {
	return s.Tabs[s.ActiveTab]
}

func (s *State) setValue(key, value string) {
	s.Values[key] = value
	if key == FieldNumberOfForms {
		s.resizeTabs(s.Values.Bounded(FieldNumberOfForms, MaxForms))
	}
}

// resizeTabs keeps one builder per requested form. Shrinking drops tabs from
// the end.
func (s *State) resizeTabs(n int) {
	n = min(max(n, 1), MaxForms)
	for len(s.Tabs) < n {
		s.Tabs = append(s.Tabs, &Builder{})
	}
	s.Tabs = s.Tabs[:n]
	if s.ActiveTab >= n {
		s.ActiveTab = n - 1
	}
}

func (s *State) switchTab(i int) error {
	if i < 0 || i >= len(s.Tabs) {
		return ErrTabIndex
	}
	s.ActiveTab = i
	b := s.Tabs[i]
	s.Values[FieldFormName] = b.FormName
	s.Values[FieldPrice] = b.Price
	return nil
}

func (s *State) editableBuilder() (*Builder, error) {
	b := s.Builder()
	if b.Locked() {
		return nil, ErrTabLocked
	}
	return b, nil
}

func (s *State) setFormMeta(name, price string) error {
	b, err := s.editableBuilder()
	if err != nil {
		return err
	}
	b.FormName = name
	b.Price = price
	s.Values[FieldFormName] = name
	s.Values[FieldPrice] = price
	return nil
}

func (s *State) formIndex(id int) int {
	for i, f := range s.Forms {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) saveForm(lockTab bool) (types.SavedForm, error) {
	b, err := s.editableBuilder()
	if err != nil {
		return types.SavedForm{}, err
	}

	eventType := s.Values.Get(FieldEventType)
	if errs := b.validate(eventType); len(errs) > 0 {
		s.Errors = errs
		return types.SavedForm{}, &ValidationError{Step: StepFormCreation, Fields: errs}
	}

	var form types.SavedForm
	if idx := s.formIndex(b.EditingID); b.EditingID != 0 && idx >= 0 {
		form = b.form(b.EditingID, eventType)
		s.Forms[idx] = form
	} else {
		s.NextFormID++
		form = b.form(s.NextFormID, eventType)
		s.Forms = append(s.Forms, form)
	}
	s.Errors = make(map[string]string)

	if lockTab {
		b.EditingID = form.ID
		b.SavedID = form.ID
	} else {
		b.reset()
		delete(s.Values, FieldFormName)
		delete(s.Values, FieldPrice)
	}

	return cloneForm(form), nil
}

// viewForm loads a saved form for display. A tab that owns the form becomes
// active and stays locked; otherwise the form is loaded into the active
// builder for editing.
func (s *State) viewForm(id int) error {
	idx := s.formIndex(id)
	if idx < 0 {
		return ErrFormNotFound
	}
	form := s.Forms[idx]

	owner := -1
	for i, b := range s.Tabs {
		if b.SavedID == id {
			owner = i
			break
		}
	}

	if owner >= 0 {
		s.ActiveTab = owner
		b := s.Tabs[owner]
		b.load(form)
		b.SavedID = id
	} else {
		b, err := s.editableBuilder()
		if err != nil {
			return err
		}
		b.load(form)
	}

	s.Values[FieldFormName] = s.Builder().FormName
	s.Values[FieldPrice] = s.Builder().Price
	s.Viewed[id] = true
	return nil
}

// discardBuilderEdits clears every builder that has not been committed.
func (s *State) discardBuilderEdits() {
	for _, b := range s.Tabs {
		if !b.Locked() {
			b.reset()
		}
	}
	delete(s.Values, FieldFormName)
	delete(s.Values, FieldPrice)
}

func sendingKey(cp string, i int) string {
	return fmt.Sprintf("%s_%d", cp, i)
}

func (s *State) checkpointKnown(cp string) bool {
	n, err := strconv.Atoi(cp)
	if err != nil {
		return false
	}
	return n >= 1 && n <= s.Values.Bounded(FieldCheckpoints, MaxCheckpoints)
}

func (s *State) addVolunteer(cp string) error {
	if !s.checkpointKnown(cp) {
		return ErrUnknownCheckpoint
	}
	s.Volunteers[cp] = append(s.Volunteers[cp], types.Volunteer{})
	return nil
}

func (s *State) volunteer(cp string, i int) (*types.Volunteer, error) {
	roster := s.Volunteers[cp]
	if i < 0 || i >= len(roster) {
		return nil, ErrVolunteerIndex
	}
	return &roster[i], nil
}

func (s *State) updateVolunteer(cp string, i int, field, value string) error {
	v, err := s.volunteer(cp, i)
	if err != nil {
		return err
	}
	switch strings.ToLower(field) {
	case "name":
		v.Name = value
	case "email":
		v.Email = value
	case "level":
		v.Level = types.VolunteerLevel(value)
	case "password":
		v.Password = value
	default:
		return fmt.Errorf("unknown volunteer attribute %q", field)
	}
	return nil
}

func (s *State) setVolunteer(cp string, i int, in types.Volunteer) error {
	v, err := s.volunteer(cp, i)
	if err != nil {
		return err
	}
	in.Sent = v.Sent
	*v = in
	return nil
}

func (s *State) removeVolunteer(cp string, i int) error {
	roster := s.Volunteers[cp]
	if i < 0 || i >= len(roster) {
		return ErrVolunteerIndex
	}
	s.Volunteers[cp] = append(roster[:i:i], roster[i+1:]...)
	delete(s.Sending, sendingKey(cp, i))
	return nil
}

func (s *State) canSendInvitation(cp string, i int) bool {
	v, err := s.volunteer(cp, i)
	if err != nil {
		return false
	}
	return VolunteerValid(*v) && !s.Sending[sendingKey(cp, i)]
}

func (s *State) invitation(cp string, i int) (*types.VolunteerInvitation, error) {
	if s.Values.Get(FieldEventName) == "" || s.Values.Get(FieldStartDateTime) == "" || s.Values.Get(FieldEndDateTime) == "" {
		return nil, ErrMissingEventDetails
	}
	v, err := s.volunteer(cp, i)
	if err != nil {
		return nil, err
	}
	if !VolunteerValid(*v) {
		return nil, ErrInvalidVolunteer
	}
	return &types.VolunteerInvitation{
		EventName:     s.Values.Get(FieldEventName),
		StartDateTime: s.Values.Get(FieldStartDateTime),
		EndDateTime:   s.Values.Get(FieldEndDateTime),
		Checkpoint:    cp,
		Volunteer:     *v,
	}, nil
}

// payload assembles the creation document from the collected state.
func (s *State) payload(userID int64, v Variant) *types.EventPayload {
	vals := s.Values
	p := &types.EventPayload{
		UserID: userID,
		Step1:  types.EventTypeStep{EventType: vals.Get(FieldEventType)},
		Step2: types.EventDetailsStep{
			EventName:             vals.Get(FieldEventName),
			StartDateTime:         vals.Get(FieldStartDateTime),
			EndDateTime:           vals.Get(FieldEndDateTime),
			Checkpoints:           vals.Int(FieldCheckpoints),
			GuestRegistrationType: vals.Get(FieldGuestRegistrationType),
		},
		Step3: types.AdditionalDetailsStep{
			EventDescription:     vals.Get(FieldEventDescription),
			EventCategory:        vals.Get(FieldEventCategory),
			VenueLocation:        vals.Get(FieldVenueLocation),
			OrganizationName:     vals.Get(FieldOrganizationName),
			OrganizationEmail:    vals.Get(FieldOrganizationEmail),
			OrganizationPhone:    vals.Get(FieldOrganizationPhone),
			MaxAttendance:        vals.Int(FieldMaxAttendance),
			RegistrationDeadline: vals.Get(FieldRegistrationDeadline),
		},
		Step4: types.FormsStep{
			SavedForms: make([]types.SavedForm, len(s.Forms)),
		},
		Step5: types.EmailTemplateStep{
			TemplateType:     vals.Get(FieldTemplateType),
			EmailContent:     vals.Get(FieldEmailContent),
			BrandingAssetKey: vals.Get(FieldBrandingAssetKey),
			FacebookURL:      vals.Get(FieldFacebookURL),
			InstagramURL:     vals.Get(FieldInstagramURL),
			TwitterURL:       vals.Get(FieldTwitterURL),
		},
		Step6: types.VolunteersStep{
			Volunteers: make(map[string][]types.Volunteer, len(s.Volunteers)),
		},
	}
	if v == VariantRich {
		p.Step4.NumberOfForms = vals.Int(FieldNumberOfForms)
	}
	for i, f := range s.Forms {
		p.Step4.SavedForms[i] = cloneForm(f)
	}
	if asset := vals.Get(FieldBrandingAssets); asset != "" {
		p.Step5.BrandingAssets = utils.StringPtr(asset)
	}
	for cp, roster := range s.Volunteers {
		out := make([]types.Volunteer, len(roster))
		copy(out, roster)
		p.Step6.Volunteers[cp] = out
	}
	return p
}
