package types

import (
	"fmt"
	"strconv"
)

type EventType string

const (
	EventTypeFree EventType = "free"
	EventTypePaid EventType = "paid"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
)

var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeSelect,
	FieldTypeCheckbox,
	FieldTypeEmail,
	FieldTypeTel,
}

func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// FieldDescriptor is one input of a registration form. Duplicate labels are
// allowed; an empty label makes the descriptor unusable.
type FieldDescriptor struct {
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

func (f FieldDescriptor) Usable() bool {
	return f.Label != ""
}

// SavedForm is a registration form committed during the wizard. ID is local to
// the wizard session.
type SavedForm struct {
	ID     int               `json:"id"`
	Name   string            `json:"formName"`
	Price  *float64          `json:"price,omitempty"`
	Fields []FieldDescriptor `json:"fields"`
}

func (f SavedForm) Labels() []string {
	out := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		out[i] = field.Label
	}
	return out
}

type VolunteerLevel string

const (
	VolunteerLevelBeginner     VolunteerLevel = "Beginner"
	VolunteerLevelIntermediate VolunteerLevel = "Intermediate"
	VolunteerLevelExpert       VolunteerLevel = "Expert"
)

var VolunteerLevels = []VolunteerLevel{
	VolunteerLevelBeginner,
	VolunteerLevelIntermediate,
	VolunteerLevelExpert,
}

type Volunteer struct {
	Name     string         `json:"name" form:"name"`
	Email    string         `json:"email" form:"email"`
	Level    VolunteerLevel `json:"level" form:"level"`
	Password string         `json:"password" form:"password"`
	Sent     bool           `json:"sent" form:"-"`
}

// EventPayload is the composite document sent to the event creation endpoint,
// keyed by wizard step.
type EventPayload struct {
	UserID int64                 `json:"user_id"`
	Step1  EventTypeStep         `json:"step1"`
	Step2  EventDetailsStep      `json:"step2"`
	Step3  AdditionalDetailsStep `json:"step3"`
	Step4  FormsStep             `json:"step4"`
	Step5  EmailTemplateStep     `json:"step5"`
	Step6  VolunteersStep        `json:"step6"`
}

type EventTypeStep struct {
	EventType string `json:"eventType"`
}

type EventDetailsStep struct {
	EventName             string `json:"eventName"`
	StartDateTime         string `json:"startDateTime"`
	EndDateTime           string `json:"endDateTime"`
	Checkpoints           int    `json:"checkpoints"`
	GuestRegistrationType string `json:"guestRegistrationType"`
}

type AdditionalDetailsStep struct {
	EventDescription     string `json:"eventDescription"`
	EventCategory        string `json:"eventCategory"`
	VenueLocation        string `json:"venueLocation"`
	OrganizationName     string `json:"organizationName"`
	OrganizationEmail    string `json:"organizationEmail"`
	OrganizationPhone    string `json:"organizationPhone"`
	MaxAttendance        int    `json:"maxAttendance"`
	RegistrationDeadline string `json:"registrationDeadline"`
}

type FormsStep struct {
	NumberOfForms int         `json:"numberOfForms,omitempty"`
	SavedForms    []SavedForm `json:"savedForms"`
}

type EmailTemplateStep struct {
	TemplateType     string  `json:"templateType"`
	EmailContent     string  `json:"emailContent"`
	BrandingAssets   *string `json:"brandingAssets"`
	BrandingAssetKey string  `json:"brandingAssetKey,omitempty"`
	FacebookURL      string  `json:"facebookUrl"`
	InstagramURL     string  `json:"instagramUrl"`
	TwitterURL       string  `json:"twitterUrl"`
}

type VolunteersStep struct {
	Volunteers map[string][]Volunteer `json:"volunteers"`
}

type VolunteerInvitation struct {
	EventName     string    `json:"eventName"`
	StartDateTime string    `json:"startDateTime"`
	EndDateTime   string    `json:"endDateTime"`
	Checkpoint    string    `json:"checkpoint"`
	Volunteer     Volunteer `json:"volunteer"`
}

// CreateEventResult is the event creation response. It succeeded when it
// carries no error, is not marked "error" and has either status "success" or
// a message.
type CreateEventResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	EventID any    `json:"event_id"`
	Error   string `json:"error,omitempty"`
}

func (r *CreateEventResult) Succeeded() bool {
	if r.Error != "" || r.Status == "error" {
		return false
	}
	return r.Status == "success" || r.Message != ""
}

func (r *CreateEventResult) ID() string {
	if r == nil || r.EventID == nil {
		return ""
	}
	if f, ok := r.EventID.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(r.EventID)
}
