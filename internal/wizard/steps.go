// Package wizard holds the event creation wizard: the per-step validation
// rules, the step controller and the sub-form, roster and tab managers nested
// inside it. Nothing here renders or performs I/O directly; remote calls go
// through the Submitter, Inviter and DraftStore interfaces.
package wizard

import (
	"fmt"
	"strings"

	"eventdesk/pkg/types"
)

type Variant string

const (
	// VariantBasic runs six steps and submits from the volunteer step.
	VariantBasic Variant = "basic"
	// VariantRich adds the multi-form tab manager and a final review step.
	VariantRich Variant = "rich"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantBasic:
		return VariantBasic, nil
	case VariantRich, "":
		return VariantRich, nil
	}
	return "", fmt.Errorf("unknown wizard variant %q", s)
}

type Step int

const (
	StepEventType Step = iota
	StepEventDetails
	StepAdditionalDetails
	StepFormCreation
	StepEmailTemplate
	StepVolunteers
	StepSubmission
)

var stepTitles = map[Step]string{
	StepEventType:         "Event Type",
	StepEventDetails:      "Event Details",
	StepAdditionalDetails: "Additional Details",
	StepFormCreation:      "Form Creation",
	StepEmailTemplate:     "Email Template",
	StepVolunteers:        "Volunteer Invitation",
	StepSubmission:        "Submission",
}

func (s Step) Title() string {
	if title, ok := stepTitles[s]; ok {
		return title
	}
	return "Unknown"
}

func (s Step) String() string {
	return fmt.Sprintf("step-%d", int(s))
}

// Steps returns the ordered steps of the variant.
func (v Variant) Steps() []Step {
	steps := []Step{
		StepEventType,
		StepEventDetails,
		StepAdditionalDetails,
		StepFormCreation,
		StepEmailTemplate,
		StepVolunteers,
	}
	if v == VariantRich {
		steps = append(steps, StepSubmission)
	}
	return steps
}

// Upper bounds for the counts that size per-checkpoint rosters and form tabs.
const (
	MaxCheckpoints = 50
	MaxForms       = 20
)

const (
	FieldEventType             = "eventType"
	FieldEventName             = "eventName"
	FieldStartDateTime         = "startDateTime"
	FieldEndDateTime           = "endDateTime"
	FieldCheckpoints           = "checkpoints"
	FieldGuestRegistrationType = "guestRegistrationType"
	FieldEventDescription      = "eventDescription"
	FieldEventCategory         = "eventCategory"
	FieldVenueLocation         = "venueLocation"
	FieldOrganizationName      = "organizationName"
	FieldOrganizationEmail     = "organizationEmail"
	FieldOrganizationPhone     = "organizationPhone"
	FieldMaxAttendance         = "maxAttendance"
	FieldRegistrationDeadline  = "registrationDeadline"
	FieldNumberOfForms         = "numberOfForms"
	FieldFormName              = "formName"
	FieldPrice                 = "price"
	FieldTemplateType          = "templateType"
	FieldEmailContent          = "emailContent"
	FieldBrandingAssets        = "brandingAssets"
	FieldBrandingAssetKey      = "brandingAssetKey"
	FieldFacebookURL           = "facebookUrl"
	FieldInstagramURL          = "instagramUrl"
	FieldTwitterURL            = "twitterUrl"
	FieldVolunteers            = "volunteers"
)

// stepFields lists the scalar values each step accepts from user input.
var stepFields = map[Step][]string{
	StepEventType: {FieldEventType},
	StepEventDetails: {
		FieldEventName,
		FieldStartDateTime,
		FieldEndDateTime,
		FieldCheckpoints,
		FieldGuestRegistrationType,
	},
	StepAdditionalDetails: {
		FieldEventDescription,
		FieldEventCategory,
		FieldVenueLocation,
		FieldOrganizationName,
		FieldOrganizationEmail,
		FieldOrganizationPhone,
		FieldMaxAttendance,
		FieldRegistrationDeadline,
	},
	StepFormCreation: {FieldNumberOfForms},
	StepEmailTemplate: {
		FieldTemplateType,
		FieldEmailContent,
		FieldFacebookURL,
		FieldInstagramURL,
		FieldTwitterURL,
	},
}

// Fields returns the names of the scalar inputs that belong to step.
func (s Step) Fields() []string {
	return stepFields[s]
}

var (
	EventCategories = []string{"conference", "workshop", "social"}
	TemplateTypes   = []string{"Normal", "Graphical"}
	EventTypes      = []string{string(types.EventTypeFree), string(types.EventTypePaid)}
)

// PredefinedFields are the registration inputs an organizer can toggle on
// without describing them.
var PredefinedFields = []types.FieldDescriptor{
	{Label: "Name", Type: types.FieldTypeText, Required: true},
	{Label: "Email", Type: types.FieldTypeEmail, Required: true},
	{Label: "Date of Birth", Type: types.FieldTypeText, Required: true},
	{Label: "State", Type: types.FieldTypeSelect, Required: true},
	{Label: "Gender", Type: types.FieldTypeSelect, Required: true},
	{Label: "Phone Number", Type: types.FieldTypeTel, Required: true},
}

func predefinedField(label string) (types.FieldDescriptor, bool) {
	for _, f := range PredefinedFields {
		if f.Label == label {
			return f, true
		}
	}
	return types.FieldDescriptor{}, false
}
