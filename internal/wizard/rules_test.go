package wizard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/pkg/types"
)

func keys(m map[string]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func validEventDetails() Values {
	return Values{
		FieldEventName:             "Tech Meetup",
		FieldStartDateTime:         "2025-03-01T10:00",
		FieldEndDateTime:           "2025-03-01T18:00",
		FieldCheckpoints:           "1",
		FieldGuestRegistrationType: "open",
	}
}

func validAdditionalDetails() Values {
	return Values{
		FieldEventDescription:  "An evening of talks",
		FieldEventCategory:     "conference",
		FieldVenueLocation:     "Hall A",
		FieldOrganizationName:  "Acme",
		FieldOrganizationEmail: "events@acme.test",
		FieldOrganizationPhone: "9876543210",
		FieldMaxAttendance:     "150",
	}
}

func validEmailTemplate() Values {
	return Values{
		FieldTemplateType: "Normal",
		FieldEmailContent: "See you there",
	}
}

func validVolunteer() types.Volunteer {
	return types.Volunteer{
		Name:     "Asha",
		Email:    "asha@example.com",
		Level:    types.VolunteerLevelBeginner,
		Password: "secret123",
	}
}

func TestStepRulesRejectEmptySteps(t *testing.T) {
	rich := StepRules(VariantRich)

	tests := []struct {
		name string
		step Step
		want []string
	}{
		{"event type", StepEventType, []string{FieldEventType}},
		{"event details", StepEventDetails, []string{FieldEventName, FieldStartDateTime, FieldEndDateTime, FieldCheckpoints, FieldGuestRegistrationType}},
		{"additional details", StepAdditionalDetails, []string{FieldEventDescription, FieldEventCategory, FieldVenueLocation, FieldOrganizationName, FieldOrganizationEmail, FieldOrganizationPhone, FieldMaxAttendance}},
		{"form creation", StepFormCreation, []string{FieldNumberOfForms}},
		{"email template", StepEmailTemplate, []string{FieldTemplateType, FieldEmailContent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := rich[tt.step].Validate(Subject{Values: Values{}})
			want := make(map[string]bool)
			for _, f := range tt.want {
				want[f] = true
			}
			if diff := cmp.Diff(want, keys(errs)); diff != "" {
				t.Errorf("failing fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStepRulesAcceptValidSteps(t *testing.T) {
	rules := StepRules(VariantRich)

	assert.Empty(t, rules[StepEventType].Validate(Subject{Values: Values{FieldEventType: "paid"}}))
	assert.Empty(t, rules[StepEventDetails].Validate(Subject{Values: validEventDetails()}))
	assert.Empty(t, rules[StepAdditionalDetails].Validate(Subject{Values: validAdditionalDetails()}))
	assert.Empty(t, rules[StepEmailTemplate].Validate(Subject{Values: validEmailTemplate()}))
	assert.Empty(t, rules[StepSubmission].Validate(Subject{Values: Values{}}))
}

func TestBasicVariantHasNoFormCountRule(t *testing.T) {
	rules := StepRules(VariantBasic)
	assert.Empty(t, rules[StepFormCreation].Validate(Subject{Values: Values{}}))
}

func TestFormatRulesReportOnlyFailingFields(t *testing.T) {
	rules := StepRules(VariantRich)

	tests := []struct {
		name   string
		step   Step
		values Values
		want   map[string]string
	}{
		{
			name: "unknown event type",
			step: StepEventType,
			values: Values{
				FieldEventType: "vip",
			},
			want: map[string]string{FieldEventType: "Event type must be free or paid"},
		},
		{
			name: "end before start",
			step: StepEventDetails,
			values: func() Values {
				v := validEventDetails()
				v[FieldEndDateTime] = "2025-03-01T09:00"
				return v
			}(),
			want: map[string]string{FieldEndDateTime: "End date must be after the start date"},
		},
		{
			name: "zero checkpoints",
			step: StepEventDetails,
			values: func() Values {
				v := validEventDetails()
				v[FieldCheckpoints] = "0"
				return v
			}(),
			want: map[string]string{FieldCheckpoints: "At least one checkpoint is required"},
		},
		{
			name: "fractional checkpoints",
			step: StepEventDetails,
			values: func() Values {
				v := validEventDetails()
				v[FieldCheckpoints] = "1.5"
				return v
			}(),
			want: map[string]string{FieldCheckpoints: "Checkpoints must be a whole number"},
		},
		{
			name: "bad organization contact",
			step: StepAdditionalDetails,
			values: func() Values {
				v := validAdditionalDetails()
				v[FieldOrganizationEmail] = "events@acme"
				v[FieldOrganizationPhone] = "12345"
				return v
			}(),
			want: map[string]string{
				FieldOrganizationEmail: "Invalid email format",
				FieldOrganizationPhone: "Phone number must be 10 digits",
			},
		},
		{
			name: "unknown category",
			step: StepAdditionalDetails,
			values: func() Values {
				v := validAdditionalDetails()
				v[FieldEventCategory] = "party"
				return v
			}(),
			want: map[string]string{FieldEventCategory: "Choose a valid category"},
		},
		{
			name: "bad social url",
			step: StepEmailTemplate,
			values: func() Values {
				v := validEmailTemplate()
				v[FieldFacebookURL] = "facebook"
				v[FieldTwitterURL] = "https://twitter.com/acme"
				return v
			}(),
			want: map[string]string{FieldFacebookURL: "Invalid URL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules[tt.step].Validate(Subject{Values: tt.values})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndDateMayEqualStartDate(t *testing.T) {
	v := validEventDetails()
	v[FieldEndDateTime] = v[FieldStartDateTime]
	assert.Empty(t, StepRules(VariantBasic)[StepEventDetails].Validate(Subject{Values: v}))
}

func TestFormRulesPriceFollowsEventType(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		price     string
		wantErr   bool
	}{
		{"paid without price", "paid", "", true},
		{"paid with negative price", "paid", "-1", true},
		{"paid with price", "paid", "250", false},
		{"paid with zero price", "paid", "0", false},
		{"free without price", "free", "", false},
		{"free ignores price", "free", "-5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := FormRules.Validate(Subject{Values: Values{
				FieldFormName:  "Registration",
				FieldPrice:     tt.price,
				FieldEventType: tt.eventType,
			}})
			_, failed := errs[FieldPrice]
			assert.Equal(t, tt.wantErr, failed)
			assert.NotContains(t, errs, FieldFormName)
		})
	}
}

func TestVolunteerValid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *types.Volunteer)
		want   bool
	}{
		{"valid", func(v *types.Volunteer) {}, true},
		{"blank name", func(v *types.Volunteer) { v.Name = "  " }, false},
		{"email without domain dot", func(v *types.Volunteer) { v.Email = "asha@example" }, false},
		{"email with space", func(v *types.Volunteer) { v.Email = "as ha@example.com" }, false},
		{"unknown level", func(v *types.Volunteer) { v.Level = "Guru" }, false},
		{"empty level", func(v *types.Volunteer) { v.Level = "" }, false},
		{"short password", func(v *types.Volunteer) { v.Password = "1234567" }, false},
		{"eight character password", func(v *types.Volunteer) { v.Password = "12345678" }, true},
		{"expert", func(v *types.Volunteer) { v.Level = types.VolunteerLevelExpert }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVolunteer()
			tt.mutate(&v)
			assert.Equal(t, tt.want, VolunteerValid(v))
		})
	}
}

func TestRosterRuleChecksEveryCheckpoint(t *testing.T) {
	rules := StepRules(VariantBasic)[StepVolunteers]

	bad := validVolunteer()
	bad.Password = "short"

	errs := rules.Validate(Subject{
		Values: Values{FieldCheckpoints: "3"},
		Volunteers: map[string][]types.Volunteer{
			"1": {validVolunteer()},
			"2": {validVolunteer(), bad},
		},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs, "volunteers.2")
	assert.Contains(t, errs, "volunteers.3")
	assert.NotContains(t, errs, "volunteers.1")
}

func TestMatchesRule(t *testing.T) {
	rules := RuleSet{
		{Field: "confirm", Kind: RuleRequired, Message: "required"},
		{Field: "confirm", Kind: RuleMatches, Ref: "password", Message: "mismatch"},
	}

	errs := rules.Validate(Subject{Values: Values{"password": "secret123", "confirm": "secret124"}})
	assert.Equal(t, map[string]string{"confirm": "mismatch"}, errs)

	errs = rules.Validate(Subject{Values: Values{"password": "secret123", "confirm": " secret123 "}})
	assert.Empty(t, errs)

	errs = rules.Validate(Subject{Values: Values{"password": "secret123"}})
	assert.Equal(t, map[string]string{"confirm": "required"}, errs)
}

func TestCountRulesHaveUpperBounds(t *testing.T) {
	rules := StepRules(VariantRich)

	details := validEventDetails()
	details[FieldCheckpoints] = "2000000000"
	errs := rules[StepEventDetails].Validate(Subject{Values: details})
	assert.Equal(t, map[string]string{FieldCheckpoints: "At most 50 checkpoints are allowed"}, errs)

	details[FieldCheckpoints] = "50"
	assert.Empty(t, rules[StepEventDetails].Validate(Subject{Values: details}))

	errs = rules[StepFormCreation].Validate(Subject{Values: Values{FieldNumberOfForms: "21"}})
	assert.Equal(t, map[string]string{FieldNumberOfForms: "At most 20 forms are allowed"}, errs)
	assert.Empty(t, rules[StepFormCreation].Validate(Subject{Values: Values{FieldNumberOfForms: "20"}}))
}

func TestRosterRuleStopsAtMaxCheckpoints(t *testing.T) {
	rules := StepRules(VariantBasic)[StepVolunteers]

	errs := rules.Validate(Subject{Values: Values{FieldCheckpoints: "5000000"}})
	assert.Len(t, errs, MaxCheckpoints)
	assert.Contains(t, errs, "volunteers.50")
	assert.NotContains(t, errs, "volunteers.51")
}
