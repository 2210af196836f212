package wizard

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventdesk/pkg/types"
)

type RuleKind string

const (
	RuleRequired         RuleKind = "required"
	RulePattern          RuleKind = "pattern"
	RuleEmail            RuleKind = "email"
	RuleInteger          RuleKind = "integer"
	RuleMin              RuleKind = "min"
	RuleMax              RuleKind = "max"
	RuleOneOf            RuleKind = "oneOf"
	RuleDateAfterOrEqual RuleKind = "dateAfterOrEqual"
	RuleURL              RuleKind = "url"
	RuleMatches          RuleKind = "matches"
	RuleRosters          RuleKind = "rosters"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern     = regexp.MustCompile(`^\d{10}$`)
	dateTimeLayouts  = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339, "2006-01-02"}
	minPasswordChars = 8
)

// Condition activates a rule only when the sibling Field holds Equals.
type Condition struct {
	Field  string
	Equals string
}

// Rule is one declarative check against a named field. Every kind except
// required passes on an empty value so optional fields stay optional.
type Rule struct {
	Field   string
	Kind    RuleKind
	Message string
	Pattern *regexp.Regexp
	Min     float64
	Max     float64
	Options []string
	// Ref names the sibling field for cross-field kinds. For rosters it is
	// the field holding the checkpoint count.
	Ref  string
	When *Condition
}

type RuleSet []Rule

// Values maps field names to raw input strings.
type Values map[string]string

// Get returns the trimmed value of key.
func (v Values) Get(key string) string {
	return strings.TrimSpace(v[key])
}

func (v Values) Int(key string) int {
	n, err := strconv.Atoi(v.Get(key))
	if err != nil {
		return 0
	}
	return n
}

// Bounded is Int clamped to [0, max]. Counts that size allocations or loops
// go through it.
func (v Values) Bounded(key string, limit int) int {
	return min(max(v.Int(key), 0), limit)
}

func (v Values) clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Subject is everything a rule set can be evaluated against.
type Subject struct {
	Values     Values
	Volunteers map[string][]types.Volunteer
}

// Validate evaluates the rules in order and returns exactly the failing fields
// mapped to the message of the first rule that failed for each.
func (rs RuleSet) Validate(s Subject) map[string]string {
	errs := make(map[string]string)
	for _, rule := range rs {
		if rule.When != nil && s.Values.Get(rule.When.Field) != rule.When.Equals {
			continue
		}

		if rule.Kind == RuleRosters {
			for key, msg := range rule.checkRosters(s) {
				if _, failed := errs[key]; !failed {
					errs[key] = msg
				}
			}
			continue
		}

		if _, failed := errs[rule.Field]; failed {
			continue
		}
		if !rule.check(s.Values) {
			errs[rule.Field] = rule.Message
		}
	}
	return errs
}

func (r Rule) check(values Values) bool {
	value := values.Get(r.Field)
	if r.Kind == RuleRequired {
		return value != ""
	}
	if value == "" {
		return true
	}

	switch r.Kind {
	case RulePattern:
		return r.Pattern != nil && r.Pattern.MatchString(value)
	case RuleEmail:
		return emailPattern.MatchString(value)
	case RuleInteger:
		_, err := strconv.Atoi(value)
		return err == nil
	case RuleMin:
		n, err := strconv.ParseFloat(value, 64)
		return err == nil && n >= r.Min
	case RuleMax:
		n, err := strconv.ParseFloat(value, 64)
		return err == nil && n <= r.Max
	case RuleOneOf:
		for _, opt := range r.Options {
			if value == opt {
				return true
			}
		}
		return false
	case RuleDateAfterOrEqual:
		end, ok := parseDateTime(value)
		if !ok {
			return false
		}
		start, ok := parseDateTime(values.Get(r.Ref))
		if !ok {
			// the sibling reports its own problem
			return true
		}
		return !end.Before(start)
	case RuleURL:
		u, err := url.ParseRequestURI(value)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	case RuleMatches:
		return value == values.Get(r.Ref)
	}

	return false
}

func (r Rule) checkRosters(s Subject) map[string]string {
	errs := make(map[string]string)
	count := s.Values.Bounded(r.Ref, MaxCheckpoints)
	for cp := 1; cp <= count; cp++ {
		key := strconv.Itoa(cp)
		roster := s.Volunteers[key]
		field := r.Field + "." + key
		if len(roster) == 0 {
			errs[field] = fmt.Sprintf("Checkpoint %s needs at least one volunteer", key)
			continue
		}
		for _, v := range roster {
			if !VolunteerValid(v) {
				errs[field] = fmt.Sprintf(r.Message, key)
				break
			}
		}
	}
	return errs
}

func parseDateTime(value string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// VolunteerValid reports whether v can be invited.
func VolunteerValid(v types.Volunteer) bool {
	if strings.TrimSpace(v.Name) == "" {
		return false
	}
	if !emailPattern.MatchString(v.Email) {
		return false
	}
	validLevel := false
	for _, l := range types.VolunteerLevels {
		if v.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return false
	}
	return len(v.Password) >= minPasswordChars
}

func required(field, msg string) Rule {
	return Rule{Field: field, Kind: RuleRequired, Message: msg}
}

func minimum(field string, min float64, msg string) Rule {
	return Rule{Field: field, Kind: RuleMin, Min: min, Message: msg}
}

func maximum(field string, max float64, msg string) Rule {
	return Rule{Field: field, Kind: RuleMax, Max: max, Message: msg}
}

func integer(field, msg string) Rule {
	return Rule{Field: field, Kind: RuleInteger, Message: msg}
}

func optionalURL(field, msg string) Rule {
	return Rule{Field: field, Kind: RuleURL, Message: msg}
}

// StepRules returns the rules gating each step of the variant. Steps without
// rules are absent from the map.
func StepRules(v Variant) map[Step]RuleSet {
	rules := map[Step]RuleSet{
		StepEventType: {
			required(FieldEventType, "Event type is required"),
			{Field: FieldEventType, Kind: RuleOneOf, Options: EventTypes, Message: "Event type must be free or paid"},
		},
		StepEventDetails: {
			required(FieldEventName, "Event name is required"),
			required(FieldStartDateTime, "Start date and time is required"),
			required(FieldEndDateTime, "End date and time is required"),
			{Field: FieldEndDateTime, Kind: RuleDateAfterOrEqual, Ref: FieldStartDateTime, Message: "End date must be after the start date"},
			required(FieldCheckpoints, "Number of checkpoints is required"),
			integer(FieldCheckpoints, "Checkpoints must be a whole number"),
			minimum(FieldCheckpoints, 1, "At least one checkpoint is required"),
			maximum(FieldCheckpoints, MaxCheckpoints, fmt.Sprintf("At most %d checkpoints are allowed", MaxCheckpoints)),
			required(FieldGuestRegistrationType, "Guest registration type is required"),
		},
		StepAdditionalDetails: {
			required(FieldEventDescription, "Event description is required"),
			required(FieldEventCategory, "Event category is required"),
			{Field: FieldEventCategory, Kind: RuleOneOf, Options: EventCategories, Message: "Choose a valid category"},
			required(FieldVenueLocation, "Venue location is required"),
			required(FieldOrganizationName, "Organization name is required"),
			required(FieldOrganizationEmail, "Organization email is required"),
			{Field: FieldOrganizationEmail, Kind: RuleEmail, Message: "Invalid email format"},
			required(FieldOrganizationPhone, "Organization phone is required"),
			{Field: FieldOrganizationPhone, Kind: RulePattern, Pattern: phonePattern, Message: "Phone number must be 10 digits"},
			required(FieldMaxAttendance, "Maximum attendance is required"),
			integer(FieldMaxAttendance, "Maximum attendance must be a whole number"),
			minimum(FieldMaxAttendance, 1, "Maximum attendance must be at least 1"),
		},
		StepEmailTemplate: {
			required(FieldTemplateType, "Template type is required"),
			{Field: FieldTemplateType, Kind: RuleOneOf, Options: TemplateTypes, Message: "Template type must be Normal or Graphical"},
			required(FieldEmailContent, "Email content is required"),
			optionalURL(FieldFacebookURL, "Invalid URL"),
			optionalURL(FieldInstagramURL, "Invalid URL"),
			optionalURL(FieldTwitterURL, "Invalid URL"),
		},
		StepVolunteers: {
			{Field: FieldVolunteers, Kind: RuleRosters, Ref: FieldCheckpoints, Message: "Every volunteer at checkpoint %s needs a name, a valid email, a level and a password of at least 8 characters"},
		},
	}

	if v == VariantRich {
		rules[StepFormCreation] = RuleSet{
			required(FieldNumberOfForms, "Number of forms is required"),
			integer(FieldNumberOfForms, "Number of forms must be a whole number"),
			minimum(FieldNumberOfForms, 1, "At least one form is required"),
			maximum(FieldNumberOfForms, MaxForms, fmt.Sprintf("At most %d forms are allowed", MaxForms)),
		}
	}

	return rules
}

// FormRules gate saving a sub-form. The price rules only apply to paid events.
var FormRules = RuleSet{
	required(FieldFormName, "Form name is required"),
	{Field: FieldPrice, Kind: RuleRequired, Message: "Price is required for paid events", When: &Condition{Field: FieldEventType, Equals: string(types.EventTypePaid)}},
	{Field: FieldPrice, Kind: RuleMin, Min: 0, Message: "Price must be zero or more", When: &Condition{Field: FieldEventType, Equals: string(types.EventTypePaid)}},
}
