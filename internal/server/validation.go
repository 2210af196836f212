package server

import (
	"regexp"

	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"
)

var (
	accountEmailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	placePattern        = regexp.MustCompile(`^[a-zA-Z\s]{2,50}$`)
	phonePattern        = regexp.MustCompile(`^\d{10}$`)
	addressPattern      = regexp.MustCompile(`^[\s\S]{5,100}$`)
	passwordPattern     = regexp.MustCompile(`^[\s\S]{8,}$`)
	resetCodePattern    = regexp.MustCompile(`^\d{6}$`)
)

func required(field, msg string) wizard.Rule {
	return wizard.Rule{Field: field, Kind: wizard.RuleRequired, Message: msg}
}

func pattern(field string, re *regexp.Regexp, msg string) wizard.Rule {
	return wizard.Rule{Field: field, Kind: wizard.RulePattern, Pattern: re, Message: msg}
}

func matches(field, ref, msg string) wizard.Rule {
	return wizard.Rule{Field: field, Kind: wizard.RuleMatches, Ref: ref, Message: msg}
}

var loginRules = wizard.RuleSet{
	required("email", "Email is required"),
	pattern("email", accountEmailPattern, "Invalid email format"),
	required("password", "Password is required"),
	pattern("password", passwordPattern, "Password must be at least 8 characters"),
}

var signupRules = wizard.RuleSet{
	required("name", "Name is required"),
	pattern("name", placePattern, "Name must be 2-50 characters, letters and spaces only"),
	required("email", "Email is required"),
	pattern("email", accountEmailPattern, "Invalid email format"),
	required("phone_number", "Phone number is required"),
	pattern("phone_number", phonePattern, "Phone number must be exactly 10 digits"),
	required("address", "Address is required"),
	pattern("address", addressPattern, "Address must be 5-100 characters"),
	required("city", "City is required"),
	pattern("city", placePattern, "City must be 2-50 characters, letters and spaces only"),
	required("state", "State is required"),
	pattern("state", placePattern, "State must be 2-50 characters, letters and spaces only"),
	required("country", "Country is required"),
	pattern("country", placePattern, "Country must be 2-50 characters, letters and spaces only"),
	required("password", "Password is required"),
	pattern("password", passwordPattern, "Password must be at least 8 characters"),
	required("confirm_password", "Confirm Password is required"),
	matches("confirm_password", "password", "Passwords do not match"),
}

var resetRequestRules = wizard.RuleSet{
	required("email", "Email is required"),
	pattern("email", accountEmailPattern, "Invalid email format"),
}

var resetVerifyRules = wizard.RuleSet{
	required("code", "Code is required"),
	pattern("code", resetCodePattern, "Code must be exactly 6 digits"),
	required("new_password", "New password is required"),
	pattern("new_password", passwordPattern, "New password must be at least 8 characters"),
	required("confirm_new_password", "Confirm password is required"),
	matches("confirm_new_password", "new_password", "Passwords do not match"),
}

var profileRules = wizard.RuleSet{
	required("name", "Name is required"),
	required("email", "Email is required"),
	wizard.Rule{Field: "email", Kind: wizard.RuleEmail, Message: "Invalid email format"},
	required("phone_number", "Phone number is required"),
}

var supportRules = wizard.RuleSet{
	required("title", "Title is required"),
	required("description", "Description is required"),
}

var volunteerRules = wizard.RuleSet{
	required("name", "Please enter name and email"),
	required("email", "Please enter name and email"),
	wizard.Rule{Field: "email", Kind: wizard.RuleEmail, Message: "Invalid email format"},
	pattern("password", passwordPattern, "Password must be at least 8 characters"),
	wizard.Rule{Field: "level", Kind: wizard.RuleOneOf, Options: levelOptions(), Message: "Choose a valid level"},
}

func levelOptions() []string {
	out := make([]string, len(types.VolunteerLevels))
	for i, l := range types.VolunteerLevels {
		out[i] = string(l)
	}
	return out
}

func validate(rules wizard.RuleSet, values map[string]string) map[string]string {
	errs := rules.Validate(wizard.Subject{Values: values})
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func signupValues(in *types.SignupInput) map[string]string {
	return map[string]string{
		"name":             in.Name,
		"email":            in.Email,
		"phone_number":     in.PhoneNumber,
		"address":          in.Address,
		"city":             in.City,
		"state":            in.State,
		"country":          in.Country,
		"password":         in.Password,
		"confirm_password": in.ConfirmPassword,
	}
}

func profileValues(u *types.User) map[string]string {
	return map[string]string{
		"name":         u.Name,
		"email":        u.Email,
		"phone_number": u.PhoneNumber,
	}
}
