package types

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDraftNotFound = errors.New("draft not found")
)

// User is the denormalized profile returned by the login endpoint and kept
// alongside the auth token for the lifetime of the session.
type User struct {
	UserID      int64  `json:"user_id" form:"user_id"`
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	Address     string `json:"address" form:"address"`
	City        string `json:"city" form:"city"`
	State       string `json:"state" form:"state"`
	Country     string `json:"country" form:"country"`
}

type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
	// Mirrored marks a session rebuilt from the plain authToken and user
	// cookies. Its user id is unsigned and never keys server-held state.
	Mirrored bool `json:"-"`
}

// SignupInput is posted to the signup endpoint, which expects capitalized keys.
type SignupInput struct {
	Name            string `json:"Name" form:"name"`
	Email           string `json:"Email" form:"email"`
	PhoneNumber     string `json:"Phone_number" form:"phone_number"`
	Address         string `json:"Address" form:"address"`
	City            string `json:"City" form:"city"`
	State           string `json:"State" form:"state"`
	Country         string `json:"Country" form:"country"`
	Password        string `json:"Password" form:"password"`
	ConfirmPassword string `json:"-" form:"confirm_password"`
}

type PasswordResetInput struct {
	Email              string `json:"email" form:"email"`
	Code               string `json:"code" form:"code"`
	NewPassword        string `json:"newPassword" form:"new_password"`
	ConfirmNewPassword string `json:"-" form:"confirm_new_password"`
}
