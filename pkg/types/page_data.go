package types

import "time"

type NavbarData struct {
	IsAuthenticated bool
	UserID          int64
	UserEmail       string
	UserName        string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
	Notice string
	Error  string
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	Email       string
	Next        string
	FieldErrors map[string]string
}

type SignupPageData struct {
	BasePageData
	Input       SignupInput
	FieldErrors map[string]string
}

// ResetPageData drives both halves of the password reset: requesting a code
// and verifying it.
type ResetPageData struct {
	BasePageData
	Email       string
	CodeSent    bool
	FieldErrors map[string]string
}

type DashboardPageData struct {
	BasePageData
	User         *User
	ShowPopup    bool
	DraftSavedAt *time.Time
}

type EventsPageData struct {
	BasePageData
	Events []*Event
}

type VolunteersPageData struct {
	BasePageData
	Events []*EventVolunteers
	Levels []VolunteerLevel
}

type SupportPageData struct {
	BasePageData
	Tickets     []*SupportTicket
	Input       SupportTicketInput
	FieldErrors map[string]string
}

type ProfilePageData struct {
	BasePageData
	User        User
	FieldErrors map[string]string
}
