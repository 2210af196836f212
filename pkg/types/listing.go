package types

// Shapes returned by the read-oriented endpoints of the event API.

type Event struct {
	EventID               int64                `json:"event_id"`
	EventType             string               `json:"event_type"`
	EventName             string               `json:"event_name"`
	StartDateTime         string               `json:"start_datetime"`
	EndDateTime           string               `json:"end_datetime"`
	Checkpoints           int                  `json:"checkpoints"`
	GuestRegistrationType string               `json:"guest_registration_type"`
	EventDescription      string               `json:"event_description"`
	EventCategory         string               `json:"event_category"`
	VenueLocation         string               `json:"venue_location"`
	OrganizationName      string               `json:"organization_name"`
	OrganizationEmail     string               `json:"organization_email"`
	OrganizationPhone     string               `json:"organization_phone"`
	MaxAttendance         int                  `json:"max_attendance"`
	RegistrationDeadline  string               `json:"registration_deadline"`
	Forms                 []EventFormSummary   `json:"forms"`
	EmailTemplates        []EmailTemplate      `json:"email_templates"`
	Volunteers            []EventVolunteerSlot `json:"volunteers"`
}

type EventFormSummary struct {
	FormID   int64    `json:"form_id"`
	FormName string   `json:"form_name"`
	Price    *float64 `json:"price"`
	Fields   string   `json:"fields"`
}

type EmailTemplate struct {
	TemplateID     int64   `json:"template_id"`
	TemplateType   string  `json:"template_type"`
	EmailContent   string  `json:"email_content"`
	BrandingAssets *string `json:"branding_assets"`
	FacebookURL    *string `json:"facebook_url"`
	InstagramURL   *string `json:"instagram_url"`
	TwitterURL     *string `json:"twitter_url"`
}

type EventVolunteerSlot struct {
	VolunteerID   int64      `json:"volunteer_id"`
	Checkpoint    string     `json:"checkpoint"`
	VolunteerData *Volunteer `json:"volunteer_data"`
}

type EventForms struct {
	EventID   int64        `json:"event_id"`
	EventName string       `json:"event_name"`
	EventType string       `json:"event_type"`
	Forms     []ListedForm `json:"forms"`
}

type ListedForm struct {
	FormID   int64       `json:"form_id"`
	FormName string      `json:"form_name"`
	Price    *float64    `json:"price"`
	Fields   []FormField `json:"fields"`
}

type FormField struct {
	ID       string    `json:"id" form:"id"`
	Label    string    `json:"label" form:"label"`
	Type     FieldType `json:"type" form:"type"`
	Required bool      `json:"required" form:"required"`
}

type EventVolunteers struct {
	EventID    int64             `json:"event_id"`
	EventName  string            `json:"event_name"`
	Volunteers []ListedVolunteer `json:"volunteers"`
}

type ListedVolunteer struct {
	VolunteerID int64          `json:"volunteer_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Level       VolunteerLevel `json:"level"`
	Sent        bool           `json:"sent"`
	Checkpoint  *string        `json:"checkpoint"`
}

type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "Pending"
	TicketStatusResolved TicketStatus = "Resolved"
)

type SupportTicket struct {
	TicketID    int64        `json:"ticket_id"`
	UserID      int64        `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TicketStatus `json:"status"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

type TokenMetrics struct {
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
	Purchased int `json:"purchased"`
	Used      int `json:"used"`
}

type PurchaseRecord struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	Tokens   int     `json:"tokens"`
	Subtotal float64 `json:"subtotal"`
	GST      float64 `json:"gst"`
	Total    float64 `json:"total"`
	Status   string  `json:"status"`
}

type SupportTicketInput struct {
	UserID      int64  `json:"user_id" form:"-"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

type TokenPurchase struct {
	UserID   int64   `json:"user_id"`
	Tokens   int     `json:"tokens"`
	Subtotal float64 `json:"subtotal"`
	GST      float64 `json:"gst"`
	Total    float64 `json:"total"`
}

// VolunteerAssignment adds a volunteer to an existing event.
type VolunteerAssignment struct {
	EventID   int64     `json:"event_id"`
	Volunteer Volunteer `json:"volunteer"`
}

type VolunteerRemoval struct {
	EventID     int64  `json:"event_id"`
	VolunteerID int64  `json:"volunteer_id"`
	Email       string `json:"email"`
}

type FormFieldsUpdate struct {
	FormID int64    `json:"form_id"`
	Fields []string `json:"fields"`
}
