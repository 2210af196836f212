package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"eventdesk/pkg/types"
)

const (
	pathAddEvent          = "/events/add_events.php"
	pathSendVolunteerMail = "/events/send_mail_volunteer.php"
	pathGetEvents         = "/events/get_events.php"
	pathGetFormData       = "/events/get_form_data.php"
	pathUpdateFormData    = "/events/update_form_data.php"
	pathGetVolunteerData  = "/events/get_volunteer_data.php"
	pathAddVolunteer      = "/events/add_volunteer.php"
	pathRemoveVolunteer   = "/events/remove_volunteer.php"
	pathGetSupportTickets = "/events/get_support_tickets.php"
	pathSubmitSupport     = "/events/submit_support.php"
	pathGetTokenMetrics   = "/events/get_token_metrics.php"
	pathGetTokenHistory   = "/events/get_token_history.php"
	pathAddTokens         = "/events/add_tokens.php"
	pathUpdateUser        = "/events/update_user.php"
)

func userQuery(userID int64) url.Values {
	return url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
}

func requireSuccess(env Envelope, fallback string) error {
	if env.Status != "success" {
		return &ServerError{Status: http.StatusOK, Message: env.reason(fallback)}
	}
	return nil
}

// CreateEvent posts the assembled wizard payload.
func (c *Client) CreateEvent(ctx context.Context, payload *types.EventPayload) (*types.CreateEventResult, error) {
	var res types.CreateEventResult
	if err := c.post(ctx, pathAddEvent, payload, &res); err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		msg := res.Error
		if msg == "" {
			msg = "Failed to create event"
		}
		return nil, &ServerError{Status: http.StatusOK, Message: msg}
	}
	return &res, nil
}

// SendVolunteerInvitation emails one volunteer their invitation.
func (c *Client) SendVolunteerInvitation(ctx context.Context, inv *types.VolunteerInvitation) error {
	var resp Envelope
	if err := c.post(ctx, pathSendVolunteerMail, inv, &resp); err != nil {
		return err
	}
	return requireSuccess(resp, "Failed to send invitation")
}

func (c *Client) ListEvents(ctx context.Context, userID int64) ([]*types.Event, error) {
	var resp struct {
		Envelope
		Events []*types.Event `json:"events"`
	}
	if err := c.get(ctx, pathGetEvents, userQuery(userID), &resp); err != nil {
		return nil, err
	}
	if err := requireSuccess(resp.Envelope, "Failed to fetch events"); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Client) ListEventForms(ctx context.Context, userID int64) ([]*types.EventForms, error) {
	var resp struct {
		Envelope
		Events []*types.EventForms `json:"events"`
	}
	if err := c.get(ctx, pathGetFormData, userQuery(userID), &resp); err != nil {
		return nil, err
	}
	if err := requireSuccess(resp.Envelope, "Failed to fetch forms"); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Client) UpdateFormFields(ctx context.Context, update *types.FormFieldsUpdate) error {
	var resp Envelope
	if err := c.post(ctx, pathUpdateFormData, update, &resp); err != nil {
		return err
	}
	return requireSuccess(resp, "Failed to update form fields")
}

func (c *Client) ListEventVolunteers(ctx context.Context, userID int64) ([]*types.EventVolunteers, error) {
	var resp struct {
		Envelope
		Events []*types.EventVolunteers `json:"events"`
	}
	if err := c.get(ctx, pathGetVolunteerData, userQuery(userID), &resp); err != nil {
		return nil, err
	}
	if err := requireSuccess(resp.Envelope, "Failed to fetch volunteers"); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// AddVolunteer assigns a volunteer to an existing event and returns the new
// volunteer id.
func (c *Client) AddVolunteer(ctx context.Context, in *types.VolunteerAssignment) (int64, error) {
	var resp struct {
		Envelope
		VolunteerID int64 `json:"volunteer_id"`
	}
	if err := c.post(ctx, pathAddVolunteer, in, &resp); err != nil {
		return 0, err
	}
	if err := requireSuccess(resp.Envelope, "Failed to add volunteer"); err != nil {
		return 0, err
	}
	return resp.VolunteerID, nil
}

func (c *Client) RemoveVolunteer(ctx context.Context, in *types.VolunteerRemoval) error {
	var resp Envelope
	if err := c.post(ctx, pathRemoveVolunteer, in, &resp); err != nil {
		return err
	}
	return requireSuccess(resp, "Failed to remove volunteer")
}
