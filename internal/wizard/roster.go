package wizard

import (
	"context"
	"errors"

	"eventdesk/pkg/types"
)

func (c *Controller) AddVolunteer(cp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.addVolunteer(cp)
}

// UpdateVolunteer sets one attribute (name, email, level or password).
func (c *Controller) UpdateVolunteer(cp string, i int, field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.updateVolunteer(cp, i, field, value)
}

// SetVolunteer replaces every editable attribute at once. The sent marker is
// kept.
func (c *Controller) SetVolunteer(cp string, i int, v types.Volunteer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.setVolunteer(cp, i, v)
}

// RemoveVolunteer drops the volunteer and its sending flag. Other checkpoints
// are untouched.
func (c *Controller) RemoveVolunteer(cp string, i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.removeVolunteer(cp, i)
}

func (c *Controller) CanSendInvitation(cp string, i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.canSendInvitation(cp, i)
}

// SendInvitation invites one volunteer. The sending flag is held for the
// duration of the call and always cleared afterwards. The volunteer is only
// marked sent if it is still at the same position when the call returns.
func (c *Controller) SendInvitation(ctx context.Context, cp string, i int) error {
	if c.inviter == nil {
		return errors.New("no volunteer inviter configured")
	}

	c.mu.Lock()
	key := sendingKey(cp, i)
	if c.state.Sending[key] {
		c.mu.Unlock()
		return ErrInvitationInFlight
	}
	inv, err := c.state.invitation(cp, i)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state.Sending[key] = true
	c.mu.Unlock()

	err = c.inviter.SendVolunteerInvitation(ctx, inv)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state.Sending, key)
	if err != nil {
		return err
	}
	if v, verr := c.state.volunteer(cp, i); verr == nil && v.Email == inv.Volunteer.Email && v.Name == inv.Volunteer.Name {
		v.Sent = true
	}
	return nil
}
