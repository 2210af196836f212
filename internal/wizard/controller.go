package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"eventdesk/pkg/types"
)

const (
	eventAdvance = "advance"
	eventRetreat = "retreat"
)

type Submitter interface {
	CreateEvent(ctx context.Context, payload *types.EventPayload) (*types.CreateEventResult, error)
}

type Inviter interface {
	SendVolunteerInvitation(ctx context.Context, inv *types.VolunteerInvitation) error
}

// DraftStore persists wizard snapshots per user. LoadDraft returns
// types.ErrDraftNotFound when nothing is stored.
type DraftStore interface {
	SaveDraft(ctx context.Context, userID int64, snap *Snapshot) error
	LoadDraft(ctx context.Context, userID int64) (*Snapshot, error)
	ClearDraft(ctx context.Context, userID int64) error
}

type Options struct {
	Variant   Variant
	UserID    int64
	Submitter Submitter
	Inviter   Inviter
	Drafts    DraftStore
	Logger    logrus.FieldLogger
}

// Transition describes the outcome of Advance.
type Transition struct {
	From      Step
	To        Step
	Submitted bool
	EventID   string
}

// Controller owns one user's wizard. All methods are safe for concurrent use;
// remote calls are made without holding the lock.
type Controller struct {
	mu sync.Mutex

	variant   Variant
	userID    int64
	steps     []Step
	rules     map[Step]RuleSet
	state     *State
	machine   *fsm.FSM
	submitter Submitter
	inviter   Inviter
	drafts    DraftStore
	logger    logrus.FieldLogger

	submitting bool
	// blocked holds the reason the last advance was cancelled.
	blocked error
}

func New(opts Options) *Controller {
	if opts.Variant == "" {
		opts.Variant = VariantRich
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	c := &Controller{
		variant:   opts.Variant,
		userID:    opts.UserID,
		steps:     opts.Variant.Steps(),
		rules:     StepRules(opts.Variant),
		state:     newState(),
		submitter: opts.Submitter,
		inviter:   opts.Inviter,
		drafts:    opts.Drafts,
		logger:    opts.Logger.WithField("user_id", opts.UserID),
	}
	c.machine = c.newMachine()
	return c
}

func (c *Controller) newMachine() *fsm.FSM {
	events := fsm.Events{}
	for i := 0; i+1 < len(c.steps); i++ {
		events = append(events,
			fsm.EventDesc{Name: eventAdvance, Src: []string{c.steps[i].String()}, Dst: c.steps[i+1].String()},
			fsm.EventDesc{Name: eventRetreat, Src: []string{c.steps[i+1].String()}, Dst: c.steps[i].String()},
		)
	}

	return fsm.NewFSM(c.steps[0].String(), events, fsm.Callbacks{
		"before_" + eventAdvance: func(_ context.Context, e *fsm.Event) {
			if err := c.checkStep(stepFromState(e.Src)); err != nil {
				c.blocked = err
				e.Cancel(err)
			}
		},
		"leave_" + StepFormCreation.String(): func(_ context.Context, e *fsm.Event) {
			if e.Event == eventRetreat {
				c.state.discardBuilderEdits()
			}
		},
		"enter_state": func(_ context.Context, e *fsm.Event) {
			c.state.Step = stepFromState(e.Dst)
			c.state.Errors = make(map[string]string)
		},
	})
}

func stepFromState(name string) Step {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "step-"))
	if err != nil {
		return StepEventType
	}
	return Step(n)
}

func (c *Controller) Variant() Variant {
	return c.variant
}

func (c *Controller) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// View returns a copy of the current state for rendering.
func (c *Controller) View() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Step
}

func (c *Controller) isLast(s Step) bool {
	return s == c.steps[len(c.steps)-1]
}

// SetValues records raw input values. Errors for the touched fields are
// cleared until the next validation.
func (c *Controller) SetValues(values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		c.state.setValue(k, v)
		delete(c.state.Errors, k)
	}
}

// checkStep validates step against its rules and, on the form creation step,
// the saved form preconditions.
func (c *Controller) checkStep(step Step) error {
	errs := c.rules[step].Validate(Subject{Values: c.state.Values, Volunteers: c.state.Volunteers})
	c.state.Errors = errs
	if len(errs) > 0 {
		return &ValidationError{Step: step, Fields: errs}
	}

	if step != StepFormCreation {
		return nil
	}
	if len(c.state.Forms) == 0 {
		return ErrNoSavedForms
	}
	if c.variant != VariantRich {
		return nil
	}
	if c.state.Values.Int(FieldNumberOfForms) != len(c.state.Forms) {
		return ErrFormCountMismatch
	}
	for _, f := range c.state.Forms {
		if c.state.Viewed[f.ID] {
			return nil
		}
	}
	return ErrNoFormViewed
}

// Advance moves to the next step once the active step validates. On the final
// step it submits the event instead.
func (c *Controller) Advance(ctx context.Context) (Transition, error) {
	c.mu.Lock()
	from := c.state.Step
	if c.isLast(from) {
		c.mu.Unlock()
		id, err := c.Submit(ctx)
		if err != nil {
			return Transition{From: from, To: from}, err
		}
		return Transition{From: from, To: c.steps[0], Submitted: true, EventID: id}, nil
	}
	defer c.mu.Unlock()

	c.blocked = nil
	if err := c.machine.Event(ctx, eventAdvance); err != nil {
		if c.blocked != nil {
			return Transition{From: from, To: from}, c.blocked
		}
		return Transition{From: from, To: from}, fmt.Errorf("failed to advance from %s: %w", from.Title(), err)
	}
	return Transition{From: from, To: c.state.Step}, nil
}

// Retreat moves back one step. It is a no-op on the first step.
func (c *Controller) Retreat(ctx context.Context) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Step == c.steps[0] {
		return c.state.Step, nil
	}
	if err := c.machine.Event(ctx, eventRetreat); err != nil {
		return c.state.Step, fmt.Errorf("failed to go back from %s: %w", c.state.Step.Title(), err)
	}
	return c.state.Step, nil
}

// Submit validates every step up to the active one, sends the assembled
// payload and resets the wizard on success. The wizard is left untouched on
// failure so the user can retry.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	if c.submitter == nil {
		c.mu.Unlock()
		return "", errors.New("no event submitter configured")
	}
	for _, step := range c.steps {
		if step > c.state.Step {
			break
		}
		if err := c.checkStep(step); err != nil {
			c.mu.Unlock()
			return "", err
		}
	}
	payload := c.state.payload(c.userID, c.variant)
	c.submitting = true
	c.mu.Unlock()

	res, err := c.submitter.CreateEvent(ctx, payload)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.resetLocked()
	c.mu.Unlock()

	if c.drafts != nil {
		if err := c.drafts.ClearDraft(ctx, c.userID); err != nil {
			c.logger.WithError(err).Warn("failed to clear wizard draft after submission")
		}
	}

	return res.ID(), nil
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.state = newState()
	c.machine.SetState(c.steps[0].String())
}

func (c *Controller) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Snapshot{
		Version: SnapshotVersion,
		Variant: c.variant,
		SavedAt: time.Now().UTC(),
		State:   c.state.clone(),
	}
}

// Restore replaces the state with snap. Snapshots of another version or
// variant, or pointing at an unknown step, are ignored and false is returned.
func (c *Controller) Restore(snap *Snapshot) bool {
	if snap == nil || snap.State == nil || snap.Version != SnapshotVersion || snap.Variant != c.variant {
		return false
	}
	if snap.State.Step < c.steps[0] || snap.State.Step > c.steps[len(c.steps)-1] {
		return false
	}

	state := snap.State.clone()
	state.ensure()
	state.Sending = make(map[string]bool)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.machine.SetState(state.Step.String())
	return true
}

func (c *Controller) SaveDraft(ctx context.Context) error {
	if c.drafts == nil {
		return nil
	}
	if err := c.drafts.SaveDraft(ctx, c.userID, c.Snapshot()); err != nil {
		return fmt.Errorf("failed to save wizard draft: %w", err)
	}
	return nil
}

// ResumeDraft restores the stored draft, if any. A missing or unusable draft is
// not an error.
func (c *Controller) ResumeDraft(ctx context.Context) (bool, error) {
	if c.drafts == nil {
		return false, nil
	}
	snap, err := c.drafts.LoadDraft(ctx, c.userID)
	if err != nil {
		if errors.Is(err, types.ErrDraftNotFound) || errors.Is(err, ErrSnapshotVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load wizard draft: %w", err)
	}
	if !c.Restore(snap) {
		c.logger.Warn("ignoring incompatible wizard draft")
		return false, nil
	}
	return true, nil
}

func (c *Controller) DiscardDraft(ctx context.Context) error {
	c.Reset()
	if c.drafts == nil {
		return nil
	}
	return c.drafts.ClearDraft(ctx, c.userID)
}
