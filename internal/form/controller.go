// Package form holds the client-side registration form state. It runs the
// shared registration contract for early feedback; the server stays the
// final authority.
package form

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"registration-service/internal/registration"
)

const (
	StatusInvalid = "Please fix the highlighted fields and try again."
	StatusSuccess = "Registered successfully! We will contact you soon."
	StatusFailed  = "Something went wrong. Please try again."
)

var (
	ErrSubmitting    = errors.New("a submission is already in progress")
	ErrMemberLimit   = errors.New("member count limit reached")
	ErrMemberIndex   = errors.New("member index out of range")
	ErrDraftRejected = errors.New("draft failed validation")
)

// Submitter sends a normalized draft to the server and returns the id of
// the stored registration.
type Submitter interface {
	Submit(ctx context.Context, req registration.Request) (string, error)
}

// State is the whole form: the draft, one message per invalid field and the
// status banner. It is replaced as one value on every change.
type State struct {
	Draft      registration.Request
	Errors     map[string]string
	Status     string
	Submitting bool
	LastID     string
}

func (s State) clone() State {
	out := s
	out.Draft.Members = slices.Clone(s.Draft.Members)
	out.Errors = maps.Clone(s.Errors)
	return out
}

type Controller struct {
	validator *registration.Validator
	submitter Submitter

	mu    sync.Mutex
	state State
}

func NewController(v *registration.Validator, s Submitter) *Controller {
	c := &Controller{validator: v, submitter: s}
	c.state = State{Draft: c.emptyDraft(), Errors: map[string]string{}}
	return c
}

func (c *Controller) emptyDraft() registration.Request {
	contract := c.validator.Contract()
	return registration.Request{
		Track:   contract.DefaultTrack,
		Members: make([]registration.MemberRequest, contract.MinMembers),
	}
}

// State returns a copy of the current form state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Update applies edit to a copy of the draft and swaps it in.
func (c *Controller) Update(edit func(*registration.Request)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.clone()
	edit(&next.Draft)
	c.state = next
}

// SetMember replaces member i of the draft.
func (c *Controller) SetMember(i int, m registration.MemberRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.state.Draft.Members) {
		return ErrMemberIndex
	}
	next := c.state.clone()
	next.Draft.Members[i] = m
	c.state = next
	return nil
}

func (c *Controller) CanAddMember() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.state.Draft.Members) < c.validator.Contract().MaxMembers
}

func (c *Controller) CanRemoveMember() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.state.Draft.Members) > c.validator.Contract().MinMembers
}

// AddMember appends an empty member unless the team is already full.
func (c *Controller) AddMember() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.state.Draft.Members) >= c.validator.Contract().MaxMembers {
		return ErrMemberLimit
	}
	next := c.state.clone()
	next.Draft.Members = append(next.Draft.Members, registration.MemberRequest{})
	c.state = next
	return nil
}

// RemoveMember drops member i unless the team is already at its minimum.
// Field errors keyed by member index are cleared since they no longer line up.
func (c *Controller) RemoveMember(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.state.Draft.Members) {
		return ErrMemberIndex
	}
	if len(c.state.Draft.Members) <= c.validator.Contract().MinMembers {
		return ErrMemberLimit
	}
	next := c.state.clone()
	next.Draft.Members = slices.Delete(next.Draft.Members, i, i+1)
	maps.DeleteFunc(next.Errors, func(key, _ string) bool {
		return strings.HasPrefix(key, "members[")
	})
	c.state = next
	return nil
}

// Validate runs the shared contract over the draft and stores the field
// errors. It reports whether the draft is valid.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := c.check(c.state.Draft)
	next := c.state.clone()
	next.Errors = fields
	c.state = next
	return len(fields) == 0
}

func (c *Controller) check(draft registration.Request) map[string]string {
	_, err := c.validator.Validate(draft)
	if err == nil {
		return map[string]string{}
	}
	if verr, ok := registration.AsValidationError(err); ok {
		return maps.Clone(verr.Fields)
	}
	return map[string]string{"form": err.Error()}
}

// Submit validates the draft and sends its normalized form. On success the
// draft is reset. On any failure the draft is kept and the errors and banner
// explain what went wrong.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Submitting {
		c.mu.Unlock()
		return ErrSubmitting
	}

	fields := c.check(c.state.Draft)
	next := c.state.clone()
	next.Errors = fields
	if len(fields) > 0 {
		next.Status = StatusInvalid
		c.state = next
		c.mu.Unlock()
		return ErrDraftRejected
	}

	next.Status = ""
	next.Submitting = true
	c.state = next
	payload := next.Draft.Normalize()
	c.mu.Unlock()

	id, err := c.submitter.Submit(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	next = c.state.clone()
	next.Submitting = false

	if err != nil {
		if verr, ok := registration.AsValidationError(err); ok {
			maps.Copy(next.Errors, verr.Fields)
			next.Status = StatusInvalid
		} else {
			next.Status = StatusFailed
		}
		c.state = next
		return err
	}

	c.state = State{
		Draft:  c.emptyDraft(),
		Errors: map[string]string{},
		Status: StatusSuccess,
		LastID: id,
	}
	return nil
}
