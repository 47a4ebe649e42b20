// Package workflow implements the shared approval/status progression used by
// bookings, events, retirement, member confirmation and feedback triage. Each
// entity type declares one Machine: its status enum, the permitted target
// statuses, who may drive each transition, and the side-channel fields a
// successful transition stamps. Handlers resolve the Actor once and thread it
// through every operation; nothing below the handler layer reads request
// state.
package workflow

import (
	"errors"
	"fmt"
)

// Error taxonomy. Services wrap these with detail; handlers map them to HTTP
// statuses with errors.Is.
var (
	// ErrPermissionDenied authenticated actor lacks the role/ownership the
	// transition requires.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTransition precondition on the entity's current status not met.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrValidation malformed input, including a status outside the enum.
	ErrValidation = errors.New("validation failed")
)

// Denyf wraps ErrPermissionDenied with detail.
func Denyf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// Invalidf wraps ErrInvalidTransition with detail.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// Validatef wraps ErrValidation with detail.
func Validatef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Status an enumerated status value.
type Status string

// Actor the resolved principal driving a transition.
type Actor struct {
	ID   string
	Role string
}

// HasRole reports whether the actor holds one of the given roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Rule declares how one target status may be reached.
type Rule[E any] struct {
	// From lists the statuses the entity must currently be in. Empty means
	// any current status is acceptable (e.g. handover completion).
	From []Status
	// Permit gates the transition on the actor. Nil permits any
	// authenticated actor. Runs before From is checked and before any
	// mutation, so a denied call leaves the entity untouched.
	Permit func(Actor, *E) error
	// Check is an extra precondition beyond From. Return a wrapped
	// ErrInvalidTransition to reject.
	Check func(*E) error
	// Apply stamps side-channel fields (timestamps, actor ids) after the
	// status has been written. Cascading writes to other entities belong in
	// the caller's transaction, not here.
	Apply func(Actor, *E)
}

// Machine the declared workflow of one entity type.
type Machine[E any] struct {
	entity   string
	statuses map[Status]bool
	current  func(*E) Status
	assign   func(*E, Status)
	rules    map[Status]Rule[E]
}

// New declares a machine over the given status enum. current and assign bind
// the machine to the entity's status field.
func New[E any](entity string, statuses []Status, current func(*E) Status, assign func(*E, Status)) *Machine[E] {
	set := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return &Machine[E]{
		entity:   entity,
		statuses: set,
		current:  current,
		assign:   assign,
		rules:    make(map[Status]Rule[E]),
	}
}

// Rule registers the rule for reaching a target status.
func (m *Machine[E]) Rule(to Status, r Rule[E]) *Machine[E] {
	m.rules[to] = r
	return m
}

// Transition applies a permitted status change to the entity in place.
// Check order: enum membership, permission, precondition. The entity is not
// mutated on any failure.
func (m *Machine[E]) Transition(e *E, to Status, actor Actor) error {
	if !m.statuses[to] {
		return Validatef("%q is not a valid %s status", to, m.entity)
	}

	rule, ok := m.rules[to]
	if !ok {
		return Invalidf("%s status %q cannot be set directly", m.entity, to)
	}

	if rule.Permit != nil {
		if err := rule.Permit(actor, e); err != nil {
			return err
		}
	}

	if len(rule.From) > 0 {
		cur := m.current(e)
		allowed := false
		for _, from := range rule.From {
			if cur == from {
				allowed = true
				break
			}
		}
		if !allowed {
			return Invalidf("%s cannot go from %q to %q", m.entity, cur, to)
		}
	}

	if rule.Check != nil {
		if err := rule.Check(e); err != nil {
			return err
		}
	}

	m.assign(e, to)
	if rule.Apply != nil {
		rule.Apply(actor, e)
	}
	return nil
}

// Statuses returns the declared enum, for validation at the request boundary.
func (m *Machine[E]) Statuses() []Status {
	out := make([]Status, 0, len(m.statuses))
	for s := range m.statuses {
		out = append(out, s)
	}
	return out
}
