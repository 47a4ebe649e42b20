package workflow

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticket struct {
	Status   string
	OwnerID  string
	Stamped  bool
	StampCnt int
}

func newTicketMachine() *Machine[ticket] {
	return New[ticket](
		"ticket",
		[]Status{"pending", "approved", "rejected"},
		func(t *ticket) Status { return Status(t.Status) },
		func(t *ticket, s Status) { t.Status = string(s) },
	).Rule("approved", Rule[ticket]{
		From: []Status{"pending"},
		Permit: func(a Actor, t *ticket) error {
			if !a.HasRole("admin") {
				return Denyf("only admin can approve")
			}
			return nil
		},
		Apply: func(a Actor, t *ticket) {
			t.Stamped = true
			t.StampCnt++
		},
	}).Rule("rejected", Rule[ticket]{
		From: []Status{"pending"},
		Permit: func(a Actor, t *ticket) error {
			if a.ID != t.OwnerID && !a.HasRole("admin") {
				return Denyf("only the owner or admin can reject")
			}
			return nil
		},
	})
}

func TestTransitionSuccess(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: "pending"}

	err := m.Transition(tk, "approved", Actor{ID: "u1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "approved", tk.Status)
	assert.True(t, tk.Stamped)
}

func TestTransitionRejectsStatusOutsideEnum(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: "pending"}

	err := m.Transition(tk, "frozen", Actor{ID: "u1", Role: "admin"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "pending", tk.Status)
}

func TestTransitionNeverWritesOutsideEnum(t *testing.T) {
	// Drive random target statuses at the machine; whatever the outcome, the
	// entity's status stays inside the declared enum.
	m := newTicketMachine()
	valid := map[string]bool{"pending": true, "approved": true, "rejected": true}
	rng := rand.New(rand.NewSource(1))

	targets := []Status{"pending", "approved", "rejected", "frozen", "", "APPROVED", "done"}
	actors := []Actor{
		{ID: "u1", Role: "admin"},
		{ID: "u2", Role: "member"},
		{},
	}

	for i := 0; i < 500; i++ {
		tk := &ticket{Status: "pending", OwnerID: "u2"}
		for j := 0; j < 5; j++ {
			_ = m.Transition(tk, targets[rng.Intn(len(targets))], actors[rng.Intn(len(actors))])
			if !valid[tk.Status] {
				t.Fatalf("status %q escaped the enum at iteration %d", tk.Status, i)
			}
		}
	}
}

func TestPermissionCheckedBeforePrecondition(t *testing.T) {
	// A caller who is both unauthorized and hitting a bad precondition gets
	// PermissionDenied, and the entity keeps its state.
	m := newTicketMachine()
	tk := &ticket{Status: "rejected"}

	err := m.Transition(tk, "approved", Actor{ID: "u2", Role: "member"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "rejected", tk.Status)
	assert.False(t, tk.Stamped)
}

func TestFromPreconditionViolation(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: "rejected"}

	err := m.Transition(tk, "approved", Actor{ID: "u1", Role: "admin"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, "rejected", tk.Status)
	assert.False(t, tk.Stamped, "apply must not run on a failed transition")
}

func TestUnruledStatusCannotBeSet(t *testing.T) {
	m := newTicketMachine()
	tk := &ticket{Status: "approved"}

	// "pending" is in the enum but has no rule, so it is not directly
	// reachable.
	err := m.Transition(tk, "pending", Actor{ID: "u1", Role: "admin"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, "approved", tk.Status)
}

func TestOwnerPermit(t *testing.T) {
	m := newTicketMachine()

	tk := &ticket{Status: "pending", OwnerID: "u2"}
	err := m.Transition(tk, "rejected", Actor{ID: "u2", Role: "member"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", tk.Status)

	tk = &ticket{Status: "pending", OwnerID: "u2"}
	err = m.Transition(tk, "rejected", Actor{ID: "u3", Role: "member"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "pending", tk.Status)
}

func TestErrorWrappersCarryDetail(t *testing.T) {
	err := Denyf("user %s may not", "u9")
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Contains(t, err.Error(), "u9")

	err = Invalidf("cannot go from %q", "pending")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	err = Validatef("bad %s", "status")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestStatusesReturnsDeclaredEnum(t *testing.T) {
	m := newTicketMachine()
	got := m.Statuses()
	assert.Len(t, got, 3)
	for _, s := range got {
		assert.Contains(t, []Status{"pending", "approved", "rejected"}, s,
			fmt.Sprintf("unexpected status %q", s))
	}
}
