// Package conversation implements the multi-step input flows of the bot.
// A Flow is an ordered list of named steps; the Machine keeps each actor's
// position in a Store and advances it one message at a time.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "finbot/internal/errors"
)

// ValidateFunc checks the raw input for a step and returns the value to store
// under the step's field. It may inspect the fields collected so far.
type ValidateFunc func(input string, fields Fields) (any, error)

// CompleteFunc runs when the last step has been answered.
type CompleteFunc func(ctx context.Context, actor int64, fields Fields) (string, error)

// Step is one prompt/answer exchange.
type Step struct {
	Field    string
	Prompt   string
	Validate ValidateFunc
	// Sensitive marks input that should be removed from the chat once read.
	Sensitive bool
}

// Flow is a named, ordered sequence of steps.
type Flow struct {
	ID            string
	Steps         []Step
	Complete      CompleteFunc
	CancelMessage string
	// HoldOnError reports whether a user error from Complete keeps the actor
	// on the last step instead of ending the flow.
	HoldOnError func(err error) bool
}

// Reply is what the machine wants sent back after handling input.
type Reply struct {
	Text        string
	Done        bool
	DeleteInput bool
}

// ErrNoActiveFlow is returned by Handle when the actor has nothing in progress.
var ErrNoActiveFlow = errors.New("conversation: no active flow")

type rewindError struct {
	err error
}

func (e *rewindError) Error() string { return e.err.Error() }
func (e *rewindError) Unwrap() error { return e.err }

// Rewind wraps a validation error so the flow restarts from its first step
// and drops everything collected so far.
func Rewind(err error) error {
	return &rewindError{err: err}
}

// isUserError reports whether err is an expected, user-facing failure as
// opposed to an infrastructure problem.
func isUserError(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code != apperrors.ErrInternalServer.Code
}

// Machine drives flows for all actors.
type Machine struct {
	store Store
	flows map[string]*Flow
	order []string
	now   func() time.Time
}

// NewMachine creates a Machine backed by store.
func NewMachine(store Store, flows ...*Flow) *Machine {
	m := &Machine{
		store: store,
		flows: make(map[string]*Flow),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, f := range flows {
		m.Register(f)
	}
	return m
}

// Register adds a flow. Registering the same id twice replaces the definition.
func (m *Machine) Register(f *Flow) {
	if _, exists := m.flows[f.ID]; !exists {
		m.order = append(m.order, f.ID)
	}
	m.flows[f.ID] = f
}

// Start begins flowID for actor with optional seed fields, discarding any
// state the actor had in this or another flow.
func (m *Machine) Start(ctx context.Context, actor int64, flowID string, seed Fields) (Reply, error) {
	flow, ok := m.flows[flowID]
	if !ok {
		return Reply{}, fmt.Errorf("conversation: unknown flow %q", flowID)
	}
	if len(flow.Steps) == 0 {
		return Reply{}, fmt.Errorf("conversation: flow %q has no steps", flowID)
	}
	if err := m.clear(ctx, actor); err != nil {
		return Reply{}, err
	}

	fields := Fields{}
	for k, v := range seed {
		fields[k] = v
	}
	st := &State{FlowID: flowID, Step: 0, Fields: fields, UpdatedAt: m.now()}
	if err := m.store.Put(ctx, Key{Actor: actor, Flow: flowID}, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: flow.Steps[0].Prompt}, nil
}

// Active returns the flow and state the actor is currently in, or nil.
func (m *Machine) Active(ctx context.Context, actor int64) (*Flow, *State, error) {
	for _, id := range m.order {
		st, err := m.store.Get(ctx, Key{Actor: actor, Flow: id})
		if err != nil {
			return nil, nil, err
		}
		if st != nil {
			return m.flows[id], st, nil
		}
	}
	return nil, nil, nil
}

// Cancel clears whatever the actor has in progress. It returns the cancelled
// flow's message and whether anything was active.
func (m *Machine) Cancel(ctx context.Context, actor int64) (string, bool, error) {
	flow, _, err := m.Active(ctx, actor)
	if err != nil {
		return "", false, err
	}
	if err := m.clear(ctx, actor); err != nil {
		return "", false, err
	}
	if flow == nil {
		return "", false, nil
	}
	return flow.CancelMessage, true, nil
}

// Handle feeds input to the actor's active flow.
//
// A user error from a step keeps the actor on that step. A Rewind error sends
// the actor back to the first step. Any other error ends the flow.
func (m *Machine) Handle(ctx context.Context, actor int64, input string) (Reply, error) {
	flow, st, err := m.Active(ctx, actor)
	if err != nil {
		return Reply{}, err
	}
	if flow == nil {
		return Reply{}, ErrNoActiveFlow
	}

	key := Key{Actor: actor, Flow: flow.ID}
	if st.Step < 0 || st.Step >= len(flow.Steps) {
		return m.end(ctx, key, Reply{}, apperrors.Wrap(apperrors.ErrInternalServer,
			fmt.Errorf("conversation: flow %q at invalid step %d", flow.ID, st.Step)))
	}
	if st.Fields == nil {
		st.Fields = Fields{}
	}

	step := flow.Steps[st.Step]
	reply := Reply{DeleteInput: step.Sensitive}

	value, err := step.Validate(input, st.Fields)
	if err != nil {
		var rw *rewindError
		switch {
		case errors.As(err, &rw):
			restart := &State{FlowID: flow.ID, Fields: Fields{}, UpdatedAt: m.now()}
			if putErr := m.store.Put(ctx, key, restart); putErr != nil {
				return reply, putErr
			}
			reply.Text = flow.Steps[0].Prompt
			return reply, rw.err
		case isUserError(err):
			return reply, err
		default:
			return m.end(ctx, key, reply, err)
		}
	}

	st.Fields[step.Field] = value
	if st.Step+1 < len(flow.Steps) {
		st.Step++
		st.UpdatedAt = m.now()
		if err := m.store.Put(ctx, key, st); err != nil {
			return reply, err
		}
		reply.Text = flow.Steps[st.Step].Prompt
		return reply, nil
	}

	text, err := flow.Complete(ctx, actor, st.Fields)
	if err != nil {
		if isUserError(err) && flow.HoldOnError != nil && flow.HoldOnError(err) {
			delete(st.Fields, step.Field)
			st.UpdatedAt = m.now()
			if putErr := m.store.Put(ctx, key, st); putErr != nil {
				return reply, putErr
			}
			reply.Text = step.Prompt
			return reply, err
		}
		return m.end(ctx, key, reply, err)
	}

	if err := m.store.Delete(ctx, key); err != nil {
		return reply, err
	}
	reply.Done = true
	reply.Text = text
	return reply, nil
}

func (m *Machine) end(ctx context.Context, key Key, reply Reply, cause error) (Reply, error) {
	reply.Done = true
	if err := m.store.Delete(ctx, key); err != nil {
		return reply, errors.Join(cause, err)
	}
	return reply, cause
}

func (m *Machine) clear(ctx context.Context, actor int64) error {
	for _, id := range m.order {
		if err := m.store.Delete(ctx, Key{Actor: actor, Flow: id}); err != nil {
			return err
		}
	}
	return nil
}
