package upgrade

import (
	"context"

	"github.com/looplab/fsm"
)

// Per-agent lifecycle states (spec.md §4.6 state machine).
const (
	StateUnmanaged      = "unmanaged"
	StateManagedInSync  = "managed-in-sync"
	StateManagedDrifted = "managed-drifted"
	StateManagedPinned  = "managed-pinned"
)

// Events drive the per-agent lifecycle transitions.
const (
	EventApply      = "event_apply"
	EventDrift      = "event_drift"
	EventPin        = "event_pin"
	EventForceApply = "event_force_apply"
)

// AgentLifecycle wraps looplab/fsm with the transition table spec.md
// §4.6 describes: first successful apply moves an agent out of
// unmanaged; drift moves a synced agent to drifted; another apply moves
// it back; pinning is reachable from any state; only a force-apply
// leaves managed-pinned.
type AgentLifecycle struct {
	*fsm.FSM
}

// NewAgentLifecycle builds a lifecycle machine seeded at initialState
// (StateUnmanaged for an agent the engine has never touched).
func NewAgentLifecycle(initialState string) *AgentLifecycle {
	events := fsm.Events{
		{Name: EventApply, Src: []string{StateUnmanaged, StateManagedDrifted}, Dst: StateManagedInSync},
		{Name: EventDrift, Src: []string{StateManagedInSync}, Dst: StateManagedDrifted},
		{Name: EventPin, Src: []string{StateUnmanaged, StateManagedInSync, StateManagedDrifted}, Dst: StateManagedPinned},
		{Name: EventForceApply, Src: []string{StateManagedPinned}, Dst: StateManagedInSync},
	}
	l := &AgentLifecycle{}
	l.FSM = fsm.NewFSM(initialState, events, fsm.Callbacks{})
	return l
}

// Advance drives the lifecycle machine off an apply outcome: whether the
// apply succeeded, whether drift was detected against the prior synced
// state, and whether the agent's channel is now pinned. Returns the
// resulting state; a no-op transition (e.g. EventPin from
// StateManagedPinned) is not an error.
func (l *AgentLifecycle) Advance(ctx context.Context, applied, drifted, pinned, forced bool) (string, error) {
	var event string
	switch {
	case pinned && l.Current() != StateManagedPinned:
		event = EventPin
	case l.Current() == StateManagedPinned && forced:
		event = EventForceApply
	case drifted && l.Current() == StateManagedInSync:
		event = EventDrift
	case applied:
		event = EventApply
	default:
		return l.Current(), nil
	}

	if err := l.Event(ctx, event); err != nil {
		switch err.(type) {
		case fsm.NoTransitionError, fsm.InvalidEventError:
			return l.Current(), nil
		}
		return l.Current(), err
	}
	return l.Current(), nil
}
