package domain

import (
	"strings"
	"time"
)

// State is the lifecycle state of an Order.
type State string

const (
	StatePending       State = "pending_confirmation"
	StateConfirmed     State = "confirmed"
	StateInPreparation State = "in_preparation"
	StateReady         State = "ready_for_pickup"
	StateCompleted     State = "completed"
	StateCancelled     State = "cancelled"
)

// AllStates returns every state in lifecycle order.
func AllStates() []State {
	return []State{StatePending, StateConfirmed, StateInPreparation, StateReady, StateCompleted, StateCancelled}
}

// ActiveStates returns the non-terminal states.
func ActiveStates() []State {
	return []State{StatePending, StateConfirmed, StateInPreparation, StateReady}
}

var stateAliases = map[string]State{
	"pendiente_confirmacion": StatePending,
	"confirmado":             StateConfirmed,
	"en_preparacion":         StateInPreparation,
	"listo_para_recoger":     StateReady,
	"completado":             StateCompleted,
	"cancelado":              StateCancelled,
}

// ParseState accepts a canonical state or one of the legacy Spanish values.
func ParseState(s string) (State, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, st := range AllStates() {
		if string(st) == v {
			return st, true
		}
	}
	st, ok := stateAliases[v]
	return st, ok
}

// IsTerminal reports whether no further work happens after s.
func (s State) IsTerminal() bool { return s == StateCompleted || s == StateCancelled }

// Label is the human label used in chat messages.
func (s State) Label() string {
	switch s {
	case StatePending:
		return "Pendiente de confirmación"
	case StateConfirmed:
		return "Confirmado"
	case StateInPreparation:
		return "En preparación"
	case StateReady:
		return "Listo para recoger"
	case StateCompleted:
		return "Completado"
	case StateCancelled:
		return "Cancelado"
	}
	return string(s)
}

var canonicalNext = map[State][]State{
	StatePending:       {StateConfirmed, StateCancelled},
	StateConfirmed:     {StateInPreparation, StateCancelled},
	StateInPreparation: {StateReady, StateCancelled},
	StateReady:         {StateCompleted, StateCancelled},
}

// CanTransition reports whether from -> to follows the canonical flow.
func CanTransition(from, to State) bool {
	for _, n := range canonicalNext[from] {
		if n == to {
			return true
		}
	}
	return false
}

// StampTime sets the timestamp owned by state s to now unless it is already
// set. It reports whether a field was written.
func (o *Order) StampTime(s State, now time.Time) bool {
	var f **time.Time
	switch s {
	case StateConfirmed:
		f = &o.ConfirmedAt
	case StateInPreparation:
		f = &o.InPreparationAt
	case StateReady:
		f = &o.ReadyAt
	case StateCompleted:
		f = &o.CompletedAt
	case StateCancelled:
		f = &o.CancelledAt
	default:
		return false
	}
	if *f != nil {
		return false
	}
	t := now
	*f = &t
	return true
}

// Priority orders the work queue.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority accepts canonical values and the Spanish alta/media/baja.
// Unknown input yields medium and false.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "alta":
		return PriorityHigh, true
	case "medium", "media":
		return PriorityMedium, true
	case "low", "baja":
		return PriorityLow, true
	}
	return PriorityMedium, false
}

// Label is the upper-case label used in chat messages.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "ALTA"
	case PriorityLow:
		return "BAJA"
	}
	return "MEDIA"
}
