package fiche

import "github.com/pkg/errors"

// State is the processing stage of one schedule group.
type State string

const (
	StateStart            State = "start"
	StateReportDownloaded State = "report_downloaded"
	StateDecided          State = "decided"
	StateGradedApplied    State = "graded_applied"
	StateFutureDeferred   State = "future_deferred"
	StateNotificationSent State = "notification_sent"
	StateFailed           State = "failed"
	StateLogged           State = "logged"
)

var ErrIllegalTransition = errors.New("illegal state transition")

var transitions = map[State][]State{
	StateStart:            {StateReportDownloaded, StateFailed},
	StateReportDownloaded: {StateDecided, StateFailed},
	StateDecided:          {StateGradedApplied, StateFutureDeferred, StateNotificationSent, StateFailed},
	StateGradedApplied:    {StateLogged},
	StateFutureDeferred:   {StateLogged},
	StateNotificationSent: {StateLogged},
	StateFailed:           {StateLogged},
}

func isAllowedTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves *state to `to` when the transition is allowed.
func Transition(state *State, to State) error {
	if !isAllowedTransition(*state, to) {
		return errors.Wrapf(ErrIllegalTransition, "%s -> %s", *state, to)
	}
	*state = to
	return nil
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool { return s == StateLogged }
