package fiche

import (
	"testing"

	"github.com/pkg/errors"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		path    []State
		wantErr bool
	}{
		{"graded", []State{StateReportDownloaded, StateDecided, StateGradedApplied, StateLogged}, false},
		{"deferred", []State{StateReportDownloaded, StateDecided, StateFutureDeferred, StateLogged}, false},
		{"notified", []State{StateReportDownloaded, StateDecided, StateNotificationSent, StateLogged}, false},
		{"failed early", []State{StateFailed, StateLogged}, false},
		{"failed after decision", []State{StateReportDownloaded, StateDecided, StateFailed, StateLogged}, false},
		{"skip download", []State{StateDecided}, true},
		{"log twice", []State{StateFailed, StateLogged, StateLogged}, true},
		{"fail after outcome", []State{StateReportDownloaded, StateDecided, StateGradedApplied, StateFailed}, true},
		{"start logged", []State{StateLogged}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := StateStart
			var err error
			for _, to := range tt.path {
				if err = Transition(&state, to); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errors.Cause(err) != ErrIllegalTransition {
				t.Errorf("Transition() error = %v, want %v", err, ErrIllegalTransition)
			}
			if !tt.wantErr && !state.IsTerminal() {
				t.Errorf("final state = %s, want terminal", state)
			}
		})
	}
}

func TestTransitionKeepsStateOnError(t *testing.T) {
	state := StateDecided
	if err := Transition(&state, StateReportDownloaded); err == nil {
		t.Fatal("Transition() expected an error")
	}
	if state != StateDecided {
		t.Errorf("state = %s, want %s", state, StateDecided)
	}
}
