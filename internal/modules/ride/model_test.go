// README: State machine tests: the full transition grid and terminal statuses.
package ride

import "testing"

var allStatuses = []Status{
	StatusPending, StatusAccepted, StatusPickedUp, StatusInTransit,
	StatusCompleted, StatusCancelled, StatusRejected,
}

// TestTransitionGrid checks every (from, to) pair against the table: the
// only allowed moves are pending→{accepted,rejected,cancelled} and the
// linear accepted→picked_up→in_transit→completed chain.
func TestTransitionGrid(t *testing.T) {
	allowed := map[Status]map[Status]bool{
		StatusPending:   {StatusAccepted: true, StatusRejected: true, StatusCancelled: true},
		StatusAccepted:  {StatusPickedUp: true},
		StatusPickedUp:  {StatusInTransit: true},
		StatusInTransit: {StatusCompleted: true},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, from := range []Status{StatusCompleted, StatusCancelled, StatusRejected} {
		if !from.Terminal() {
			t.Errorf("%s should be terminal", from)
		}
		if next, ok := AllowedTransitions[from]; ok && len(next) > 0 {
			t.Errorf("terminal status %s has outgoing transitions %v", from, next)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range allStatuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "driving", "PENDING", "no_show"} {
		if s.Valid() {
			t.Errorf("%s should be invalid", s)
		}
	}
}
