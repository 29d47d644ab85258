package order

import (
	"fmt"

	"github.com/rahmatdika/ekantin/internal/model"
)

var statusRank = map[string]int{
	model.StatusPending:    0,
	model.StatusProcessing: 1,
	model.StatusReady:      2,
	model.StatusCompleted:  3,
}

// ValidStatus reports whether s is a known transaction status.
func ValidStatus(s string) bool {
	if s == model.StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether a status accepts no further transitions.
func Terminal(s string) bool {
	return s == model.StatusCompleted || s == model.StatusCancelled
}

// CanTransition reports whether an order may move from one status to
// another. Forward skips are allowed (a vendor can mark a pending order
// completed directly), cancellation is allowed from any non-terminal state,
// and nothing leaves a terminal state.
func CanTransition(from, to string) error {
	if !ValidStatus(to) {
		return fmt.Errorf("unknown status %q", to)
	}
	if Terminal(from) {
		return fmt.Errorf("order is already %s", from)
	}
	if to == model.StatusCancelled {
		return nil
	}
	if statusRank[to] <= statusRank[from] && to != from {
		return fmt.Errorf("cannot move order back from %s to %s", from, to)
	}
	return nil
}
