package order

import (
	"strings"
	"testing"

	"github.com/rahmatdika/ekantin/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		wantErr  bool
	}{
		{model.StatusPending, model.StatusProcessing, false},
		{model.StatusProcessing, model.StatusReady, false},
		{model.StatusReady, model.StatusCompleted, false},
		// Forward skips are deliberate: the vendor dashboard allows them.
		{model.StatusPending, model.StatusCompleted, false},
		{model.StatusPending, model.StatusReady, false},
		// Cancel from any non-terminal state.
		{model.StatusPending, model.StatusCancelled, false},
		{model.StatusReady, model.StatusCancelled, false},
		// Terminal states accept nothing.
		{model.StatusCompleted, model.StatusCancelled, true},
		{model.StatusCompleted, model.StatusPending, true},
		{model.StatusCancelled, model.StatusProcessing, true},
		// No moving backwards.
		{model.StatusReady, model.StatusPending, true},
		{model.StatusProcessing, model.StatusPending, true},
		// Unknown target.
		{model.StatusPending, "refunded", true},
	}

	for _, tt := range tests {
		err := CanTransition(tt.from, tt.to)
		if (err != nil) != tt.wantErr {
			t.Errorf("CanTransition(%s, %s) err = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
		}
	}
}

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		code := NewCode()
		if !strings.HasPrefix(code, "EK-") || len(code) != 9 {
			t.Fatalf("code %q has wrong shape", code)
		}
		if strings.ContainsAny(code[3:], "0O1I") {
			t.Errorf("code %q contains ambiguous characters", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("codes look non-random: %d unique of 50", len(seen))
	}
}
