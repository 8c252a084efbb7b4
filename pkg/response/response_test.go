package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMatching(t *testing.T) {
	t.Parallel()

	notFound := NewError(http.StatusNotFound, "session not found")
	wrapped := fmt.Errorf("load session: %w", notFound)

	if !errors.Is(wrapped, NewError(http.StatusNotFound, "session not found")) {
		t.Fatalf("wrapped error should match an equal domain error")
	}
	if errors.Is(wrapped, NewError(http.StatusConflict, "session not found")) {
		t.Fatalf("errors with different codes should not match")
	}
	if got := StatusOf(wrapped); got != http.StatusNotFound {
		t.Fatalf("StatusOf = %d, want 404", got)
	}
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("StatusOf plain error = %d, want 500", got)
	}
}
