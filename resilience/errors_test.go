package resilience

import (
	"errors"
	"fmt"
	"testing"
)

func TestPermanent(t *testing.T) {
	base := errors.New("400 bad request")
	err := fmt.Errorf("webhook: %w", Permanent(base))

	if !IsPermanent(err) {
		t.Error("IsPermanent should see through wrapping")
	}
	if !errors.Is(err, base) {
		t.Error("Permanent should unwrap to the original error")
	}
	if err.Error() != "webhook: 400 bad request" {
		t.Errorf("Error() = %q", err.Error())
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	if IsPermanent(base) {
		t.Error("plain errors are not permanent")
	}
}
