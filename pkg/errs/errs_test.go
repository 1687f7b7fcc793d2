package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOfMatchesThroughWrapping(t *testing.T) {
	base := E(KindNotFound, "upstream.Download", errors.New("missing"))
	wrapped := fmt.Errorf("fetch failed: %w", base)

	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("KindOf = %v, want KindNotFound", KindOf(wrapped))
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatalf("Is(wrapped, KindNotFound) = false, want true")
	}
	if Is(wrapped, KindTimeout) {
		t.Fatalf("Is(wrapped, KindTimeout) = true, want false")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != 0 {
		t.Fatalf("KindOf(plain) = %v, want 0", got)
	}
	if KindOf(nil) != 0 {
		t.Fatalf("KindOf(nil) should be 0")
	}
}

func TestStatusOf(t *testing.T) {
	err := EStatus(KindUpstream, "upstream.List", 503, nil)
	if got := StatusOf(err); got != 503 {
		t.Fatalf("StatusOf = %d, want 503", got)
	}
	if got := StatusOf(errors.New("plain")); got != 0 {
		t.Fatalf("StatusOf(plain) = %d, want 0", got)
	}
}

func TestErrorStringCarriesOpKindAndStatus(t *testing.T) {
	err := EStatus(KindUpstream, "upstream.List", 500, errors.New("boom"))
	msg := err.Error()
	for _, want := range []string{"upstream.List", "upstream", "500", "boom"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error string %q missing %q", msg, want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := E(KindStorage, "store.Write", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should reach the wrapped cause")
	}
}
