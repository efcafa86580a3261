package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeUsage, "stop while idle")
	if !stderrors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error to match sentinel")
	}
	if stderrors.Is(err, ErrInput) {
		t.Fatalf("usage error must not match input sentinel")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("play: %w", New(CodeInput, "bad poison"))
	if !stderrors.Is(err, ErrInput) {
		t.Fatalf("expected wrapped input error to match")
	}
	if got := GetCode(err); got != CodeInput {
		t.Fatalf("GetCode = %q, want %q", got, CodeInput)
	}
}

func TestGetCodeUnknown(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode = %q, want %q", got, CodeUnknown)
	}
	if got := GetCode(nil); got != CodeUnknown {
		t.Fatalf("GetCode(nil) = %q, want %q", got, CodeUnknown)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeConfiguration, "load profile", stderrors.New("boom"))
	if err.Error() != "load profile: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !stderrors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration match")
	}
}

func TestRecoverable(t *testing.T) {
	if !CodeInput.Recoverable() {
		t.Fatalf("input errors are recoverable")
	}
	for _, c := range []Code{CodeUsage, CodeEmptyInput, CodeConfiguration} {
		if c.Recoverable() {
			t.Fatalf("%s must not be recoverable", c)
		}
	}
}
