package cli

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "audit.backend",
		Message: "unknown backend",
	}

	expected := "config error in audit.backend: unknown backend"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("audit", underlyingErr)

	expected := "command audit failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should see through CommandError")
	}

	var cmdErr *CommandError
	if !errors.As(error(err), &cmdErr) || cmdErr.Command != "audit" {
		t.Errorf("errors.As() = %v", cmdErr)
	}
}
