package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBuilderConstructsClassifiedError(t *testing.T) {
	cause := errors.New("connection refused")
	err := GitError("clone failed").
		Retryable().
		WithContext("url", "https://example.com/fren.git").
		WithCause(cause).
		Build()

	if err.Category() != CategoryGit {
		t.Errorf("expected category git, got %s", err.Category())
	}
	if err.Severity() != SeverityError {
		t.Errorf("expected default severity error, got %s", err.Severity())
	}
	if err.RetryStrategy() != RetryBackoff {
		t.Errorf("expected backoff retry, got %s", err.RetryStrategy())
	}
	if !err.IsRetryable() {
		t.Error("expected error to be retryable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be in the unwrap chain")
	}
	if err.Context()["url"] != "https://example.com/fren.git" {
		t.Errorf("unexpected context: %v", err.Context())
	}
}

func TestAsClassifiedThroughWrapping(t *testing.T) {
	inner := ValidationError("artifact mode must be octal").Build()
	wrapped := fmt.Errorf("load recipe: %w", inner)

	classified, ok := AsClassified(wrapped)
	if !ok {
		t.Fatal("expected to find classified error in chain")
	}
	if classified.Category() != CategoryValidation {
		t.Errorf("expected validation category, got %s", classified.Category())
	}
}

func TestCategoryOfUnclassified(t *testing.T) {
	if got := CategoryOf(errors.New("plain")); got != CategoryInternal {
		t.Errorf("expected internal for unclassified, got %s", got)
	}
}

func TestCLIAdapterExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain"), 1},
		{ValidationError("bad").Build(), 2},
		{AuthError("denied").Build(), 5},
		{ConfigError("missing").Build(), 7},
		{GitError("fetch").Build(), 8},
		{NotFoundError("no changelog").Build(), 9},
		{BuildError("step failed").Build(), 11},
		{DaemonError("queue full").Build(), 12},
	}
	for _, tc := range cases {
		if got := adapter.ExitCodeFor(tc.err); got != tc.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWithContextExtendsContext(t *testing.T) {
	base := BuildError("step failed").Build()
	extended := base.WithContext("step", "cargo build")

	if extended.Context()["step"] != "cargo build" {
		t.Errorf("unexpected extended context: %v", extended.Context())
	}
	if extended.Category() != CategoryBuild {
		t.Errorf("expected category preserved, got %s", extended.Category())
	}
}
