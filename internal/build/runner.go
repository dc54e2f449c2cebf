// Package build executes recipe build steps in a source checkout.
//
// Steps run sequentially through the external toolchain the recipe names.
// The first failing step aborts the run; its exit status is preserved in
// the returned error and no retry or partial recovery is attempted.
package build

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"time"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// releaseEnv is appended to build steps when the recipe asks for a
// release-mode build.
var releaseEnv = []string{
	"PKGBUILDER_RELEASE=1",
	"CARGO_PROFILE_RELEASE_LTO=true",
}

// StepResult records one executed build step.
type StepResult struct {
	Step     string
	Duration time.Duration
	Output   string
	ExitCode int
}

// Runner executes build steps inside a checkout directory.
type Runner struct {
	dir string
}

// NewRunner creates a runner rooted at the checkout directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Run executes the recipe's build steps in order. It returns the results of
// all completed steps; on failure the last result belongs to the failing step.
func (r *Runner) Run(ctx context.Context, spec recipe.BuildSpec) ([]StepResult, error) {
	results := make([]StepResult, 0, len(spec.Steps))

	for i, step := range spec.Steps {
		result, err := r.runStep(ctx, step, spec.Release)
		results = append(results, result)
		if err != nil {
			return results, ferrors.BuildError("build step failed").
				WithContext("step", step.Name()).
				WithContext("index", i).
				WithContext("exit_code", result.ExitCode).
				WithCause(err).Build()
		}
	}

	return results, nil
}

// runStep executes a single step, capturing combined output.
func (r *Runner) runStep(ctx context.Context, step recipe.Step, release bool) (StepResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, step.Run[0], step.Run[1:]...)
	cmd.Dir = r.dir
	cmd.Env = os.Environ()
	if release {
		cmd.Env = append(cmd.Env, releaseEnv...)
	}
	for k, v := range step.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	slog.Debug("Running build step", logfields.Step(step.Name()), logfields.Path(r.dir))

	err := cmd.Run()
	result := StepResult{
		Step:     step.Name(),
		Duration: time.Since(start),
		Output:   output.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		slog.Error("Build step failed",
			logfields.Step(step.Name()),
			slog.Int("exit_code", result.ExitCode),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
		return result, err
	}

	slog.Info("Build step completed",
		logfields.Step(step.Name()),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}
