// Package bump raises the lower bound of every dependency of a project to
// the floor chosen by the retention window.
//
// A run has two phases. Plan resolves each requirement in declared order
// (fetch release history, select the floor, merge it into the existing
// specifier) without side effects. Apply hands the resulting requirement list
// to a manifest.Persister.
package bump

import (
	"context"
	"fmt"
	"time"

	depferrors "github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/floor"
	"github.com/ajxudir/depfloor/pkg/history"
	"github.com/ajxudir/depfloor/pkg/manifest"
	"github.com/ajxudir/depfloor/pkg/specifier"
	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/warnings"
)

// Fetcher lists the uploaded files of a project. registry.Client implements it.
type Fetcher interface {
	Artifacts(ctx context.Context, name string) ([]history.Artifact, error)
}

// Outcome classifies what happened to one requirement.
type Outcome string

const (
	// OutcomeUpdated: the specifier was rewritten.
	OutcomeUpdated Outcome = "updated"

	// OutcomeUnchanged: the existing specifier already implies the floor.
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeFallback: the floor could not be merged; the original is kept.
	OutcomeFallback Outcome = "fallback"

	// OutcomeSkipped: the requirement is not a versioned dependency.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed: resolution failed; the original is kept.
	OutcomeFailed Outcome = "failed"
)

// Options configures a Bumper.
//
// Fields:
//   - Window: Retention window
//   - Now: Reference time; zero uses the current time
//   - ContinueOnFail: Keep failing requirements unchanged instead of aborting
//   - Progress: Called after each requirement, may be nil
type Options struct {
	Window         floor.Window
	Now            time.Time
	ContinueOnFail bool
	Progress       func(done, total int, r Result)
}

// Result is the resolution of one requirement.
//
// Fields:
//   - Name: Project name
//   - Original: Requirement as declared
//   - Requirement: Requirement to write back
//   - Specifier: Specifier part of Requirement
//   - Floor: Selected floor version, empty when none was selected
//   - Reason: Rule that produced the floor
//   - FloorDate: First-seen date of the floor
//   - Outcome: What happened
//   - Warning: Why a fallback or skip happened
//   - Err: Failure cause for OutcomeFailed
type Result struct {
	Name        string
	Original    string
	Requirement string
	Specifier   string
	Floor       string
	Reason      floor.Reason
	FloorDate   time.Time
	Outcome     Outcome
	Warning     string
	Err         error
}

// Plan is the outcome of resolving every requirement.
type Plan struct {
	Results []Result
}

// Requirements returns the requirement strings to persist, in declared order.
func (p *Plan) Requirements() []string {
	out := make([]string, len(p.Results))
	for i, r := range p.Results {
		out[i] = r.Requirement
	}
	return out
}

// Count returns how many results have the given outcome.
func (p *Plan) Count(o Outcome) int {
	n := 0
	for _, r := range p.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// Changed reports whether any requirement differs from its declaration.
func (p *Plan) Changed() bool {
	return p.Count(OutcomeUpdated) > 0
}

// Bumper computes and applies new floors.
type Bumper struct {
	fetcher Fetcher
	opts    Options
}

// New creates a Bumper.
func New(fetcher Fetcher, opts Options) *Bumper {
	return &Bumper{fetcher: fetcher, opts: opts}
}

// Plan resolves requirements in declared order.
//
// It performs the following operations:
//   - Step 1: Validate the window before any registry access
//   - Step 2: Resolve each requirement: parse, fetch, select, combine
//   - Step 3: On failure, abort with a DependencyError, or with
//     ContinueOnFail keep the original and go on
//
// Parameters:
//   - ctx: Context for cancellation
//   - requirements: Dependency strings as declared in the manifest
//
// Returns:
//   - *Plan: Results in declared order; partial when an error is returned
//   - error: InvalidParameterError, DependencyError, PartialSuccessError
//     (ContinueOnFail with failures) or the context error
func (b *Bumper) Plan(ctx context.Context, requirements []string) (*Plan, error) {
	if err := b.opts.Window.Validate(); err != nil {
		return nil, err
	}

	now := b.opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	plan := &Plan{Results: make([]Result, 0, len(requirements))}
	var failures []error
	for i, raw := range requirements {
		if err := ctx.Err(); err != nil {
			return plan, err
		}

		res := b.resolve(ctx, raw, now)
		if res.Outcome == OutcomeFailed {
			depErr := depferrors.NewDependencyError(res.Name, res.Err)
			if !b.opts.ContinueOnFail {
				plan.Results = append(plan.Results, res)
				return plan, depErr
			}
			warnings.Warnf("%v; keeping %q", depErr, raw)
			failures = append(failures, depErr)
		}

		plan.Results = append(plan.Results, res)
		if b.opts.Progress != nil {
			b.opts.Progress(i+1, len(requirements), res)
		}
	}

	if len(failures) > 0 {
		return plan, depferrors.NewPartialSuccessError(len(requirements)-len(failures), len(failures), failures)
	}
	return plan, nil
}

// resolve computes the new requirement string for one declaration.
func (b *Bumper) resolve(ctx context.Context, raw string, now time.Time) Result {
	res := Result{Original: raw, Requirement: raw}

	req, err := manifest.ParseRequirement(raw)
	if err != nil {
		res.Name = raw
		return failed(res, err)
	}
	res.Name = req.Name
	res.Specifier = req.Specifier

	if req.IsURL() {
		res.Outcome = OutcomeSkipped
		res.Warning = fmt.Sprintf("%s: direct reference %s has no version to bump; skipping", req.Name, req.URL)
		warnings.Warnf("%s", res.Warning)
		return res
	}

	artifacts, err := b.fetcher.Artifacts(ctx, req.Name)
	if err != nil {
		return failed(res, err)
	}

	sel, err := floor.Select(history.NewPackage(req.Name, artifacts), now, b.opts.Window)
	if err != nil {
		return failed(res, err)
	}
	res.Floor = sel.Floor
	res.Reason = sel.Reason
	res.FloorDate = sel.Date

	combined, err := specifier.Combine(req.Specifier, sel.Specifier())
	if err != nil {
		return failed(res, err)
	}

	switch {
	case combined.Fallback:
		res.Outcome = OutcomeFallback
		res.Warning = fmt.Sprintf("%s: %s", req.Name, combined.Warning)
		warnings.Warnf("%s", res.Warning)
	case combined.Changed:
		res.Outcome = OutcomeUpdated
		res.Specifier = combined.Specifier
		res.Requirement = req.WithSpecifier(combined.Specifier)
	default:
		res.Outcome = OutcomeUnchanged
	}

	verbose.Printf("%s: %s -> %s (%s)", req.Name, raw, res.Requirement, res.Outcome)
	return res
}

func failed(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.Err = err
	return res
}

// Apply persists the plan.
//
// Nothing is written when no requirement changed, or when the plan holds a
// failure and the Bumper was not created with ContinueOnFail.
//
// Parameters:
//   - ctx: Context for cancellation
//   - plan: Output of Plan
//   - project: Manifest the requirements came from
//   - persister: How to write them back
//
// Returns:
//   - bool: Whether the persister was invoked
//   - error: Persister failure, or refusal to persist a failed plan
func (b *Bumper) Apply(ctx context.Context, plan *Plan, project *manifest.Project, persister manifest.Persister) (bool, error) {
	if n := plan.Count(OutcomeFailed); n > 0 && !b.opts.ContinueOnFail {
		return false, fmt.Errorf("refusing to persist: %d dependencies failed to resolve", n)
	}
	if !plan.Changed() {
		verbose.Info("no requirement changed; nothing to persist")
		return false, nil
	}
	if err := persister.Persist(ctx, project, plan.Requirements()); err != nil {
		return false, err
	}
	return true, nil
}
