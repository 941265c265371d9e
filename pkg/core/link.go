package core

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/hooks"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/reconcile"
	"github.com/arthur-debert/dotlink/pkg/registry"
	"github.com/google/uuid"
)

// Link deploys the active dots of the selected profiles. The returned error
// is a configuration error, in which case nothing was changed. Per-dot
// failures are in the report.
func Link(ctx context.Context, opts Options) (*Report, error) {
	return run(ctx, CommandLink, opts)
}

// Status reports what Link would do, without changing anything or running
// hooks.
func Status(ctx context.Context, opts Options) (*Report, error) {
	opts.DryRun = true
	opts.NoHooks = true
	opts.Prune = false
	return run(ctx, CommandStatus, opts)
}

func run(ctx context.Context, command Command, opts Options) (*Report, error) {
	runID := uuid.NewString()
	logger := logging.WithRun("core", runID)
	done := logging.LogOperationStart(logger, string(command))
	defer done()

	s, err := openSession(opts)
	if err != nil {
		logger.Error().Err(err).Msg("Configuration rejected")
		return nil, err
	}

	layers, err := s.registry.Layers(opts.Profiles)
	if err != nil {
		return nil, err
	}
	dots, err := s.activeDots(opts.Profiles)
	if err != nil {
		logger.Error().Err(err).Msg("Configuration rejected")
		return nil, err
	}
	model, err := s.model(layers)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       runID,
		Command:     command,
		DotfilesDir: s.paths.DotfilesRoot(),
		Profiles:    profileNames(layers),
		DryRun:      opts.DryRun,
		Warnings:    append([]string(nil), s.cfg.Warnings...),
	}

	logger.Info().
		Strs("profiles", report.Profiles).
		Int("dots", len(dots)).
		Int("variables", model.Len()).
		Bool("dry_run", opts.DryRun).
		Msg("Run started")

	rec := reconcile.New(s.fs, s.paths, model, reconcile.Options{DryRun: opts.DryRun, Force: opts.Force})
	runner := hooks.New(s.paths.DotfilesRoot(),
		hooks.WithOutput(opts.HookStdout, opts.HookStderr),
		hooks.WithTimeout(opts.HookTimeout),
		hooks.WithDryRun(opts.DryRun),
	)
	scope := hooks.Scope{Profiles: report.Profiles}

	if !opts.NoHooks {
		scope.Phase = hooks.PhasePre
		for _, layer := range layers {
			report.PreHooks = append(report.PreHooks, runner.RunAll(ctx, layer.Prehooks, scope)...)
		}
	}

	for _, dot := range dots {
		result := DotResult{Outcome: rec.Apply(dot)}
		if !opts.NoHooks && result.Status != reconcile.StatusSkipped {
			dotScope := scope
			dotScope.Phase = hooks.PhaseDot
			dotScope.Dot = dot.Label()
			dotScope.Target = result.Target
			result.Hooks = runner.RunAll(ctx, dot.Hooks, dotScope)
		}
		report.Dots = append(report.Dots, result)
	}

	if opts.Prune {
		report.Pruned = prune(rec, s.registry.AllDots(), dots)
	}

	if !opts.NoHooks {
		scope.Phase = hooks.PhasePost
		for _, layer := range layers {
			report.PostHooks = append(report.PostHooks, runner.RunAll(ctx, layer.Posthooks, scope)...)
		}
	}

	logger.Info().
		Int("changes", report.Changes()).
		Int("failed", report.FailedDots()).
		Int("hook_failures", len(report.HookFailures())).
		Msg("Run finished")

	return report, nil
}

// prune removes the links of declared dots that are not active. A target
// claimed by an active dot is never pruned.
func prune(rec *reconcile.Reconciler, all, active []registry.Dot) []reconcile.Outcome {
	keep := make(map[string]bool, len(active))
	for _, d := range active {
		keep[filepath.Clean(d.Target)] = true
	}

	var pruned []reconcile.Outcome
	for _, d := range all {
		if d.Target == "" || d.Source == "" {
			continue
		}
		target := filepath.Clean(d.Target)
		if keep[target] {
			continue
		}
		keep[target] = true

		out := rec.Prune(d)
		if out.Changed() || out.Failed() {
			pruned = append(pruned, out)
		}
	}
	return pruned
}
