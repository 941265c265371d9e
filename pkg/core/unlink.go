package core

import (
	"context"

	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/reconcile"
	"github.com/google/uuid"
)

// Unlink removes what link deployed for the active dots of the selected
// profiles. Hooks are not run.
func Unlink(ctx context.Context, opts Options) (*Report, error) {
	runID := uuid.NewString()
	logger := logging.WithRun("core", runID)
	done := logging.LogOperationStart(logger, string(CommandUnlink))
	defer done()

	s, err := openSession(opts)
	if err != nil {
		return nil, err
	}
	layers, err := s.registry.Layers(opts.Profiles)
	if err != nil {
		return nil, err
	}
	dots, err := s.activeDots(opts.Profiles)
	if err != nil {
		return nil, err
	}
	// Render dots are compared against their current render.
	model, err := s.model(layers)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       runID,
		Command:     CommandUnlink,
		DotfilesDir: s.paths.DotfilesRoot(),
		Profiles:    profileNames(layers),
		DryRun:      opts.DryRun,
		Warnings:    append([]string(nil), s.cfg.Warnings...),
	}

	rec := reconcile.New(s.fs, s.paths, model, reconcile.Options{DryRun: opts.DryRun})
	for _, dot := range dots {
		report.Dots = append(report.Dots, DotResult{Outcome: rec.Unlink(dot)})
	}

	logger.Info().Int("removed", report.Changes()).Msg("Unlink finished")
	return report, nil
}
