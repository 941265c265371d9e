package hooks

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Environment variables exported to every hook
const (
	EnvRoot     = "DOTLINK_ROOT"
	EnvDot      = "DOTLINK_DOT"
	EnvTarget   = "DOTLINK_TARGET"
	EnvProfiles = "DOTLINK_PROFILES"
	EnvPhase    = "DOTLINK_PHASE"
)

// Phase says when a hook runs.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhaseDot  Phase = "dot"
	PhasePost Phase = "post"
)

// Scope describes what a hook is attached to.
type Scope struct {
	Phase    Phase
	Dot      string
	Target   string
	Profiles []string
}

// Result is the outcome of one hook command.
type Result struct {
	Command  string        `json:"command"`
	Phase    Phase         `json:"phase"`
	Dot      string        `json:"dot,omitempty"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Duration time.Duration `json:"duration"`
	Skipped  bool          `json:"skipped,omitempty"`
	Err      error         `json:"-"`
}

// Failed reports whether the hook did not complete successfully.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Runner executes hook commands.
type Runner struct {
	dir     string
	env     []string
	stdout  io.Writer
	stderr  io.Writer
	timeout time.Duration
	dryRun  bool
	logger  zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput mirrors hook output to the given writers while it is captured.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithTimeout bounds each command. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithDryRun reports commands as skipped instead of running them.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithEnv replaces the inherited environment.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// New creates a runner whose hooks execute in dir, the repository root.
func New(dir string, opts ...Option) *Runner {
	r := &Runner{
		dir:    dir,
		env:    os.Environ(),
		logger: logging.GetLogger("hooks"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunAll runs commands in order. A failing command does not stop the ones
// after it.
func (r *Runner) RunAll(ctx context.Context, commands []string, scope Scope) []Result {
	results := make([]Result, 0, len(commands))
	for _, command := range commands {
		results = append(results, r.Run(ctx, command, scope))
	}
	return results
}

// Run executes a single command.
func (r *Runner) Run(ctx context.Context, command string, scope Scope) Result {
	result := Result{Command: command, Phase: scope.Phase, Dot: scope.Dot}
	logger := r.logger.With().
		Str("hook", command).
		Str("phase", string(scope.Phase)).
		Str("dot", scope.Dot).
		Logger()

	if r.dryRun {
		result.Skipped = true
		logger.Debug().Msg("Hook skipped (dry run)")
		return result
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "hook")
	if err != nil {
		result.ExitCode = 1
		result.Err = errors.Wrapf(err, errors.ErrHookFailure, "failed to parse hook %q", command)
		logger.Warn().Err(err).Msg("Hook could not be parsed")
		return result
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Dir(r.dir),
		interp.Env(expand.ListEnviron(r.environ(scope)...)),
		interp.StdIO(nil, tee(&stdout, r.stdout), tee(&stderr, r.stderr)),
	)
	if err != nil {
		result.ExitCode = 1
		result.Err = errors.Wrapf(err, errors.ErrHookFailure, "failed to start hook %q", command)
		return result
	}

	start := time.Now()
	err = runner.Run(ctx, prog)
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		var exitStatus interp.ExitStatus
		switch {
		case ctx.Err() != nil:
			result.ExitCode = 1
			result.Err = errors.Wrapf(ctx.Err(), errors.ErrHookFailure, "hook %q did not finish", command)
		case stderrors.As(err, &exitStatus):
			result.ExitCode = int(exitStatus)
			result.Err = errors.Newf(errors.ErrHookFailure, "hook %q exited with status %d", command, result.ExitCode).
				WithDetail("exit_code", result.ExitCode)
		default:
			result.ExitCode = 1
			result.Err = errors.Wrapf(err, errors.ErrHookFailure, "hook %q failed", command)
		}
		logger.Warn().
			Int("exit_code", result.ExitCode).
			Str("stderr", strings.TrimSpace(result.Stderr)).
			Err(result.Err).
			Msg("Hook failed")
		return result
	}

	logger.Debug().Dur("duration", result.Duration).Msg("Hook finished")
	return result
}

func (r *Runner) environ(scope Scope) []string {
	env := make([]string, 0, len(r.env)+5)
	env = append(env, r.env...)
	env = append(env,
		EnvRoot+"="+r.dir,
		EnvPhase+"="+string(scope.Phase),
		EnvDot+"="+scope.Dot,
		EnvTarget+"="+scope.Target,
		EnvProfiles+"="+strings.Join(scope.Profiles, ","),
	)
	return env
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
