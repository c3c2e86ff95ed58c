package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/sampling"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "KAHANMC_"

const (
	ModeIntegrate = "integrate"
	ModeKahan     = "kahan"

	PrecisionFloat32 = "float32"
	PrecisionFloat64 = "float64"

	// AllIntegrands runs every catalog entry concurrently.
	AllIntegrands = "all"
)

// Defaults.
const (
	DefaultMaxCalls     = 10_000_000
	DefaultSeed         = 42
	DefaultTimeout      = 5 * time.Minute
	DefaultPollInterval = time.Second
	DefaultPublishEvery = 1024
	DefaultLogLevel     = "warn"
)

// AppConfig is the fully resolved run configuration.
type AppConfig struct {
	Mode      string
	Integrand string
	Precision string
	// TargetError overrides the integrand's own error goal when non-zero.
	TargetError  float64
	MaxCalls     int64
	MinCalls     uint64
	Seed         uint64
	Timeout      time.Duration
	PollInterval time.Duration
	PublishEvery uint64
	TUI          bool
	Quiet        bool
	Verbose      bool
	NoColor      bool
	LogLevel     string
	MetricsAddr  string
}

// Default returns the configuration used when nothing is overridden.
func Default() AppConfig {
	return AppConfig{
		Mode:         ModeIntegrate,
		Integrand:    AllIntegrands,
		Precision:    PrecisionFloat64,
		MaxCalls:     DefaultMaxCalls,
		MinCalls:     2,
		Seed:         DefaultSeed,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		PublishEvery: DefaultPublishEvery,
		LogLevel:     DefaultLogLevel,
	}
}

// Integrands returns the catalog names selected by the configuration.
func (c AppConfig) Integrands() []string {
	if c.Integrand == AllIntegrands {
		return sampling.Names()
	}
	return []string{c.Integrand}
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Usage and validation errors are written to errorWriter. A --help request
// returns flag.ErrHelp.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [options]\n\n", programName)
		fmt.Fprintln(errorWriter, "Estimates integrals with a compensated running mean and reports progress while the job runs.")
		fmt.Fprintln(errorWriter, "\nOptions:")
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEvery option can also be set through %s<NAME> environment variables, e.g. %sTARGET_ERROR=1e-4.\n", EnvPrefix, EnvPrefix)
	}

	config := Default()
	fs.StringVar(&config.Mode, "mode", config.Mode, "Run mode: 'integrate' (Monte Carlo integrands) or 'kahan' (adversarial mean demo).")
	fs.StringVar(&config.Integrand, "integrand", config.Integrand, fmt.Sprintf("Integrand to estimate: %s or '%s'.", strings.Join(sampling.Names(), ", "), AllIntegrands))
	fs.StringVar(&config.Precision, "precision", config.Precision, "Floating-point precision of the estimator: 'float32' or 'float64'.")
	fs.Float64Var(&config.TargetError, "target-error", config.TargetError, "Stop once the error estimate reaches this value (0 uses each integrand's goal).")
	fs.Int64Var(&config.MaxCalls, "max-calls", config.MaxCalls, "Maximum number of integrand evaluations per job.")
	fs.Uint64Var(&config.MinCalls, "min-calls", config.MinCalls, "Observations required before the error target is checked.")
	fs.Uint64Var(&config.Seed, "seed", config.Seed, "Seed of the random point generator.")
	fs.DurationVar(&config.Timeout, "timeout", config.Timeout, "Maximum wall time before all jobs are cancelled.")
	fs.DurationVar(&config.PollInterval, "poll-interval", config.PollInterval, "How often the progress display polls each job.")
	fs.Uint64Var(&config.PublishEvery, "publish-every", config.PublishEvery, "Publish a progress snapshot every N observations.")
	fs.BoolVar(&config.TUI, "tui", config.TUI, "Show the interactive dashboard.")
	fs.BoolVar(&config.Quiet, "quiet", config.Quiet, "Print only the final estimates.")
	fs.BoolVar(&config.Quiet, "q", config.Quiet, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", config.Verbose, "Print the full result table with calls and durations.")
	fs.BoolVar(&config.Verbose, "v", config.Verbose, "Shorthand for --verbose.")
	fs.BoolVar(&config.NoColor, "no-color", config.NoColor, "Disable colored output.")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: trace, debug, info, warn, error, disabled.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", config.MetricsAddr, "Serve Prometheus metrics on this address (e.g. ':9090').")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		err := apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		fmt.Fprintln(errorWriter, err)
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)
	config.normalize()

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, err)
		return AppConfig{}, err
	}
	return config, nil
}

func (c *AppConfig) normalize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Integrand = strings.ToLower(strings.TrimSpace(c.Integrand))
	c.Precision = strings.ToLower(strings.TrimSpace(c.Precision))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate checks the configuration for values no job can run with.
func (c AppConfig) Validate() error {
	switch c.Mode {
	case ModeIntegrate, ModeKahan:
	default:
		return apperrors.NewConfigError("unknown mode %q (want %q or %q)", c.Mode, ModeIntegrate, ModeKahan)
	}
	if c.Integrand != AllIntegrands && !slices.Contains(sampling.Names(), c.Integrand) {
		return apperrors.NewConfigError("unknown integrand %q (available: %s, %s)", c.Integrand, strings.Join(sampling.Names(), ", "), AllIntegrands)
	}
	switch c.Precision {
	case PrecisionFloat32, PrecisionFloat64:
	default:
		return apperrors.NewConfigError("unknown precision %q (want %q or %q)", c.Precision, PrecisionFloat32, PrecisionFloat64)
	}
	if c.TargetError < 0 || math.IsNaN(c.TargetError) || math.IsInf(c.TargetError, 0) {
		return apperrors.NewConfigError("target error must be a non-negative finite number, got %g", c.TargetError)
	}
	if c.MaxCalls <= 0 {
		return apperrors.NewConfigError("max calls must be greater than zero, got %d", c.MaxCalls)
	}
	if c.MinCalls < 2 {
		return apperrors.NewConfigError("min calls must be at least 2, got %d", c.MinCalls)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return apperrors.NewConfigError("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.PublishEvery == 0 {
		return apperrors.NewConfigError("publish-every must be at least 1")
	}
	if c.TUI && c.Quiet {
		return apperrors.NewConfigError("--tui and --quiet cannot be combined")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	return nil
}
