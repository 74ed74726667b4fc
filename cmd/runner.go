package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
	"github.com/urfave/cli/v3"
)

// ClientFactory builds the niconico client once the config is validated.
type ClientFactory func(cfg *shared.Config, logger *log.Logger) (nicovideo.Client, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger    *log.Logger
	output    io.Writer
	lookupEnv func(string) (string, bool)
	newClient ClientFactory
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger    *log.Logger
	Output    io.Writer
	LookupEnv func(string) (string, bool) // default: os.LookupEnv
	NewClient ClientFactory               // default: live HTTP client
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.NewClient == nil {
		opts.NewClient = newHTTPClient
	}

	return &Runner{
		logger:    opts.Logger,
		output:    opts.Output,
		lookupEnv: opts.LookupEnv,
		newClient: opts.NewClient,
	}
}

func newHTTPClient(cfg *shared.Config, logger *log.Logger) (nicovideo.Client, error) {
	client, err := nicovideo.NewHTTPClient(nicovideo.ClientOpts{
		Session:   cfg.Session.Token,
		NvapiURL:  cfg.Client.NvapiURL,
		WatchURL:  cfg.Client.WatchURL,
		Timeout:   cfg.Client.Timeout,
		UserAgent: cfg.Client.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// loadConfig reads the config file named by --config and applies command line overrides.
//
// A missing file is not an error: the embedded defaults are used instead.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")

	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
		r.logger.Debug("loaded config", "path", path)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if cmd.IsSet("fixtures-dir") {
		config.Capture.FixturesDir = cmd.String("fixtures-dir")
	}
	if cmd.IsSet("mapping") {
		config.Capture.MappingDir = cmd.String("mapping")
	}
	if cmd.IsSet("limit") {
		config.Capture.Limit = cmd.Int("limit")
	}
	if cmd.IsSet("delay") {
		config.Capture.Delay = cmd.Duration("delay")
	}
	if cmd.IsSet("fail-fast") {
		config.Capture.FailFast = cmd.Bool("fail-fast")
	}
	if cmd.IsSet("raw") {
		config.Capture.Raw = cmd.Bool("raw")
	}
	if categories := cmd.StringSlice("category"); len(categories) > 0 {
		config.Capture.Categories = categories
	}

	config.ApplyEnv(r.lookupEnv)
	return config, nil
}

// describeError returns a hint for the user on how to fix err, or "" when there is none.
func describeError(err error) string {
	switch {
	case errors.Is(err, shared.ErrMissingSession):
		return "Copy the user_session cookie of a dedicated test account into the environment variable named above."
	case errors.Is(err, shared.ErrAuthFailed):
		return "The service rejected the session token. Log in again and export a fresh user_session cookie."
	case errors.Is(err, shared.ErrRateLimited):
		return "The service is rate limiting requests. Wait a while or raise --delay."
	case errors.Is(err, shared.ErrFilesystem):
		return "Check that the fixtures and mapping directories are writable."
	case errors.Is(err, shared.ErrUnknownCategory), errors.Is(err, shared.ErrUnknownOperation), errors.Is(err, shared.ErrInvalidConfig):
		return "Check the config file. 'nicofix targets' shows the resolved target list without calling the API."
	case errors.Is(err, shared.ErrCaptureIncomplete):
		return "Some fixtures were not captured. See the failures above; rerun with --category to retry a subset."
	default:
		return ""
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	rule := strings.Repeat("═", 39)
	r.writePlain("%s\n%s\n%s\n", rule, title, rule)
}
