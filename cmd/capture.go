package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/nicofix/internal/capture"
	"github.com/desertthunder/nicofix/internal/fixtures"
	"github.com/desertthunder/nicofix/internal/formatter"
	"github.com/desertthunder/nicofix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Capture logs in with the session token and writes a fixture for every resolved target.
//
// Configuration problems (missing token, unknown category or operation) are reported
// before the client is created, so no request is sent and no file is written.
func (r *Runner) Capture(ctx context.Context, cmd *cli.Command) error {
	shared.SetLogLevel(r.logger, shared.Verbosity(cmd.Bool("verbose")))

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	targets, err := capture.ResolveTargets(config, nil)
	if err != nil {
		return err
	}

	client, err := r.newClient(config, r.logger)
	if err != nil {
		return err
	}

	engine := capture.NewEngine(client, capture.EngineOpts{
		FixturesDir: config.Capture.FixturesDir,
		MappingDir:  config.Capture.MappingDir,
		Limit:       config.Capture.Limit,
		Delay:       config.Capture.Delay,
		FailFast:    config.Capture.FailFast,
		Raw:         config.Capture.Raw,
		Rules:       capture.RulesFromConfig(config.Stabilize),
		Logger:      r.logger,
	})

	r.logger.Info("starting capture", "targets", len(targets), "fixtures", config.Capture.FixturesDir)
	r.writePlain("Capturing %d fixtures into %s\n\n", len(targets), config.Capture.FixturesDir)

	progressCh := make(chan capture.ProgressUpdate, capture.ProgressBuffer(len(targets)))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writeProgress(update)
		}
	}()

	result, err := engine.Run(ctx, targets, progressCh)
	close(progressCh)
	<-done

	if result != nil {
		r.writeSummary(result)
	}
	if err != nil {
		return err
	}
	return result.Err()
}

func (r *Runner) writeProgress(update capture.ProgressUpdate) {
	styles := fixtures.Styles()
	switch update.Phase {
	case capture.Login:
		r.writePlain("🔑 %s\n", update.Message)
	case capture.CaptureTarget:
		r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
	case capture.TargetSaved:
		r.writePlain("   %s %s\n", styles.OK.Render("✓"), update.Message)
	case capture.TargetFailed:
		r.writePlain("   %s %s\n", styles.Err.Render("✗"), update.Message)
	case capture.WriteMapping:
		r.writePlain("\n📝 %s\n", update.Message)
	}
}

func (r *Runner) writeSummary(result *capture.RunResult) {
	r.writePlain("\n")
	r.writePlainHeader("Capture Summary")
	if result.User != nil {
		r.writePlain("Account: %s (%d)\n", result.User.Nickname, result.User.ID)
	}
	r.writePlain("Saved: %d  Failed: %d  Skipped: %d\n\n", result.Saved, result.Failed, result.Skipped)
	r.writePlain("%s\n", result.Summary.Render())

	if result.MappingPath != "" && len(result.Mapping) > 0 {
		r.writePlain("\nType mapping: %s (%d entries)\n", result.MappingPath, len(result.Mapping))
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}

	failures := result.Failures()
	if len(failures) == 0 {
		return
	}

	styles := fixtures.Styles()
	r.writePlain("\n%s\n", styles.Err.Render(fmt.Sprintf("Failed to capture %d targets:", len(failures))))
	for _, f := range failures {
		r.writePlain("  - %s via %s: %v\n", f.Target.Key(), f.Target.Operation, f.Err)
		if hint := describeError(f.Err); hint != "" {
			r.writePlain("    %s\n", styles.Help.Render(hint))
		}
	}
}

// Targets prints the resolved target list. It never creates a client.
func (r *Runner) Targets(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	targets, err := capture.ResolveTargets(config, nil)
	if err != nil {
		return err
	}

	data, err := formatter.Targets(targets, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// Report prints the manifest written by the last capture run.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	dir := config.Capture.MappingDir
	if dir == "" {
		dir = filepath.Dir(config.Capture.FixturesDir)
	}

	manifest, err := fixtures.ReadManifest(filepath.Join(dir, fixtures.ManifestFile))
	if err != nil {
		return err
	}
	return r.writeBytes(formatter.ManifestToMarkdown(manifest))
}

// Init writes the embedded example config. It refuses to overwrite an existing file.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		path = cmd.String("config")
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Example configuration written to %s\n", path)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. export %s='<user_session cookie of a test account>'\n", shared.DefaultSessionEnv)
	r.writePlain("2. Run 'nicofix targets -c %s' to review the capture list\n", path)
	r.writePlain("3. Run 'nicofix -c %s' to capture fixtures\n", path)
	return nil
}
