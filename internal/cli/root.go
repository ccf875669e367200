// Package cli implements the avrex command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/usestring/avrex/internal/config"
	"github.com/usestring/avrex/internal/logging"
	"github.com/usestring/avrex/pkg/avrex"
)

// App holds state shared by all commands.
type App struct {
	cfg *config.Config

	username string
	password string
	loginURL string
	logLevel string
	logFile  string

	closeLog func() error
}

// New creates the command tree backed by cfg.
func New(cfg *config.Config) (*App, *cobra.Command) {
	app := &App{cfg: cfg, closeLog: func() error { return nil }}

	root := &cobra.Command{
		Use:   "avrex",
		Short: "Export reports from the AssociationVoice portal",
		Long: `avrex logs in to the AssociationVoice portal and downloads report exports.

Credentials are taken from the flags, or from AV_USERNAME, AV_PASSWORD and
AV_URL (the login page URL) when a flag is not given.

  avrex reports                                 List available reports
  avrex formats                                 List export formats
  avrex download-report 3 users.csv             Download report 3 as CSV
  avrex download-report "Site Access" out.xml --date-range 2020-01-01,2020-02-01`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setupLogging,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.username, "username", "", "portal user name (env AV_USERNAME)")
	flags.StringVar(&app.password, "password", "", "portal password (env AV_PASSWORD)")
	flags.StringVar(&app.loginURL, "url", "", "URL to login page (env AV_URL)")
	flags.StringVar(&app.logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.StringVar(&app.logFile, "log-file", "", "write logs to a rotated file instead of stderr (env LOG_FILE)")

	root.AddCommand(app.reportsCommand())
	root.AddCommand(app.formatsCommand())
	root.AddCommand(app.downloadCommand())

	return app, root
}

// Close flushes and closes the log output.
func (a *App) Close() error {
	return a.closeLog()
}

func (a *App) setupLogging(cmd *cobra.Command, _ []string) error {
	lc := logging.Config{
		Level:      a.cfg.LogLevel,
		FilePath:   a.cfg.LogFile,
		MaxSizeMB:  a.cfg.LogMaxSizeMB,
		MaxBackups: a.cfg.LogMaxBackups,
		MaxAgeDays: a.cfg.LogMaxAgeDays,
		Compress:   a.cfg.LogCompress,
	}
	if a.logLevel != "" {
		lc.Level = a.logLevel
	}
	if a.logFile != "" {
		lc.FilePath = a.logFile
	}

	cleanup, err := logging.Setup(lc, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.closeLog = cleanup
	return nil
}

// credentials merges flags over the loaded configuration. Anything still empty
// is resolved from the environment by avrex.New.
func (a *App) credentials() avrex.Credentials {
	creds := avrex.Credentials{
		Username: a.cfg.Username,
		Password: a.cfg.Password,
		LoginURL: a.cfg.LoginURL,
	}
	if a.username != "" {
		creds.Username = a.username
	}
	if a.password != "" {
		creds.Password = a.password
	}
	if a.loginURL != "" {
		creds.LoginURL = a.loginURL
	}
	return creds
}

func (a *App) login(ctx context.Context) (*avrex.Client, error) {
	opts := []avrex.Option{avrex.WithTimeout(a.cfg.HTTPClientTimeout)}
	if a.cfg.UserAgent != "" {
		opts = append(opts, avrex.WithUserAgent(a.cfg.UserAgent))
	}
	return avrex.New(ctx, a.credentials(), opts...)
}
