package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow/internal/config"
	"github.com/BuzzLyutic/taskflow/internal/dispatch"
	"github.com/BuzzLyutic/taskflow/internal/gateway"
	"github.com/BuzzLyutic/taskflow/internal/notify"
	"github.com/BuzzLyutic/taskflow/internal/service"
	"github.com/BuzzLyutic/taskflow/internal/session"
)

var (
	ErrSessionExpired = errors.New("session expired, please log in")
	ErrLoginRequired  = errors.New("not logged in, run `taskflow login` first")
)

// reportedError is a failure already shown to the user as a notification.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

type rootFlags struct {
	apiURL      string
	configPath  string
	sessionPath string
	verbose     bool
}

// app holds everything a command needs. It is built once per invocation in
// the root PersistentPreRunE.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	session *session.Session
	api     *gateway.Client
	auth    *session.AuthClient
	toasts  *notify.Center
	loop    *dispatch.Loop
	board   *service.BoardService

	out         io.Writer
	errOut      io.Writer
	expired     atomic.Bool
	interactive atomic.Bool
}

func newRootCmd() (*cobra.Command, *app) {
	flags := &rootFlags{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - a kanban board for your tasks",
		Long: `TaskFlow keeps your tasks on a three column board (To Do, In Progress, Done)
backed by the TaskFlow API.

Log in once, then list, add, edit, move and delete tasks from the command line
or run "taskflow ui" for the interactive board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "TaskFlow API base URL (default "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&flags.sessionPath, "session", "", "session file")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newBoardCmd(a),
		newAddCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newMoveCmd(a),
		newUICmd(a),
	)
	return rootCmd, a
}

// Execute runs the command line and prints the error, if any, the way the
// user should see it.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd, a := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defer a.close()

	err := rootCmd.ExecuteContext(ctx)
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) && !errors.Is(err, ErrSessionExpired) {
		fmt.Fprintln(errOut, "Error:", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.sessionPath != "" {
		cfg.SessionFile = flags.sessionPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()

	a.logger, err = newLogger(cfg, flags.verbose, cmd.Name() == "ui")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a.session, err = session.Open(cfg.APIURL, cfg.SessionFile, a.logger.Named("session"))
	if err != nil {
		return err
	}
	a.api, err = gateway.New(gateway.Options{
		BaseURL: cfg.APIURL,
		Jar:     a.session,
		Timeout: cfg.RequestTimeout,
		Logger:  a.logger.Named("gateway"),
	})
	if err != nil {
		return err
	}
	a.auth = session.NewAuthClient(a.api, a.session, a.logger.Named("auth"))
	a.toasts = notify.NewCenter(a.logger.Named("notify"))

	a.loop = dispatch.NewLoop(a.logger.Named("dispatch"), 64)
	a.loop.Start(cmd.Context())

	guard := session.NewGuard(a.session, session.NavigatorFunc(a.toLogin), a.logger.Named("guard"))
	a.board = service.NewBoardService(service.Options{
		API:      a.api,
		Loop:     a.loop,
		Guard:    guard,
		Notifier: a.toasts,
		Logger:   a.logger.Named("board"),
	})
	return nil
}

func (a *app) close() {
	if a.loop != nil {
		a.loop.Stop()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// toLogin is where the guard sends the user after a 401. The session file is
// already gone by the time it runs. The interactive board reports it itself
// once the screen is restored.
func (a *app) toLogin() {
	if a.expired.CompareAndSwap(false, true) && !a.interactive.Load() {
		fmt.Fprintln(a.errOut, ErrSessionExpired.Error())
	}
}

func (a *app) requireLogin() error {
	if !a.session.Active() {
		return ErrLoginRequired
	}
	return nil
}

func newLogger(cfg config.Config, verbose, interactive bool) (*zap.Logger, error) {
	if interactive && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = lvl
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}
