// Package cli wires configuration, storage and services into the cobra
// command tree. Without a subcommand it starts the terminal UI.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"focusdeck/app"
	"focusdeck/config"
	"focusdeck/logging"
	"focusdeck/media"
	"focusdeck/media/mpv"
	"focusdeck/prefs"
	"focusdeck/store"
	"focusdeck/tui"
)

// App holds the persistent flags.
type App struct {
	ConfigPath string
	DataDir    string
	Storage    string
	PrefsPath  string
}

func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:           "focusdeck",
		Short:         "Focus timer, todos, kanban board and journal in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive UI
  focusdeck

  # Scriptable commands
  focusdeck todo add "Buy milk"
  focusdeck todo ls --group current
  focusdeck board add todo "Write report"
  focusdeck export -o today.md
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}

	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&a.DataDir, "data-dir", "", "Directory holding the saved state")
	cmd.PersistentFlags().StringVar(&a.Storage, "storage", "", "Storage backend (json|sqlite)")
	cmd.PersistentFlags().StringVar(&a.PrefsPath, "prefs", "", "Preferences file (default "+prefs.DefaultPath()+")")

	cmd.AddCommand(newTodoCmd(a))
	cmd.AddCommand(newBoardCmd(a))
	cmd.AddCommand(newPomodoroCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newExportCmd(a))
	return cmd
}

// workspace is one opened data directory with its services subscribed to
// the autosaver.
type workspace struct {
	cfg     config.Config
	log     *zap.Logger
	backend store.Backend
	svc     *app.Service
	board   *app.BoardService
	saver   *store.Autosaver
	reports []store.LoadReport
	unsub   []func()
}

func openWorkspace(a *App) (*workspace, error) {
	cfg, err := config.LoadWith(a.ConfigPath, config.Overrides{DataDir: a.DataDir, Storage: a.Storage})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	var backend store.Backend
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := store.OpenSQLite(cfg.SQLitePath())
		if err != nil {
			_ = log.Sync()
			return nil, err
		}
		backend = db
	default:
		backend = store.NewFileBackend(cfg.DataDir)
	}

	state, stateReport := store.LoadState(backend)
	board, boardReport := store.LoadBoard(backend)
	w := &workspace{
		cfg:     cfg,
		log:     log,
		backend: backend,
		svc:     app.NewService(state),
		board:   app.NewBoardService(board),
		saver:   store.NewAutosaver(backend, log),
		reports: []store.LoadReport{stateReport, boardReport},
	}
	for _, r := range w.reports {
		fields := []zap.Field{zap.String("key", r.Key), zap.String("source", string(r.Source))}
		if r.Backup != "" {
			fields = append(fields, zap.String("backup", r.Backup))
		}
		if r.Err != nil {
			log.Warn("load fell back", append(fields, zap.Error(r.Err))...)
			continue
		}
		log.Info("loaded", fields...)
	}
	w.unsub = append(w.unsub, w.svc.Subscribe(w.saver.State), w.board.Subscribe(w.saver.Board))
	return w, nil
}

// status joins the notable load messages for the status line.
func (w *workspace) status() string {
	parts := make([]string, 0, len(w.reports))
	for _, r := range w.reports {
		if msg := r.Message(); msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

// saved returns the last write failure, if any.
func (w *workspace) saved() error {
	if err := w.saver.Err(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (w *workspace) Close() error {
	for _, fn := range w.unsub {
		fn()
	}
	err := w.backend.Close()
	_ = w.log.Sync()
	return err
}

func runTUI(cmd *cobra.Command, a *App) error {
	w, err := openWorkspace(a)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	p, _ := prefs.Load(a.PrefsPath)
	controller := media.NewController(startPlayer(cmd, w))
	defer func() {
		if err := controller.Close(); err != nil {
			w.log.Warn("close player", zap.Error(err))
		}
	}()

	err = tui.Run(tui.Options{
		Context:   cmd.Context(),
		Service:   w.svc,
		Board:     w.board,
		Player:    controller,
		Saver:     w.saver,
		Log:       w.log,
		Status:    w.status(),
		Theme:     p.Theme,
		PrefsPath: a.PrefsPath,
		Mouse:     w.cfg.Mouse,
	})
	return errors.Join(err, w.saved())
}

// startPlayer launches the configured player. Without one the UI keeps the
// playlist but transport keys report not ready.
func startPlayer(cmd *cobra.Command, w *workspace) media.Player {
	if w.cfg.Player == "" {
		return nil
	}
	p, err := mpv.Start(cmd.Context(), mpv.Options{
		Binary:     w.cfg.Player,
		SocketPath: w.cfg.SocketPath(),
		Log:        w.log.Named("mpv"),
	})
	if err != nil {
		w.log.Warn("player unavailable", zap.String("binary", w.cfg.Player), zap.Error(err))
		return nil
	}
	return p
}
