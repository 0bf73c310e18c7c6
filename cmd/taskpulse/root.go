package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskpulse/internal/config"
	"github.com/sandeepkv93/taskpulse/internal/engagement"
	"github.com/sandeepkv93/taskpulse/internal/logging"
	"github.com/sandeepkv93/taskpulse/internal/model"
	"github.com/sandeepkv93/taskpulse/internal/notify"
	"github.com/sandeepkv93/taskpulse/internal/pulse"
	"github.com/sandeepkv93/taskpulse/internal/storage"
	"github.com/sandeepkv93/taskpulse/internal/update"
)

type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *storage.TaskStore
}

type rootOpts struct {
	configPath string
	dataDir    string
	backend    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "taskpulse",
		Short:        "A task list that keeps you engaged",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override data directory")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend: file, sqlite or memory")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newDoneCmd(opts),
		newRemoveCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func newApp(opts *rootOpts) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	kv, err := openKV(cfg)
	if err != nil {
		log.Warn("open storage backend failed", zap.String("backend", cfg.Backend), zap.Error(err))
		kv = storage.NewMemoryKV()
	}
	store := storage.NewTaskStore(kv, log)
	// Daily tasks sweep on every entry point, not just the TUI. The local
	// calendar day keys the sweep, so no UTC conversion here.
	if _, err := store.ApplyDailyReset(time.Now()); err != nil {
		log.Warn("daily reset failed", zap.Error(err))
	}
	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close storage failed", zap.Error(err))
	}
	_ = a.log.Sync()
}

func openKV(cfg *config.Config) (storage.KV, error) {
	switch cfg.Backend {
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.OpenSQLiteKV(filepath.Join(cfg.DataDir, "taskpulse.db"))
	case "memory":
		return storage.NewMemoryKV(), nil
	default:
		return storage.NewFileKV(filepath.Join(cfg.DataDir, "data"))
	}
}

func runTUI(opts *rootOpts) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now()
	pools, err := notify.LoadPools(a.cfg.MessagePoolPath)
	if err != nil {
		return err
	}

	schedCfg := notify.DefaultConfig()
	schedCfg.EncouragementCooldown = a.cfg.EncouragementCooldown
	schedCfg.PeriodicTick = a.cfg.PeriodicTick
	schedCfg.SettledMin = a.cfg.SettledMin
	schedCfg.MotivationDuration = a.cfg.MotivationDuration

	engine := pulse.NewEngine(8)
	engine.Start()
	defer engine.Stop()

	m := update.NewModel(update.Deps{
		Store:     a.store,
		Tracker:   engagement.NewTracker(now),
		Scheduler: notify.NewScheduler(schedCfg, pools, notify.NewRand(now.UnixNano())),
		Presenter: notify.NewPresenter(),
		Engine:    engine,
		Log:       a.log,
	})

	program := tea.NewProgram(m, tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func newAddCmd(opts *rootOpts) *cobra.Command {
	var priority string
	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			p := model.PriorityGeneral
			if priority != "" {
				p = parsePriority(priority)
				if !p.IsValid() {
					return fmt.Errorf("invalid priority %q", priority)
				}
			}
			now := time.Now()
			task, err := storage.NewTask(strings.Join(args, " "), p, now)
			if err != nil {
				return err
			}
			if err := a.store.Add(task, now); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", task.Text, task.ID[:8])
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "important, daily, secondary or general")
	return cmd
}

func newListCmd(opts *rootOpts) *cobra.Command {
	var pendingOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks grouped by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			tasks := a.store.Load()
			grouped := storage.GroupedByPriority(storage.Pending(tasks))
			for _, p := range model.Priorities() {
				bucket := grouped[p]
				if len(bucket) == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", p)
				for _, task := range bucket {
					fmt.Fprintf(cmd.OutOrStdout(), "  [ ] %s (%s)\n", task.Text, task.ID[:8])
				}
			}
			if !pendingOnly {
				done := storage.CompletedSection(tasks)
				if len(done) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Completed:")
					for _, task := range done {
						fmt.Fprintf(cmd.OutOrStdout(), "  [x] %s (%s)\n", task.Text, task.ID[:8])
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "hide completed tasks")
	return cmd
}

func newDoneCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			task, err := resolveTask(a.store, args[0])
			if err != nil {
				return err
			}
			if task.Completed {
				return fmt.Errorf("task already completed: %s", task.Text)
			}
			if err := a.store.Toggle(task.ID, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %s\n", task.Text)
			return nil
		},
	}
}

func newRemoveCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			task, err := resolveTask(a.store, args[0])
			if err != nil {
				return err
			}
			if err := a.store.Remove(task.ID, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", task.Text)
			return nil
		},
	}
}

func newExportCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export tasks and settings to a JSON backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			path := "taskpulse-backup.json"
			if len(args) == 1 {
				path = args[0]
			}
			now := time.Now()
			blob, err := a.store.ExportSnapshot(now)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, blob, 0o644); err != nil {
				return err
			}
			settings := a.store.Settings()
			settings.LastBackupAt = &now
			if err := a.store.SaveSettings(settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
			return nil
		},
	}
}

func newImportCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace tasks and settings from a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			blob, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := a.store.ImportSnapshot(blob, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d task(s)\n", len(a.store.Load()))
			return nil
		},
	}
}

func newStatsCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			stats := a.store.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\npending: %d\ncompleted: %d\n", stats.Total, stats.Pending, stats.Completed)
			for _, p := range model.Priorities() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", strings.ToLower(string(p)), stats.PerPriority[p])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "storage: %d bytes\n", stats.StorageSizeBytes)
			return nil
		},
	}
}

func parsePriority(raw string) model.Priority {
	for _, p := range model.Priorities() {
		if strings.EqualFold(raw, string(p)) {
			return p
		}
	}
	return model.Priority(raw)
}

func resolveTask(store *storage.TaskStore, prefix string) (model.Task, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return model.Task{}, fmt.Errorf("empty task id")
	}
	var matches []model.Task
	for _, task := range store.Load() {
		if strings.HasPrefix(strings.ToLower(task.ID), prefix) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("no task matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", prefix, len(matches))
	}
}
