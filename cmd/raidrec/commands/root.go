// Package commands implements the raidrec command line.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/daemon"
	"github.com/livp123/raidrec/internal/runtime"
	"github.com/livp123/raidrec/internal/utils/logger"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the recorder and the web GUI.
// NewRootCmd 构建命令树，不带子命令运行时启动录制器和 Web 界面。
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "raidrec",
		Short: "Record WoW raid encounters and Mythic+ runs with OBS",
		// Short: 使用 OBS 自动录制魔兽世界团本首领战和大秘境
		Long: `raidrec watches the World of Warcraft combat log, starts and stops
OBS recording around boss encounters and Mythic+ runs, renames the
resulting videos and serves a small web GUI to manage them.
raidrec 监视魔兽世界战斗日志，在首领战和大秘境前后控制 OBS 录制，
重命名录像文件，并提供一个用于管理的 Web 界面。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logging settings come from the config file when it is readable
			// 配置文件可读时从中获取日志设置
			lc := config.Default().Logging
			if cfg, err := config.Load(configPath()); err == nil {
				lc = cfg.Logging
			}
			if runtime.Debug {
				lc.Level = "debug"
			}
			logger.Init(lc)

			// Inject logger into context
			// 将 Logger 注入 Context
			cmd.SetContext(logger.WithContext(cmd.Context(), logger.Get(nil)))
		},
		RunE: runDaemon,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&runtime.ConfigPath, "config", config.DefaultConfigPath, "Path to config file")
	flags.BoolVar(&runtime.Debug, "debug", false, "Enable debug mode")

	root.Flags().StringVar(&runtime.Host, "host", config.DefaultWebHost, "Web server host")
	root.Flags().IntVar(&runtime.Port, "port", config.DefaultWebPort, "Web server port")
	root.Flags().BoolVar(&runtime.NoRecorder, "no-recorder", false, "Start web GUI only, without recorder")

	root.AddCommand(newConfigCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newRecordingsCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newVersionCmd())

	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

func configPath() string {
	if runtime.ConfigPath == "" {
		return config.DefaultConfigPath
	}
	return runtime.ConfigPath
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log := logger.Get(cmd.Context())
	defer func() { _ = logger.Sync() }()

	mgr := config.NewManager(configPath())
	created, err := mgr.Load()
	if err != nil {
		return err
	}
	if created {
		log.Infof("[DAEMON] 📝 Wrote default configuration to %s, edit it or use the web GUI", mgr.Path())
	}

	ctx, cancel := daemon.WithSignals(cmd.Context(), mgr)
	defer cancel()

	return daemon.Run(ctx, &daemon.Options{
		Config:     mgr,
		Host:       runtime.Host,
		Port:       runtime.Port,
		NoRecorder: runtime.NoRecorder,
	})
}

// loadConfig reads the config file for the offline commands. A missing file
// yields the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if errors.Is(err, rrerrors.ErrConfigNotFound) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s not found, using defaults\n", configPath())
		return config.Default(), nil
	}
	return cfg, err
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
