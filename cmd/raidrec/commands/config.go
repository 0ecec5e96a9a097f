package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/livp123/raidrec/internal/config"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

const passwordMask = "********"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, create or validate the configuration file",
		// Short: 查看、创建或校验配置文件
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		format string
		reveal bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults and RAIDREC_* environment
overrides are applied. The OBS password is masked unless --reveal is set.
打印应用默认值和 RAIDREC_* 环境变量覆盖后的配置。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !reveal && cfg.OBS.Password != "" {
				cfg.OBS.Password = passwordMask
			}

			var data []byte
			switch format {
			case "":
				data, err = config.Encode(cfg, config.FormatOf(configPath()))
			case "json":
				data, err = json.MarshalIndent(cfg, "", "  ")
				data = append(data, '\n')
			case string(config.FormatINI), string(config.FormatYAML):
				data, err = config.Encode(cfg, config.Format(format))
			default:
				return rrerrors.NewConfigError("format", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format: ini, yaml or json (default: from the file extension)")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the OBS password in clear text")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		// Short: 写入默认配置文件
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file for errors",
		// Short: 检查配置文件错误
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %s is invalid:\n%v\n", configPath(), err)
				return rrerrors.ErrConfigInvalid
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid\n", configPath())
			return nil
		},
	}
}
