package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/recordings"
	"github.com/livp123/raidrec/internal/utils/fmtutil"
)

func newRecordingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recordings",
		Short: "List recordings in the fallback recording directory",
		// Short: 列出后备录像目录中的录像
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			files := recordings.NewManager(config.NewManagerWith(configPath(), cfg), nil)
			dir, list, err := files.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", dir)
			if len(list) == 0 {
				fmt.Fprintln(out, "No recordings.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODIFIED\tSIZE\tNAME")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", fmtutil.FormatTime(r.Modified), fmtutil.FormatBytes(r.Size), r.Name)
			}
			return w.Flush()
		},
	}
}
