package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/encounter"
	"github.com/livp123/raidrec/internal/utils/fmtutil"
)

func newReplayCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Run a combat log through the detector and print its sessions",
		Long: `Read a finished combat log from start to end and print every encounter
and Mythic+ run the recorder would have seen, with the recording decision
the current configuration makes for it. OBS is not contacted.
离线读取战斗日志，打印录制器会检测到的每个会话及其录制决定，不连接 OBS。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sessions, err := encounter.Replay(cmd.Context(), config.NewManagerWith(configPath(), cfg), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			recorded := 0
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "START\tKIND\tNAME\tDIFFICULTY\tOUTCOME\tDURATION\tRECORD")
			for _, s := range sessions {
				duration := "-"
				if !s.EndedAt.IsZero() {
					duration = fmtutil.FormatClock(s.EndedAt.Sub(s.StartedAt))
				}
				decision := "yes"
				if s.Recorded {
					recorded++
				} else {
					decision = "no: " + s.SkipReason
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					fmtutil.OrDash(s.LogTimestamp),
					s.Kind,
					s.Name,
					fmtutil.OrDash(s.Difficulty),
					fmtutil.OrDash(string(s.Outcome)),
					duration,
					decision,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d sessions, %d recorded\n", len(sessions), recorded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
