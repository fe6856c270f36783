package runs

import (
	"fmt"
	"text/tabwriter"
	"time"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/runlog"
	"nathanbeddoewebdev/dropproxy/internal/util"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent provisioning runs",
		Long: `List recent provisioning runs stored locally.

Examples:
  dropproxy runs list
  dropproxy runs list --limit 50
  dropproxy runs list --droplet ubuntu_appexamplecom
  dropproxy runs list -o json`,
		Args:         app.ExactArgs(0),
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of runs to display")
	cmd.Flags().String("droplet", "", "Filter by droplet name")
	cmd.Flags().StringP("output", "o", app.FormatTable, "Output format: table, json or yaml")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be greater than 0", app.ErrUsage)
	}

	droplet, _ := cmd.Flags().GetString("droplet")
	output, _ := cmd.Flags().GetString("output")
	if err := app.CheckFormat(output); err != nil {
		return err
	}

	repo, err := open()
	if err != nil {
		return err
	}
	defer repo.Close()

	var runs []runlog.Run
	if droplet != "" {
		runs, err = repo.ListByDroplet(cmd.Context(), droplet, limit)
	} else {
		runs, err = repo.List(cmd.Context(), limit)
	}
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []runlog.Run{}
	}

	if ok, err := app.Encode(cmd.OutOrStdout(), output, runs); ok {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tDOMAIN\tDROPLET\tIP\tOUTCOME\tSTATE\tDURATION\tDETAIL")
	fmt.Fprintln(w, "----\t------\t-------\t--\t-------\t-----\t--------\t------")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			util.OrDash(run.DomainName),
			formatDroplet(run),
			util.OrDash(run.IP),
			run.Outcome,
			run.State,
			formatDuration(run.DurationMs),
			util.OrDash(run.Detail),
		)
	}
	return w.Flush()
}

func open() (*runlog.SQLiteRepository, error) {
	if dbPath != "" {
		return runlog.OpenAt(dbPath)
	}
	return runlog.Open()
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatDroplet(run runlog.Run) string {
	switch {
	case run.DropletName == "" && run.DropletID == "":
		return "-"
	case run.DropletID == "":
		return run.DropletName
	case run.DropletName == "":
		return run.DropletID
	}
	return run.DropletName + " (" + run.DropletID + ")"
}
