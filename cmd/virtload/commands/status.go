package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/virtuoso-tools/virtload/db"
	"github.com/virtuoso-tools/virtload/display"
	"github.com/virtuoso-tools/virtload/isql"
	"github.com/virtuoso-tools/virtload/load"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [session-id]",
		Short: "Show the latest load session from the local ledger",
		Long: `Show a recorded load session: its phase, tallies, and a sample of
failed files. Without a session ID the most recent session is shown.

With --server the server's own bulk work queue (DB.DBA.load_list) is also
queried, which covers bulk sessions whose per-file outcomes live there.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}
	cmd.Flags().Bool("server", false, "also query the server's load_list")
	return cmd
}

type statusReport struct {
	Session  *db.SessionRecord      `json:"session"`
	Counts   map[string]int         `json:"counts,omitempty"`
	Failures []db.ItemRecord        `json:"failures,omitempty"`
	Server   *isql.LoadListStatsRow `json:"server,omitempty"`
}

// serverStats queries the server-side bulk queue, returning nil when the
// server cannot be reached or the query fails.
func serverStats(cmd *cobra.Command) *isql.LoadListStatsRow {
	runner, err := buildRunner(cmd)
	if err != nil {
		return nil
	}
	result, err := runner.Run(cmd.Context(), isql.LoadListStats())
	if err != nil || !result.OK {
		return nil
	}
	stats, err := isql.ParseLoadListStats(result.Stdout)
	if err != nil {
		return nil
	}
	return &stats
}

func runStatus(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	var rec *db.SessionRecord
	if len(args) == 1 {
		rec, err = ledger.GetSession(args[0])
	} else {
		rec, err = ledger.LatestSession()
	}
	if err != nil {
		return err
	}
	var server *isql.LoadListStatsRow
	if wantServer, _ := cmd.Flags().GetBool("server"); wantServer {
		server = serverStats(cmd)
	}

	if rec == nil {
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(statusReport{Server: server})
		}
		pterm.Info.Println("No load sessions recorded yet")
		printServerStats(server)
		return nil
	}

	counts, err := ledger.CountByState(rec.ID)
	if err != nil {
		return err
	}
	failures, err := ledger.ItemsByState(rec.ID, load.ItemFailed, load.MaxFailureSample)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(statusReport{Session: rec, Counts: counts, Failures: failures, Server: server})
	}

	display.Header("Session " + rec.ID)
	data := pterm.TableData{
		{"Directory", rec.Directory},
		{"Mode", rec.Mode},
		{"Pattern", rec.Pattern},
		{"Workers", pterm.Sprintf("%d", rec.Workers)},
		{"Phase", rec.Phase},
		{"Started", rec.StartedAt.Format("2006-01-02 15:04:05")},
		{"Succeeded", pterm.Sprintf("%d", rec.Succeeded)},
		{"Failed", pterm.Sprintf("%d", rec.Failed)},
	}
	if rec.FinishedAt != nil {
		data = append(data, []string{"Finished", rec.FinishedAt.Format("2006-01-02 15:04:05")})
	}
	if rec.Error != "" {
		data = append(data, []string{"Error", rec.Error})
	}
	if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
		return err
	}

	if len(failures) > 0 {
		pterm.Println()
		pterm.Warning.Printfln("Failed files (showing up to %d):", load.MaxFailureSample)
		for _, item := range failures {
			pterm.Println("  " + item.Path + ": " + item.Error)
		}
	}

	printServerStats(server)
	return nil
}

func printServerStats(stats *isql.LoadListStatsRow) {
	if stats == nil {
		return
	}
	pterm.Println()
	pterm.Info.Printfln("Server load_list: %d registered, %d loaded, %d with issues",
		stats.Total, stats.Loaded, stats.Issues)
}
