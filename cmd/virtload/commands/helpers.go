package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/virtuoso-tools/virtload/db"
	"github.com/virtuoso-tools/virtload/discover"
	"github.com/virtuoso-tools/virtload/display"
	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
	"github.com/virtuoso-tools/virtload/load"
	"github.com/virtuoso-tools/virtload/logger"
)

// timeRounding keeps elapsed times readable in terminal output
const timeRounding = 100 * time.Millisecond

// sessionContext returns a context cancelled on SIGINT/SIGTERM, so one
// Ctrl-C triggers the graceful drain instead of killing the process.
func sessionContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildRunner constructs the isql runner, honoring --isql-args when the
// command defines it.
func buildRunner(cmd *cobra.Command) (isql.Runner, error) {
	var extra []string
	if f := cmd.Flags().Lookup("isql-args"); f != nil && f.Value.String() != "" {
		parsed, err := shellquote.Split(f.Value.String())
		if err != nil {
			return nil, errors.Wrap(err, "invalid --isql-args value")
		}
		extra = parsed
	}
	return isql.NewRunner(cfg, logger.Logger, extra...), nil
}

func openLedger() (*db.Ledger, error) {
	conn, err := db.Connect(cfg.Ledger.Path)
	if err != nil {
		return nil, err
	}
	return db.NewLedger(conn), nil
}

func newDiscoverer() discover.Discoverer {
	if cfg.Docker.Enabled() {
		return discover.Container{
			DockerPath: cfg.Docker.DockerPath,
			Container:  cfg.Docker.Container,
			Log:        logger.Logger,
		}
	}
	return discover.Local{}
}

func newProgress(cmd *cobra.Command) load.Progress {
	if display.ShouldOutputJSON(cmd) {
		return load.NoopProgress{}
	}
	return &load.TermProgress{}
}

// sessionError decides the command's error after a session: the session
// error itself when there is one, otherwise a plain failure when some files
// did not load, so partial failures still exit nonzero.
func sessionError(outcome *load.Outcome, err error) error {
	if err != nil {
		return err
	}
	if outcome != nil && outcome.Failed > 0 {
		return errors.Newf("%d of %d files failed to load", outcome.Failed, outcome.Total)
	}
	return nil
}

// reportOutcome renders the session result. The outcome may be non-nil
// even when err is set; tallies are always worth showing.
func reportOutcome(cmd *cobra.Command, outcome *load.Outcome) error {
	if outcome == nil {
		return nil
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(outcome)
	}

	if outcome.Failed == 0 && outcome.Phase == load.PhaseDone {
		display.Success("Loaded %d files in %s (session %s)",
			outcome.Succeeded, outcome.Elapsed.Round(timeRounding), outcome.SessionID)
		return nil
	}

	display.Warning("Loaded %d of %d files, %d failed (session %s, phase %s)",
		outcome.Succeeded, outcome.Total, outcome.Failed, outcome.SessionID, outcome.PhaseName)
	for _, f := range outcome.Failures {
		pterm.Println("  " + f.File + ": " + f.Error)
	}
	if outcome.Failed > len(outcome.Failures) && len(outcome.Failures) > 0 {
		pterm.Printfln("  ... and %d more; see 'virtload status %s'",
			outcome.Failed-len(outcome.Failures), outcome.SessionID)
	}
	return nil
}
