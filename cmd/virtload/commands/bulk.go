package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/virtuoso-tools/virtload/config"
	"github.com/virtuoso-tools/virtload/display"
	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/load"
	"github.com/virtuoso-tools/virtload/logger"
)

func newBulkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk <directory>",
		Short: "Load via the server's bulk loader (ld_dir + rdf_loader_run)",
		Long: `Register the directory in the server's load_list and drain it with
concurrent rdf_loader_run workers.

This is the classic Virtuoso bulk-load protocol: the server arbitrates
which worker loads which file, so it scales well for very large file sets,
but per-file outcomes live in DB.DBA.load_list rather than the local
ledger. The directory must be visible to the server process and covered by
its DirsAllowed setting.

Examples:
  virtload bulk /data/dump
  virtload bulk --recursive --workers 6 /data/dump`,
		Args: cobra.ExactArgs(1),
		RunE: runBulk,
	}

	f := cmd.Flags()
	f.IntP("workers", "w", 0, "parallel loader workers (0 derives the count from the CPU probe)")
	f.String("pattern", "", "file name pattern (default "+config.DefaultPattern+")")
	f.BoolP("recursive", "r", false, "register subdirectories too (ld_dir_all)")
	f.String("graph", "", "graph URI recorded for registered files")
	f.String("isql-args", "", "extra arguments for isql, shell-quoted")
	return cmd
}

func runBulk(cmd *cobra.Command, args []string) error {
	applyLoadFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := buildRunner(cmd)
	if err != nil {
		return err
	}
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	ctx, stop := sessionContext()
	defer stop()

	loader := &load.BulkLoader{
		Config:     cfg,
		Runner:     runner,
		Discoverer: newDiscoverer(),
		Ledger:     ledger,
		Progress:   newProgress(cmd),
		Probe:      config.HostCPUCount,
		Log:        logger.Logger,
	}

	outcome, err := loader.Run(ctx, args[0])
	if errors.Is(err, errors.ErrNoFiles) {
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(map[string]any{"total": 0, "message": err.Error()})
		}
		pterm.Info.Println("Nothing to load: " + err.Error())
		return nil
	}

	if rerr := reportOutcome(cmd, outcome); rerr != nil {
		return rerr
	}
	return sessionError(outcome, err)
}
