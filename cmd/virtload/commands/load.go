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

func newLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <directory>",
		Short: "Load N-Quads files, one isql process per file",
		Long: `Load every matching file under the directory into Virtuoso, running
one isql process per file across a pool of parallel workers.

Each file is loaded via TTLP with flag 512, so graphs come from the quads
themselves. Per-file outcomes are recorded in the local ledger and a forced
checkpoint makes the loaded data durable at the end.

With --docker-container the directory must be a path inside the container.

Examples:
  virtload load /data/dump
  virtload load --workers 8 --pattern '*.nq' /data/dump
  virtload load --docker-container virtuoso /database/data`,
		Args: cobra.ExactArgs(1),
		RunE: runLoad,
	}

	f := cmd.Flags()
	f.IntP("workers", "w", 0, "parallel workers (0 derives the count from the CPU probe)")
	f.String("pattern", "", "file name pattern (default "+config.DefaultPattern+")")
	f.BoolP("recursive", "r", false, "descend into subdirectories")
	f.String("graph", "", "placeholder graph URI handed to TTLP")
	f.String("isql-args", "", "extra arguments for isql, shell-quoted")
	return cmd
}

func applyLoadFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Load.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("pattern") {
		cfg.Load.Pattern, _ = f.GetString("pattern")
	}
	if f.Changed("recursive") {
		cfg.Load.Recursive, _ = f.GetBool("recursive")
	}
	if f.Changed("graph") {
		cfg.Load.PlaceholderGraph, _ = f.GetString("graph")
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
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

	loader := &load.Loader{
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
