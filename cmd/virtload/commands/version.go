package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/virtuoso-tools/virtload/display"
	"github.com/virtuoso-tools/virtload/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
					"date":    version.Date,
				})
			}
			pterm.Println(version.String())
			return nil
		},
	}
}
