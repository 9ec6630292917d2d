// Package display renders command output for humans and machines
package display

import (
	"encoding/json"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/virtuoso-tools/virtload/errors"
)

// ShouldOutputJSON reports whether the command should emit machine-readable
// output instead of terminal rendering.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	wantJSON, err := cmd.Flags().GetBool("json")
	return err == nil && wantJSON
}

// OutputJSON writes v as indented JSON to stdout
func OutputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode JSON output")
	}
	return nil
}

// Header prints a section header
func Header(text string) {
	pterm.DefaultHeader.WithFullWidth().Println(text)
}

// Success prints a success line
func Success(format string, args ...any) {
	pterm.Success.Printfln(format, args...)
}

// Warning prints a warning line
func Warning(format string, args ...any) {
	pterm.Warning.Printfln(format, args...)
}

// Error prints an error with any hints attached to it
func Error(err error) {
	pterm.Error.Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.Println(hint)
	}
}
