package main

import (
	"os"

	"github.com/virtuoso-tools/virtload/cmd/virtload/commands"
	"github.com/virtuoso-tools/virtload/display"
	"github.com/virtuoso-tools/virtload/logger"
)

func main() {
	root := commands.NewRootCommand()
	err := root.Execute()
	logger.Cleanup()
	if err != nil {
		display.Error(err)
		os.Exit(commands.ExitCode(err))
	}
}
