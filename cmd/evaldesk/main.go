package main

import (
	"os"

	"github.com/evaldesk/evaldesk/pkg/commands"
	"github.com/evaldesk/evaldesk/pkg/configuration"
)

func main() {
	conf := configuration.Use()
	defer conf.Unload()

	if err := commands.NewRootCommand().Execute(); err != nil {
		conf.Logger().WithError(err).Error("command failed")
		os.Exit(1)
	}
}
