package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/devlaunch/cmd/devlaunch/commands"
	"git.home.luguber.info/inful/devlaunch/internal/errors"
	"git.home.luguber.info/inful/devlaunch/internal/version"
)

func main() {
	cli := &commands.CLI{}
	kong.Parse(cli,
		kong.Name("devlaunch"),
		kong.Description("Build the web app if no build exists, then start the local server."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := cli.Run(&commands.Global{}); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
