package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/linklocal/cmd/linklocal/commands"
	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("linklocal"),
		kong.Description("Download remote files linked from markdown notes and rewrite the links to local copies."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
