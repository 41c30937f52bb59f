package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/repotag/cmd/repotag/commands"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli := &commands.CLI{}
	globals := &commands.Global{Out: os.Stdout}
	parser := kong.Parse(cli,
		kong.Name("repotag"),
		kong.Description("Classify repository files and tag change sets from repository structure documents and tagging registries."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Bind(globals),
	)
	globals.Logger = slog.Default()
	if err := parser.Run(globals, cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
