package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ricardoprins-paqt/vue-design-patterns/cmd/patterns/commands"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("patterns"),
		kong.Description("Build, lint, and preview a design pattern catalog as a static site."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&commands.Global{Logger: slog.Default()})
	ctx.FatalIfErrorf(err)
}
