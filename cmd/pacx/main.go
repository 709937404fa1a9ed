package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/meigma/pacx/cmd/pacx/command"
)

const (
	name = "pacx"
)

var (
	version = "undefined"
	build   = "undefined"
)

func main() {
	parser := flags.NewNamedParser(name, flags.Default)

	parser.AddCommand("create", command.CreateDescription, command.CreateHelp,
		&command.Create{})

	parser.AddCommand("extract", command.ExtractDescription, command.ExtractHelp,
		&command.Extract{})

	parser.AddCommand("list", command.ListDescription, command.ListHelp,
		&command.List{})

	parser.AddCommand("version", command.VersionDescription, command.VersionHelp,
		&command.Version{
			Name:    name,
			Version: version,
			Build:   build,
		})

	_, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrCommandRequired {
			parser.WriteHelp(os.Stdout)
		}

		os.Exit(1)
	}
}
