package command

import (
	"context"

	"github.com/meigma/pacx"
	"github.com/meigma/pacx/internal/extract"
)

const (
	ExtractDescription = "Extract a PAC archive"
	ExtractHelp        = ExtractDescription + "\n\n" +
		"Writes every resource of INPUT, including those stored in splits, into\n" +
		"the output directory. Existing files are left alone unless --force is set."
)

// Extract represents the `extract` command of pacx cli tool.
type Extract struct {
	logged

	Output string `short:"o" long:"output" default:"." value-name:"DIR" description:"Output directory"`
	Jobs   int    `short:"j" long:"jobs" value-name:"N" description:"Number of files written concurrently; 0 uses the number of CPUs"`
	Force  bool   `short:"f" long:"force" description:"Overwrite existing files"`

	Args struct {
		Input string `positional-arg-name:"input"`
	} `positional-args:"yes" required:"yes"`
}

// Execute extracts the archive, it honors the go-flags.Commander interface.
func (c *Extract) Execute(args []string) error {
	logger := c.logger()

	arc, err := pacx.Load(c.Args.Input, pacx.DecodeWithLogger(logger))
	if err != nil {
		return err
	}

	sink := extract.NewFileSink(c.Output, extract.WithOverwrite(c.Force))
	stats, err := extract.Run(context.Background(), arc.Resources, sink, c.Jobs)
	if err != nil {
		return err
	}
	logger.Info("extracted archive",
		"path", c.Args.Input,
		"output", c.Output,
		"written", stats.Written,
		"skipped", stats.Skipped,
		"bytes", stats.Bytes)
	return nil
}
