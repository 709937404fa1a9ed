package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meigma/pacx"
)

const (
	CreateDescription = "Create a PAC archive"
	CreateHelp        = CreateDescription + "\n\n" +
		"Inputs are files, directories or glob patterns. Directories add the\n" +
		"regular files directly inside them. Each file is stored under its base\n" +
		"name. OUTPUT gets a .pac extension when it has none."
)

// Create represents the `create` command of pacx cli tool.
type Create struct {
	logged

	Dependencies []string `short:"d" long:"dependency" value-name:"PATH" description:"Add a dependency on another PAC archive; repeat for several. Known aliases expand to their full path and implied dependencies."`
	Compression  string   `short:"c" long:"compression" default:"lz4" choice:"none" choice:"deflate" choice:"lz4" description:"Compression for embedded sub-archives"`
	NoSplits     bool     `long:"no-splits" description:"Keep every resource in the root sub-archive"`
	Force        bool     `short:"f" long:"force" description:"Overwrite OUTPUT if it exists"`

	Args struct {
		Output string   `positional-arg-name:"output"`
		Inputs []string `positional-arg-name:"input" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

// Execute builds the archive, it honors the go-flags.Commander interface.
func (c *Create) Execute(args []string) error {
	logger := c.logger()

	output := c.Args.Output
	if filepath.Ext(output) == "" {
		output += ".pac"
	}

	compression, ok := pacx.ParseCompression(strings.ToLower(c.Compression))
	if !ok {
		return fmt.Errorf("unknown compression %q", c.Compression)
	}

	files, err := expandInputs(c.Args.Inputs)
	if err != nil {
		return err
	}
	arc := &pacx.Archive{
		Resources:    make([]pacx.Resource, 0, len(files)),
		Dependencies: resolveDependencies(c.Dependencies),
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		arc.Resources = append(arc.Resources, pacx.Resource{Name: filepath.Base(f), Data: data})
	}

	opts := []pacx.SaveOption{
		pacx.SaveWithCompression(compression),
		pacx.SaveWithOverwrite(c.Force),
		pacx.SaveWithLogger(logger),
	}
	if c.NoSplits {
		opts = append(opts, pacx.SaveWithSplitThreshold(0))
	}

	res, err := arc.Save(output, opts...)
	if err != nil {
		return err
	}
	logger.Info("created archive",
		"path", output,
		"resources", len(arc.Resources)-len(res.Skipped),
		"skipped", len(res.Skipped),
		"splits", len(res.Splits),
		"dependencies", len(arc.Dependencies),
		"size", res.Size)
	return nil
}

// expandInputs resolves files, directories and glob patterns to a list of
// regular files, keeping input order and dropping repeats.
func expandInputs(inputs []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		switch {
		case err == nil && info.IsDir():
			entries, err := os.ReadDir(in)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if e.Type().IsRegular() {
					add(filepath.Join(in, e.Name()))
				}
			}
		case err == nil:
			add(in)
		default:
			matches, globErr := filepath.Glob(in)
			if globErr != nil {
				return nil, fmt.Errorf("input %s: %w", in, globErr)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("input %s: %w", in, err)
			}
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
					add(m)
				}
			}
		}
	}
	return files, nil
}
