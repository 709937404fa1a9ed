package command

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/meigma/pacx"
)

const (
	ListDescription = "List the contents of a PAC archive"
	ListHelp        = ListDescription + "\n\n" +
		"Prints the container header, the sub-archives and one line per file\n" +
		"entry with its sha256 digest. Entries stored in a split appear twice:\n" +
		"as a not-here record in the root and with their bytes in the split."
)

// List represents the `list` command of pacx cli tool.
type List struct {
	logged

	Args struct {
		Input string `positional-arg-name:"input"`
	} `positional-args:"yes" required:"yes"`

	stdout io.Writer
}

// Execute prints the archive listing, it honors the go-flags.Commander interface.
func (c *List) Execute(args []string) error {
	f, err := os.Open(c.Args.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	res, err := pacx.Inspect(f, info.Size(), pacx.DecodeWithLogger(c.logger()))
	if err != nil {
		return err
	}

	out := c.stdout
	if out == nil {
		out = os.Stdout
	}
	return printInspect(out, res)
}

func printInspect(out io.Writer, res *pacx.InspectResult) error {
	endian := "little"
	if res.BigEndian {
		endian = "big"
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "version\t%d\n", res.Version)
	fmt.Fprintf(tw, "id\t%#08x\n", res.ID)
	fmt.Fprintf(tw, "size\t%d\n", res.FileSize)
	fmt.Fprintf(tw, "endian\t%s\n", endian)
	fmt.Fprintf(tw, "compression\t%s\n", res.Compression)
	fmt.Fprintf(tw, "ratio\t%.3f\n", res.CompressionRatio())
	for _, dep := range res.Dependencies {
		fmt.Fprintf(tw, "dependency\t%s\n", dep)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUB-ARCHIVE\tKIND\tOFFSET\tSTORED\tLENGTH\tBLOCKS\tENTRIES")
	for _, s := range res.SubArchives {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			subArchiveName(s), s.Kind, s.Offset, s.CompressedLength, s.Length, s.Blocks, s.Entries)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tSUB-ARCHIVE\tTAG\tLENGTH\tDIGEST")
	for _, r := range res.Resources {
		d := "-"
		if r.Stored() {
			d = r.Digest.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Name, r.Category, subArchiveIndexName(res, r.SubArchive), r.Tag, r.Length, d)
	}
	return tw.Flush()
}

func subArchiveName(s pacx.SubArchiveInfo) string {
	if s.Name == "" {
		return "root"
	}
	return s.Name
}

func subArchiveIndexName(res *pacx.InspectResult, index int) string {
	for _, s := range res.SubArchives {
		if s.Index == index {
			return subArchiveName(s)
		}
	}
	return fmt.Sprint(index)
}
