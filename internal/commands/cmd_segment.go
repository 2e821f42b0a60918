package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/redlinehq/redline/internal/core/segment"
)

type SegmentCmd struct {
	flags *Flags
}

// NewSegmentCmd creates a new segment command
func NewSegmentCmd(flags *Flags) *SegmentCmd {
	return &SegmentCmd{flags: flags}
}

// Register adds the segment command to the application
func (cmd *SegmentCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "segment",
		Usage:     "Show how a file splits into paragraphs",
		UsageText: "redline segment <file>",
		Description: `Prints the paragraph table the correction engine would work from:
one row per paragraph with its 1-indexed line span and a content preview.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *SegmentCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	res := segment.Split(string(data))
	out := c.Root().Writer

	if len(res.Pieces) == 0 {
		fmt.Fprintln(os.Stderr, "No paragraphs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tLINES\tPREVIEW")
	for i, p := range res.Pieces {
		_, _ = fmt.Fprintf(w, "%d\t%d-%d\t%s\n", i+1, p.StartLine+1, p.EndLine+1, preview(p.Content))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d paragraph(s)\n", len(res.Pieces))
	return nil
}

func preview(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	const max = 48
	r := []rune(line)
	if len(r) > max {
		return string(r[:max]) + "…"
	}
	return line
}
