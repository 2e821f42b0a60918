package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/redlinehq/redline/internal/core/chardiff"
	"github.com/redlinehq/redline/internal/render"
)

type DiffCmd struct {
	flags *Flags

	// flags
	literal bool
}

// NewDiffCmd creates a new diff command
func NewDiffCmd(flags *Flags) *DiffCmd {
	return &DiffCmd{flags: flags}
}

// Register adds the diff command to the application
func (cmd *DiffCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "diff",
		Usage:     "Show a character-level diff between two texts",
		UsageText: "redline diff [--text] <original> <corrected>",
		Description: `Prints the inline edit script between two files: deleted runs struck
through, inserted runs highlighted. With --text the arguments are taken as
literal strings instead of file paths.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "text",
				Aliases:     []string{"t"},
				Usage:       "treat arguments as literal text, not file paths",
				Destination: &cmd.literal,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DiffCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected exactly two arguments")
	}

	original, corrected := c.Args().Get(0), c.Args().Get(1)
	if !cmd.literal {
		a, err := os.ReadFile(original)
		if err != nil {
			return fmt.Errorf("read original: %w", err)
		}
		b, err := os.ReadFile(corrected)
		if err != nil {
			return fmt.Errorf("read corrected: %w", err)
		}
		original, corrected = string(a), string(b)
	}

	out := c.Root().Writer
	r := render.New(out)
	fmt.Fprintln(out, r.DiffLine(chardiff.Diff(original, corrected)))
	return nil
}
