package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/redlinehq/redline/internal/core/buffer"
	"github.com/redlinehq/redline/internal/core/chardiff"
	"github.com/redlinehq/redline/internal/core/correction"
	"github.com/redlinehq/redline/internal/core/eventbus"
	"github.com/redlinehq/redline/internal/core/logging"
	"github.com/redlinehq/redline/internal/core/paragraph"
	"github.com/redlinehq/redline/internal/provider"
	"github.com/redlinehq/redline/internal/render"
)

type CorrectCmd struct {
	flags *Flags

	// flags
	lines       string
	dryRun      bool
	interactive bool
	acceptAll   bool
	rejectAll   bool
}

// NewCorrectCmd creates a new correct command
func NewCorrectCmd(flags *Flags) *CorrectCmd {
	return &CorrectCmd{flags: flags}
}

// Register adds the correct command to the application
func (cmd *CorrectCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "correct",
		Usage:     "Correct a text file paragraph by paragraph",
		UsageText: "redline correct [options] <file>",
		Description: `Splits the file into paragraphs, sends each one to the configured
correction provider, and shows every proposed change as an inline diff.

Without a policy flag the diffs are display-only and the file is left
untouched. Press Ctrl-C to stop scheduling further paragraphs; corrections
already accepted are kept.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "lines",
				Aliases:     []string{"l"},
				Usage:       "correct only the given 1-indexed line span, e.g. 12:18",
				Destination: &cmd.lines,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "show corrections without writing the file",
				Destination: &cmd.dryRun,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "review each correction with a y/n prompt",
				Destination: &cmd.interactive,
			},
			&cli.BoolFlag{
				Name:        "accept-all",
				Usage:       "accept every correction without prompting",
				Destination: &cmd.acceptAll,
			},
			&cli.BoolFlag{
				Name:        "reject-all",
				Usage:       "show corrections, then restore the original text",
				Destination: &cmd.rejectAll,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CorrectCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	if policies := countTrue(cmd.interactive, cmd.acceptAll, cmd.rejectAll); policies > 1 {
		return fmt.Errorf("--interactive, --accept-all, and --reject-all are mutually exclusive")
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	prov, err := provider.New(cmd.flags.Config.Provider)
	if err != nil {
		return fmt.Errorf("configure provider: %w", err)
	}

	buf := buffer.New(string(data))
	reg := correction.NewRegistry(prov, cmd.flags.Config.Engine.EventBuffer)
	s := reg.Session(path, buf)
	defer reg.Close(path)

	out := c.Root().Writer
	r := render.New(out)
	r.Attach(s.Events())
	eventbus.RegisterDebugLogger(s.Events(), logging.Component("bus"))

	// Ctrl-C stops scheduling further paragraphs without rolling back
	// corrections already applied.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	isCancelled := func() bool { return ctx.Err() != nil }

	if cmd.lines != "" {
		selection, startLine, err := cutLineSpan(buf, cmd.lines)
		if err != nil {
			return err
		}
		if _, err := s.CorrectSelection(ctx, selection, startLine, isCancelled); err != nil {
			return fmt.Errorf("correct selection: %w", err)
		}
	} else {
		if err := s.CorrectDocument(ctx, buf.Text(), isCancelled); err != nil {
			return fmt.Errorf("correct document: %w", err)
		}
	}
	s.Events().Drain()

	if err := cmd.resolve(s, r, out); err != nil {
		return err
	}
	s.Events().Drain()

	pricing := cmd.flags.Config.Pricing
	if summary := r.Summary(s.Totals(), s.Totals().Cost(pricing), pricing.Currency); summary != "" {
		fmt.Fprintln(out, summary)
	}

	if cmd.dryRun || !(cmd.acceptAll || cmd.interactive) {
		log.Debug().Str("path", path).Msg("file not written")
		return nil
	}
	if err := os.WriteFile(path, []byte(buf.Text()), mode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// resolve settles every pending paragraph per the chosen policy. Without a
// policy flag the shown diffs are the only effect: everything is restored.
func (cmd *CorrectCmd) resolve(s *correction.Session, r *render.Renderer, out io.Writer) error {
	switch {
	case cmd.acceptAll && !cmd.dryRun:
		n, err := s.AcceptAll()
		if err != nil {
			return fmt.Errorf("accept all: %w", err)
		}
		log.Debug().Int("count", n).Msg("corrections accepted")
	case cmd.interactive && !cmd.dryRun:
		return cmd.review(s, r, out)
	default:
		n, err := s.RejectAll()
		if err != nil {
			return fmt.Errorf("reject all: %w", err)
		}
		log.Debug().Int("count", n).Msg("corrections rejected")
	}
	return nil
}

func countTrue(vals ...bool) int {
	n := 0
	for _, v := range vals {
		if v {
			n++
		}
	}
	return n
}

// review walks pending paragraphs interactively.
func (cmd *CorrectCmd) review(s *correction.Session, r *render.Renderer, out io.Writer) error {
	doc := s.Document()
	if doc == nil {
		return nil
	}

	in := bufio.NewScanner(os.Stdin)
	for _, p := range doc.Paragraphs() {
		if p.Status != paragraph.StatusPending {
			continue
		}

		fmt.Fprint(out, r.Paragraph(eventbus.ParagraphPendingPayload{
			ParagraphID: p.ID,
			Range:       p.Range,
			Original:    p.Original,
			Corrected:   p.Corrected,
			Ops:         chardiff.Diff(p.Original, p.Corrected),
		}))

		for {
			fmt.Fprint(out, "accept? [y/n] ")
			if !in.Scan() {
				// stdin closed: keep the remaining corrections.
				if _, err := s.AcceptAll(); err != nil {
					return err
				}
				return nil
			}
			answer := strings.ToLower(strings.TrimSpace(in.Text()))
			if answer == "y" || answer == "yes" {
				if err := s.Accept(p.ID); err != nil {
					return fmt.Errorf("accept %s: %w", p.ID, err)
				}
				break
			}
			if answer == "n" || answer == "no" {
				if err := s.Reject(p.ID); err != nil {
					return fmt.Errorf("reject %s: %w", p.ID, err)
				}
				break
			}
		}
	}
	return nil
}

// cutLineSpan extracts an inclusive 1-indexed a:b span from the buffer and
// returns the selection text with its 0-indexed start line.
func cutLineSpan(buf *buffer.Buffer, span string) (string, int, error) {
	first, second, ok := strings.Cut(span, ":")
	if !ok {
		second = first
	}
	a, err := strconv.Atoi(first)
	if err != nil {
		return "", 0, fmt.Errorf("invalid line span %q", span)
	}
	b, err := strconv.Atoi(second)
	if err != nil {
		return "", 0, fmt.Errorf("invalid line span %q", span)
	}
	if a < 1 || b < a || b > buf.LineCount() {
		return "", 0, fmt.Errorf("line span %q out of range 1:%d", span, buf.LineCount())
	}

	selection, err := buf.Slice(a-1, b-1)
	if err != nil {
		return "", 0, err
	}
	return selection, a - 1, nil
}
