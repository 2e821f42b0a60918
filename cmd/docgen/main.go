// Command docgen generates CLI reference documentation from the redline
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/redlinehq/redline/internal/commands"
)

func main() {
	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "redline",
		Usage:     "LLM-assisted copy editing for plain text files",
		UsageText: "redline [global options] command [command options]",
		Description: `Redline splits a text file into paragraphs, asks a correction provider
to fix each one, and shows every proposed change as an inline diff you can
accept or reject paragraph by paragraph.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("REDLINE_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file",
				Sources: cli.EnvVars("REDLINE_LOG_FILE"),
				Value:   commands.DefaultLogFile(),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("REDLINE_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
		},
	}

	root = commands.NewCorrectCmd(flags).Register(root)
	root = commands.NewSegmentCmd(flags).Register(root)
	root = commands.NewDiffCmd(flags).Register(root)
	root = commands.NewConfigCmd(flags).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
