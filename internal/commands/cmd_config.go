package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type ConfigCmd struct {
	flags *Flags
}

// NewConfigCmd creates a new config command
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "redline config show",
				Description: "Prints the resolved configuration after defaults and the config file are merged.",
				Action:      cmd.runShow,
			},
			{
				Name:        "validate",
				Usage:       "Validate the configuration file",
				UsageText:   "redline config validate",
				Description: "Loading already validates; this reports where the config was read from.",
				Action:      cmd.runValidate,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) runShow(ctx context.Context, c *cli.Command) error {
	data, err := yaml.Marshal(cmd.flags.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = c.Root().Writer.Write(data)
	return err
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	// The Before hook already loaded and validated the config; reaching
	// this point means it passed.
	fmt.Fprintf(c.Root().Writer, "%s: configuration is valid\n", cmd.flags.ConfigPath)
	return nil
}
