package main

import (
	"flag"
	"fmt"
)

type configCmd struct {
	r       *root
	fs      *flag.FlagSet
	program string
}

func (c *configCmd) Program() string        { return c.program }
func (c *configCmd) FlagSet() *flag.FlagSet { return c.fs }

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	c := &configCmd{r: r, fs: flag.NewFlagSet("config", flag.ContinueOnError), program: r.subcommand("config")}
	if err := parseFlags(c.fs, args, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}
	switch args[0] {
	case "print":
		fmt.Fprint(c.r.stdout, c.r.config.String())
		return nil
	case "path":
		path, err := c.r.loader.ConfigPath()
		if err != nil {
			return err
		}
		if path == "" {
			path = c.r.loader.UserPath() + " (not present)"
		}
		fmt.Fprintln(c.r.stdout, path)
		return nil
	case "save":
		path, err := c.r.loader.Save(c.r.config)
		if err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(c.r.stderr, "Configuration saved to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}
