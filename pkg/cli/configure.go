package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func configCommand() *cli.Command {
	var cfg appConfig

	return &cli.Command{
		Name:  "config",
		Usage: "Show or validate configuration",
		Flags: allFlags(&cfg),
		Commands: []*cli.Command{
			configGetCommand(&cfg),
			configSetCommand(&cfg),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := cfg.newResolver(c)
			if err != nil {
				return err
			}
			return printConfigYAML(c, r)
		},
	}
}

func configGetCommand(cfg *appConfig) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one effective setting",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, c *cli.Command) error {
			key := c.Args().First()
			if key == "" {
				return goerr.New("setting key is required", goerr.T(model.TagValidation))
			}

			r, err := cfg.newResolver(c)
			if err != nil {
				return err
			}

			val, err := r.Get(config.Key(key))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "%v\n", val)
			return nil
		},
	}
}

// configSetCommand validates a runtime override and shows the
// resulting effective configuration. Overrides live for the process
// lifetime only, so this is a validation and inspection aid; lasting
// changes belong in the environment.
func configSetCommand(cfg *appConfig) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Validate a setting override and show the result",
		ArgsUsage: "<key> <value>",
		Action: func(ctx context.Context, c *cli.Command) error {
			key := c.Args().Get(0)
			value := c.Args().Get(1)
			if key == "" || value == "" {
				return goerr.New("usage: config set <key> <value>", goerr.T(model.TagValidation))
			}

			r, err := cfg.newResolver(c)
			if err != nil {
				return err
			}

			prev, err := r.Set(config.Key(key), value)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "# %s: %v -> %v (process lifetime only)\n", key, prev, value)
			return printConfigYAML(c, r)
		},
	}
}

func printConfigYAML(c *cli.Command, r *config.Resolver) error {
	all := r.GetAll()
	out := make(map[string]any, len(all))
	for key, val := range all {
		out[string(key)] = val
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return goerr.Wrap(err, "failed to encode configuration")
	}

	fmt.Fprint(c.Root().Writer, string(data))
	return nil
}
