package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var cfg appConfig

	return &cli.Command{
		Name:      "show",
		Usage:     "Show a single memory by ID",
		ArgsUsage: "<memory-id>",
		Flags:     allFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("memory ID is required", goerr.T(model.TagValidation))
			}

			uc, closer, err := cfg.newUseCase(ctx, c)
			if err != nil {
				return err
			}
			defer closer()

			rec, err := uc.GetMemory(ctx, model.MemoryID(id))
			if err != nil {
				return goerr.Wrap(err, "failed to show memory")
			}

			return printJSON(c, rec)
		},
	}
}
