package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/urfave/cli/v3"
)

func deleteCommand() *cli.Command {
	var cfg appConfig

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a memory permanently",
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

			if err := uc.DeleteMemory(ctx, model.MemoryID(id)); err != nil {
				return goerr.Wrap(err, "failed to delete memory")
			}

			fmt.Fprintf(c.Root().Writer, "deleted %s\n", id)
			return nil
		},
	}
}
