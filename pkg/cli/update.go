package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func updateCommand() *cli.Command {
	var (
		cfg  appConfig
		text string
		meta []string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Aliases:     []string{"t"},
			Usage:       "Replacement text content",
			Destination: &text,
		},
		&cli.StringSliceFlag{
			Name:        "meta",
			Usage:       "Replacement metadata as key=value (repeatable)",
			Destination: &meta,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:      "update",
		Usage:     "Edit the text and/or metadata of a memory",
		ArgsUsage: "<memory-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("memory ID is required", goerr.T(model.TagValidation))
			}
			if !c.IsSet("text") && !c.IsSet("meta") {
				return goerr.New("nothing to update, pass --text and/or --meta",
					goerr.T(model.TagValidation))
			}

			input := memory.UpdateInput{ID: model.MemoryID(id)}
			if c.IsSet("text") {
				input.Text = &text
			}
			if c.IsSet("meta") {
				metadata, err := parseMetaFlags(meta)
				if err != nil {
					return err
				}
				input.Metadata = metadata
			}

			uc, closer, err := cfg.newUseCase(ctx, c)
			if err != nil {
				return err
			}
			defer closer()

			rec, err := uc.UpdateMemory(ctx, input)
			if err != nil {
				return goerr.Wrap(err, "failed to update memory")
			}

			return printJSON(c, rec)
		},
	}
}
