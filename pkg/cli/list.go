package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg        appConfig
		outputJSON bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Aliases:     []string{"j"},
			Usage:       "Output in JSON format",
			Destination: &outputJSON,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List all memories in creation order",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := cfg.newUseCase(ctx, c)
			if err != nil {
				return err
			}
			defer closer()

			records, err := uc.ListMemories(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list memories")
			}

			if outputJSON {
				return printJSON(c, records)
			}

			for _, rec := range records {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\n",
					rec.ID, rec.CreatedAt.Local().Format(time.DateTime), rec.Text)
			}
			return nil
		},
	}
}
